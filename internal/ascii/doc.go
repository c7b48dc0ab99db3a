// Package ascii converts raster images to character-grid approximations
// suitable for terminal display.
//
// The conversion resamples the source to the target character grid,
// extracts a perceptual grayscale intensity per cell and quantizes it
// into equal-width bins over an ordered character palette. Color mode
// additionally wraps each character in a truecolor ANSI foreground
// sequence carrying an enhanced version of the cell's color.
//
// Render is a pure function: it performs no I/O, keeps no state and
// never mutates or retains its input image.
package ascii
