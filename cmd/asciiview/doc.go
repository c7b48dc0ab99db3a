// Command asciiview renders an image or plays a video as ASCII art
// directly in the current terminal, without going through the HTTP
// service.
//
// Usage:
//
//	asciiview [flags] <image-or-video>
//
// By default the output width follows the terminal width. Video
// playback paces frames to the source frame rate and stops cleanly on
// Ctrl-C.
package main
