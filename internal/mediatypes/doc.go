// Package mediatypes defines the file type classifications used by the
// upload handlers.
//
// Supported file types:
//   - Images: jpg, jpeg, png, gif, bmp, webp, tiff
//   - Videos: mp4, mkv, avi, mov, webm, m4v, mpeg, mpg, wmv, flv, ts
//
// The image list matches what the Go image decoders can read; the video
// list matches what ffmpeg is expected to demux on a stock install.
package mediatypes
