// Package video decodes video files into raw frames using FFmpeg.
//
// It supports:
//   - Stream metadata extraction via ffprobe (dimensions, frame rate,
//     duration, codec)
//   - Sequential raw RGB24 frame decoding via an ffmpeg child process
//   - A lazy Stream adapter that renders each decoded frame to ASCII
//     on demand for the playback scheduler
//
// Decoding is performed using FFmpeg and requires ffmpeg and ffprobe to
// be installed and available in the system PATH.
package video
