// Package player paces a lazily-produced sequence of rendered frames
// to wall-clock time and writes them to an output sink, typically the
// server's terminal.
//
// A Player runs at most one playback session at a time on a dedicated
// background goroutine. Frames are emitted strictly in source order;
// the i-th frame is due at start + i*interval and the worker sleeps
// until then. When the worker falls behind by more than one interval it
// may discard a bounded number of upcoming source frames to catch up.
//
// Cancellation is cooperative: Stop closes a channel the worker checks
// at each frame boundary and waits a bounded time for acknowledgment.
package player
