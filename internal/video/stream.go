package video

import (
	"io"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/player"
)

// Stream is a lazy frame sequence combining a decoder Source with the
// ascii renderer: each Next decodes one raw frame and renders it. The
// sequence is finite and not restartable without reopening the source.
type Stream struct {
	src  *Source
	opts ascii.Options
	done bool
}

// NewStream wraps a source for playback with the given render options.
// The stream takes ownership of the source and closes it at
// end-of-stream; the player closes abandoned streams through io.Closer
// when a session is stopped early.
func NewStream(src *Source, opts ascii.Options) *Stream {
	return &Stream{src: src, opts: opts}
}

// Next decodes and renders the next frame. Mid-stream decode or render
// errors end the sequence rather than propagate: playback simply ends.
func (st *Stream) Next() (player.Frame, bool) {
	if st.done {
		return player.Frame{}, false
	}

	raw, err := st.src.Next()
	if err != nil {
		if err != io.EOF {
			logging.Warn("video decode ended early: %v", err)
		}
		st.Close()
		return player.Frame{}, false
	}

	text, err := ascii.Render(raw, st.opts)
	if err != nil {
		logging.Warn("frame render failed, ending playback: %v", err)
		st.Close()
		return player.Frame{}, false
	}

	return player.Frame{Text: text, Interval: st.src.FrameInterval()}, true
}

// Close releases the underlying source. Safe to call more than once.
func (st *Stream) Close() error {
	if !st.done {
		st.done = true
		return st.src.Close()
	}
	return nil
}
