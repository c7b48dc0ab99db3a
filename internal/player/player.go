package player

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"ascii-theater/internal/logging"
	"ascii-theater/internal/metrics"
)

// Terminal control sequences used during playback.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

// ErrAlreadyRunning is returned by Start when a playback session is
// active. The running session is unaffected.
var ErrAlreadyRunning = errors.New("a playback is already running")

// Frame is one rendered frame together with the target inter-frame
// interval derived from the source frame rate.
type Frame struct {
	Text     string
	Interval time.Duration
}

// FrameStream is a lazy, finite, non-restartable sequence of frames.
// Next returns false once the stream is exhausted; after that every
// call must keep returning false.
type FrameStream interface {
	Next() (Frame, bool)
}

// Config holds playback tuning.
type Config struct {
	// ClearEachFrame emits a clear-and-home sequence before every frame
	// so frames overwrite each other in place.
	ClearEachFrame bool
	// MaxFrameSkip bounds how many source frames may be discarded in one
	// catch-up step when the worker falls behind schedule. Zero disables
	// skipping.
	MaxFrameSkip int
	// StopWait bounds how long Stop waits for the worker to acknowledge.
	StopWait time.Duration
}

// DefaultConfig returns the playback defaults.
func DefaultConfig() Config {
	return Config{
		ClearEachFrame: true,
		MaxFrameSkip:   4,
		StopWait:       time.Second,
	}
}

// Player paces a frame stream to wall-clock time on a background
// goroutine and writes each frame to the output sink. At most one
// session runs at a time; the output sink has exactly one writer.
// A stream that implements io.Closer is closed when its session ends,
// whichever way it ends.
//
// A single Player is constructed at process scope for the shared
// terminal, but nothing in the type is global.
type Player struct {
	out io.Writer
	cfg Config

	mu       sync.Mutex
	running  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce *sync.Once
}

// New creates a Player writing to out.
func New(out io.Writer, cfg Config) *Player {
	if cfg.StopWait <= 0 {
		cfg.StopWait = time.Second
	}
	return &Player{out: out, cfg: cfg}
}

// Running reports whether a playback session is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Start begins consuming the stream on a background goroutine and
// returns immediately. It fails with ErrAlreadyRunning if a session is
// active.
func (p *Player) Start(stream FrameStream) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return ErrAlreadyRunning
	}

	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.stopOnce = new(sync.Once)
	p.running = true

	go p.run(stream, p.stop, p.done)
	return nil
}

// Stop requests the worker to terminate at the next frame boundary and
// waits up to Config.StopWait for it to acknowledge. Calling Stop while
// idle is a no-op. Cancellation is cooperative: a worker blocked inside
// a decode call may outlive the wait.
func (p *Player) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	once, stop, done := p.stopOnce, p.stop, p.done
	p.mu.Unlock()

	once.Do(func() { close(stop) })

	select {
	case <-done:
	case <-time.After(p.cfg.StopWait):
		logging.Warn("playback worker did not acknowledge stop within %s", p.cfg.StopWait)
	}
}

// run is the pacing loop. It owns the output sink for the session
// lifetime: cursor-hidden state is acquired at entry and released on
// every exit path.
func (p *Player) run(stream FrameStream, stop <-chan struct{}, done chan<- struct{}) {
	stopped := false

	defer close(done)
	defer func() {
		// Streams backed by a decoder process need releasing even when
		// the session ends before exhausting them.
		if c, ok := stream.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logging.Debug("closing frame stream: %v", err)
			}
		}
	}()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()

		if stopped {
			metrics.PlaybacksTotal.WithLabelValues("stopped").Inc()
		} else {
			metrics.PlaybacksTotal.WithLabelValues("completed").Inc()
		}
	}()

	metrics.PlaybackActive.Set(1)
	defer metrics.PlaybackActive.Set(0)

	fmt.Fprint(p.out, hideCursor)
	defer fmt.Fprint(p.out, "\n"+showCursor)

	start := time.Now()

	// i counts consumed source frames, emitted or skipped, so due times
	// stay aligned with the source timeline.
	for i := 0; ; i++ {
		select {
		case <-stop:
			stopped = true
			return
		default:
		}

		frame, ok := stream.Next()
		if !ok {
			return
		}

		due := start.Add(time.Duration(i) * frame.Interval)
		now := time.Now()

		if wait := due.Sub(now); wait > 0 {
			select {
			case <-stop:
				stopped = true
				return
			case <-time.After(wait):
			}
		} else if p.cfg.MaxFrameSkip > 0 && frame.Interval > 0 && now.Sub(due) > frame.Interval {
			// Behind by more than one frame: discard upcoming source
			// frames to resynchronize instead of emitting every frame
			// late. The held frame is still emitted (once, late).
			skip := int(now.Sub(due) / frame.Interval)
			if skip > p.cfg.MaxFrameSkip {
				skip = p.cfg.MaxFrameSkip
			}
			for s := 0; s < skip; s++ {
				if _, ok := stream.Next(); !ok {
					return
				}
				i++
				metrics.FramesSkipped.Inc()
			}
			logging.Debug("playback behind schedule, skipped %d frames", skip)
		}

		if p.cfg.ClearEachFrame {
			fmt.Fprint(p.out, cursorHome+clearScreen)
		} else {
			fmt.Fprint(p.out, cursorHome)
		}
		fmt.Fprint(p.out, frame.Text)
		metrics.FramesEmitted.Inc()
	}
}
