package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"
	"time"

	"ascii-theater/internal/logging"
)

// Source decodes a video file into raw frames via an ffmpeg child
// process. All reads happen on the playback worker; Close may be called
// from any goroutine and is idempotent.
type Source struct {
	cmd       *exec.Cmd
	stdout    io.ReadCloser
	stderr    *bytes.Buffer
	info      Info
	buf       []byte
	closeOnce sync.Once
}

// Open probes a video file and starts an ffmpeg process decoding it to
// raw RGB24 frames. The caller must Close the source, also on early
// termination.
func Open(ctx context.Context, path string) (*Source, error) {
	info, err := Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg for %s: %w", path, err)
	}

	logging.Debug("Decoding %s: %dx%d @ %.3f fps", path, info.Width, info.Height, info.FPS)

	return &Source{
		cmd:    cmd,
		stdout: stdout,
		stderr: &stderr,
		info:   *info,
		buf:    make([]byte, info.Width*info.Height*3),
	}, nil
}

// Info returns the probed stream information.
func (s *Source) Info() Info {
	return s.info
}

// FrameInterval returns the target inter-frame interval derived from
// the source frame rate.
func (s *Source) FrameInterval() time.Duration {
	fps := s.info.FPS
	if fps <= 0 {
		fps = fallbackFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Next reads the next raw frame. It returns io.EOF at end-of-stream.
func (s *Source) Next() (*image.NRGBA, error) {
	if _, err := io.ReadFull(s.stdout, s.buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return rgbToNRGBA(s.buf, s.info.Width, s.info.Height), nil
}

// Close releases the decoder process, killing it if still running. It
// always returns nil; the error return satisfies io.Closer so owners
// of a frame stream can release it uniformly.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		if err := s.stdout.Close(); err != nil {
			logging.Debug("closing ffmpeg stdout: %v", err)
		}
		if s.cmd.Process != nil {
			_ = s.cmd.Process.Kill()
		}
		if err := s.cmd.Wait(); err != nil && s.stderr.Len() > 0 {
			logging.Debug("ffmpeg exit: %v: %s", err, s.stderr.String())
		}
	})
	return nil
}

// rgbToNRGBA expands a packed RGB24 buffer into an NRGBA image.
func rgbToNRGBA(buf []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(buf); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
