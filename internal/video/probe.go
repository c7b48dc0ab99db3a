package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// fallbackFPS is assumed when the container does not report a usable
// frame rate.
const fallbackFPS = 24.0

// Info describes the video stream of a source file.
type Info struct {
	Width    int
	Height   int
	FPS      float64
	Duration float64
	Codec    string
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	CodecName    string `json:"codec_name"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe inspects a video file with ffprobe and returns the first video
// stream's dimensions and frame rate.
func Probe(ctx context.Context, path string) (*Info, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w - %s", path, err, stderr.String())
	}

	var result probeResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return nil, fmt.Errorf("ffprobe %s: unparseable output: %w", path, err)
	}

	for _, s := range result.Streams {
		if s.CodecType != "video" {
			continue
		}
		if s.Width <= 0 || s.Height <= 0 {
			return nil, fmt.Errorf("ffprobe %s: video stream has no dimensions", path)
		}

		fps := parseRate(s.AvgFrameRate)
		if fps <= 0 {
			fps = parseRate(s.RFrameRate)
		}
		if fps <= 0 {
			fps = fallbackFPS
		}

		duration, _ := strconv.ParseFloat(result.Format.Duration, 64)

		return &Info{
			Width:    s.Width,
			Height:   s.Height,
			FPS:      fps,
			Duration: duration,
			Codec:    s.CodecName,
		}, nil
	}

	return nil, fmt.Errorf("%s: no video stream found", path)
}

// parseRate parses an ffprobe rational rate like "30000/1001" or "25/1".
// Returns 0 when the rate is absent or degenerate.
func parseRate(rate string) float64 {
	if rate == "" {
		return 0
	}

	num, den := rate, "1"
	if idx := strings.IndexByte(rate, '/'); idx >= 0 {
		num, den = rate[:idx], rate[idx+1:]
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
