package ascii

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"ascii-theater/internal/metrics"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// charAspect compensates for terminal character cells being roughly
// twice as tall as wide.
const charAspect = 2.0

// DefaultCharset orders characters from densest to sparsest, so dark
// pixels map to dense glyphs on a light background.
const DefaultCharset = "@%#*+=-:. "

// ErrInvalidInput marks renderer input validation failures. Callers can
// test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// Options configures a render. The zero value is not valid; start from
// DefaultOptions.
type Options struct {
	// Width is the target character-column count. Must be >= 1.
	Width int
	// Height is the target row count. Zero derives it from the source
	// aspect ratio.
	Height int
	// Charset is the ordered palette, index 0 mapping the darkest bin.
	Charset string
	// Invert flips the intensity scale before quantization.
	Invert bool
	// Color wraps every character in a truecolor foreground sequence.
	Color bool

	// Enhancement gains for color mode. 1.0 is a no-op for each.
	Contrast   float64
	Saturation float64
	Brightness float64
}

// DefaultOptions returns the render defaults. The enhancement gains are
// visual tuning, chosen to make terminal output pop slightly.
func DefaultOptions() Options {
	return Options{
		Width:      120,
		Charset:    DefaultCharset,
		Contrast:   1.15,
		Saturation: 1.3,
		Brightness: 1.05,
	}
}

func (o Options) validate() error {
	if len(o.Charset) == 0 {
		return fmt.Errorf("ascii: empty charset: %w", ErrInvalidInput)
	}
	if o.Width < 1 {
		return fmt.Errorf("ascii: target width %d: %w", o.Width, ErrInvalidInput)
	}
	if o.Height < 0 {
		return fmt.Errorf("ascii: target height %d: %w", o.Height, ErrInvalidInput)
	}
	if o.Color && (o.Contrast <= 0 || o.Saturation <= 0 || o.Brightness <= 0) {
		return fmt.Errorf("ascii: enhancement gains must be positive: %w", ErrInvalidInput)
	}
	return nil
}

// Render converts an image to a character grid of exactly
// Options.Width columns and Options.Height rows (derived from the
// source aspect ratio when Height is zero). The source image is never
// modified.
func Render(img image.Image, opts Options) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if img == nil {
		return "", fmt.Errorf("ascii: nil image: %w", ErrInvalidInput)
	}

	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW == 0 || srcH == 0 {
		return "", fmt.Errorf("ascii: empty image: %w", ErrInvalidInput)
	}

	start := time.Now()

	rows := opts.Height
	if rows == 0 {
		rows = DeriveRows(srcW, srcH, opts.Width)
	}

	// Box filtering averages the source pixels covered by each cell.
	cells := imaging.Resize(img, opts.Width, rows, imaging.Box)

	charset := []rune(opts.Charset)
	var sb strings.Builder
	if opts.Color {
		// Worst case per cell: escape prefix + rune + reset.
		sb.Grow(rows * opts.Width * 24)
	} else {
		sb.Grow(rows * (opts.Width + 1))
	}

	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < opts.Width; x++ {
			i := cells.PixOffset(x, y)
			r, g, b := cells.Pix[i], cells.Pix[i+1], cells.Pix[i+2]

			v := luma(r, g, b)
			if opts.Invert {
				v = 255 - v
			}
			ch := charset[binIndex(v, len(charset))]

			if !opts.Color {
				sb.WriteRune(ch)
				continue
			}

			er, eg, eb := enhance(r, g, b, opts)
			fmt.Fprintf(&sb, "\x1b[38;2;%d;%d;%dm%c\x1b[0m", er, eg, eb, ch)
		}
	}

	metrics.RenderDuration.Observe(time.Since(start).Seconds())
	if opts.Color {
		metrics.RendersTotal.WithLabelValues("color").Inc()
	} else {
		metrics.RendersTotal.WithLabelValues("plain").Inc()
	}

	return sb.String(), nil
}

// DeriveRows computes the row count that preserves the source aspect
// ratio for a given column count, once the character cell aspect is
// compensated for. Never returns less than 1.
func DeriveRows(srcW, srcH, cols int) int {
	rows := int(math.Round(float64(srcH) / float64(srcW) * float64(cols) / charAspect))
	if rows < 1 {
		rows = 1
	}
	return rows
}

// luma converts an RGB triple to a perceptual grayscale intensity using
// the Rec. 601 weights.
func luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
}

// binIndex maps an intensity to one of n equal-width bins over [0,256).
// The mapping is monotonic non-decreasing in v.
func binIndex(v uint8, n int) int {
	idx := int(v) * n / 256
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// enhance applies the color-mode enhancement chain: contrast stretch
// about mid-gray, saturation gain in HSV, then a brightness multiply,
// clamping into [0,255] after every stage. All gains at 1.0 reproduce
// the input exactly.
func enhance(r, g, b uint8, opts Options) (uint8, uint8, uint8) {
	fr, fg, fb := float64(r), float64(g), float64(b)

	if opts.Contrast != 1.0 {
		fr = clamp255((fr-128)*opts.Contrast + 128)
		fg = clamp255((fg-128)*opts.Contrast + 128)
		fb = clamp255((fb-128)*opts.Contrast + 128)
	}

	if opts.Saturation != 1.0 {
		c := colorful.Color{R: fr / 255, G: fg / 255, B: fb / 255}
		h, s, v := c.Hsv()
		s = math.Min(1, s*opts.Saturation)
		c = colorful.Hsv(h, s, v)
		fr = clamp255(c.R * 255)
		fg = clamp255(c.G * 255)
		fb = clamp255(c.B * 255)
	}

	if opts.Brightness != 1.0 {
		fr = clamp255(fr * opts.Brightness)
		fg = clamp255(fg * opts.Brightness)
		fb = clamp255(fb * opts.Brightness)
	}

	return uint8(math.Round(fr)), uint8(math.Round(fg)), uint8(math.Round(fb))
}

func clamp255(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
