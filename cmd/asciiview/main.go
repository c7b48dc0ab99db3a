package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/mediatypes"
	"ascii-theater/internal/player"
	"ascii-theater/internal/video"

	"github.com/disintegration/imaging"
	"golang.org/x/term"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP format support
)

func main() {
	width := flag.Int("width", 0, "output width in characters (0 = terminal width)")
	height := flag.Int("height", 0, "output height in rows (0 = derive from aspect ratio)")
	charset := flag.String("charset", ascii.DefaultCharset, "character palette, darkest to brightest")
	invert := flag.Bool("invert", false, "invert the intensity scale")
	color := flag.Bool("color", false, "emit truecolor ANSI output")
	noClear := flag.Bool("no-clear", false, "do not clear the screen between video frames")
	skip := flag.Int("skip", 4, "max frames to skip when behind schedule (0 = never skip)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <image-or-video>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	opts := ascii.DefaultOptions()
	opts.Width = *width
	opts.Height = *height
	opts.Charset = *charset
	opts.Invert = *invert
	opts.Color = *color

	if opts.Width == 0 {
		opts.Width = terminalWidth()
	}

	var err error
	switch mediatypes.TypeForPath(path) {
	case mediatypes.FileTypeImage:
		err = showImage(path, opts)
	case mediatypes.FileTypeVideo:
		err = playVideo(path, opts, !*noClear, *skip)
	default:
		err = fmt.Errorf("unsupported file type: %s", path)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// terminalWidth returns the current terminal width, falling back to 80
// columns when stdout is not a terminal.
func terminalWidth() int {
	if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
		return cols
	}
	return 80
}

func showImage(path string, opts ascii.Options) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}

	art, err := ascii.Render(img, opts)
	if err != nil {
		return err
	}

	fmt.Println(art)
	return nil
}

func playVideo(path string, opts ascii.Options, clearEach bool, maxSkip int) error {
	src, err := video.Open(context.Background(), path)
	if err != nil {
		return err
	}

	stream := video.NewStream(src, opts)
	defer stream.Close()

	cfg := player.DefaultConfig()
	cfg.ClearEachFrame = clearEach
	cfg.MaxFrameSkip = maxSkip
	p := player.New(os.Stdout, cfg)

	if err := p.Start(stream); err != nil {
		return err
	}

	// Block until end-of-stream or interrupt.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			p.Stop()
			return nil
		case <-ticker.C:
			if !p.Running() {
				return nil
			}
		}
	}
}
