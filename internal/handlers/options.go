package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"ascii-theater/internal/ascii"
)

// formBool parses a form value as a boolean, returning the fallback for
// absent or malformed values.
func formBool(r *http.Request, key string, fallback bool) bool {
	value := r.FormValue(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func formInt(r *http.Request, key string, fallback int) (int, error) {
	value := r.FormValue(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}

func formFloat(r *http.Request, key string, fallback float64) (float64, error) {
	value := r.FormValue(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return parsed, nil
}

// parseRenderOptions builds render options from request form values,
// falling back to the configured defaults. Validation happens here,
// once, before the core is invoked.
func (h *Handlers) parseRenderOptions(r *http.Request) (ascii.Options, error) {
	tuning := ascii.DefaultOptions()

	opts := ascii.Options{
		Charset:    h.config.DefaultCharset,
		Invert:     formBool(r, "invert", h.config.DefaultInvert),
		Color:      formBool(r, "color", h.config.DefaultColor),
		Contrast:   tuning.Contrast,
		Saturation: tuning.Saturation,
		Brightness: tuning.Brightness,
	}

	var err error
	if opts.Width, err = formInt(r, "width", h.config.DefaultWidth); err != nil {
		return ascii.Options{}, err
	}
	if opts.Width < 1 {
		return ascii.Options{}, fmt.Errorf("width must be >= 1, got %d", opts.Width)
	}

	if opts.Height, err = formInt(r, "height", 0); err != nil {
		return ascii.Options{}, err
	}
	if opts.Height < 0 {
		return ascii.Options{}, fmt.Errorf("height must be >= 0, got %d", opts.Height)
	}

	if charset := r.FormValue("charset"); charset != "" {
		opts.Charset = charset
	}

	if opts.Contrast, err = formFloat(r, "contrast", opts.Contrast); err != nil {
		return ascii.Options{}, err
	}
	if opts.Saturation, err = formFloat(r, "saturation", opts.Saturation); err != nil {
		return ascii.Options{}, err
	}
	if opts.Brightness, err = formFloat(r, "brightness", opts.Brightness); err != nil {
		return ascii.Options{}, err
	}
	if opts.Contrast <= 0 || opts.Saturation <= 0 || opts.Brightness <= 0 {
		return ascii.Options{}, fmt.Errorf("enhancement gains must be positive")
	}

	return opts, nil
}
