package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"ascii-theater/internal/ascii"
	"ascii-theater/internal/history"
	"ascii-theater/internal/logging"
	"ascii-theater/internal/mediatypes"
	"ascii-theater/internal/metrics"
	"ascii-theater/internal/player"
	"ascii-theater/internal/video"

	"github.com/disintegration/imaging"

	// Image format decoders for imaging.Open fallback paths
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp" // WebP format support
)

const clearAndHome = "\x1b[H\x1b[2J"

// ImageUploadResponse is returned after a successful image conversion.
type ImageUploadResponse struct {
	Kind       string `json:"kind"`
	UploadPath string `json:"uploadPath"`
	OutputPath string `json:"outputPath"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ASCII      string `json:"ascii"`
}

// VideoUploadResponse is returned after a video upload is accepted.
type VideoUploadResponse struct {
	Kind       string  `json:"kind"`
	UploadPath string  `json:"uploadPath"`
	OutputPath string  `json:"outputPath"`
	Playing    bool    `json:"playing"`
	FPS        float64 `json:"fps,omitempty"`
	Duration   float64 `json:"duration,omitempty"`
}

// UploadImage accepts a multipart image upload, renders it to ASCII,
// persists the result and returns it.
func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		writeJSONError(w, "No image uploaded", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close upload: %v", err)
		}
	}()

	if mediatypes.TypeForPath(header.Filename) != mediatypes.FileTypeImage {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		writeJSONError(w, "Unsupported image format", http.StatusBadRequest)
		return
	}

	opts, err := h.parseRenderOptions(r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, size, err := h.saveUpload(file, header.Filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		logging.Error("image upload save failed: %v", err)
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	metrics.UploadBytes.WithLabelValues("image").Add(float64(size))

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		logging.Warn("failed to decode %s: %v", path, err)
		writeJSONError(w, "Could not decode image", http.StatusBadRequest)
		return
	}

	art, err := ascii.Render(img, opts)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		if errors.Is(err, ascii.ErrInvalidInput) {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
		} else {
			logging.Error("render failed for %s: %v", path, err)
			writeJSONError(w, "Render failed", http.StatusInternalServerError)
		}
		return
	}

	outPath := h.deriveOutputPath(path, "_ascii.txt")
	if err := os.WriteFile(outPath, []byte(art), 0o644); err != nil {
		metrics.UploadsTotal.WithLabelValues("image", "error").Inc()
		logging.Error("failed to write output %s: %v", outPath, err)
		writeJSONError(w, "Failed to persist output", http.StatusInternalServerError)
		return
	}

	if formBool(r, "terminal", false) {
		fmt.Fprint(h.terminal, clearAndHome+art+"\n")
	}

	h.recordConversion(r.Context(), history.Conversion{
		Kind:       "image",
		SourcePath: path,
		OutputPath: outPath,
		Width:      opts.Width,
		Color:      opts.Color,
	})

	bounds := img.Bounds()
	rows := opts.Height
	if rows == 0 {
		rows = ascii.DeriveRows(bounds.Dx(), bounds.Dy(), opts.Width)
	}

	metrics.UploadsTotal.WithLabelValues("image", "success").Inc()
	writeJSON(w, ImageUploadResponse{
		Kind:       "image",
		UploadPath: path,
		OutputPath: outPath,
		Width:      opts.Width,
		Height:     rows,
		ASCII:      art,
	})
}

// UploadVideo accepts a multipart video upload and starts terminal
// playback. A second upload while one is playing is rejected with 409.
func (h *Handlers) UploadVideo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
		writeJSONError(w, "No video uploaded", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("failed to close upload: %v", err)
		}
	}()

	if mediatypes.TypeForPath(header.Filename) != mediatypes.FileTypeVideo {
		metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
		writeJSONError(w, "Unsupported video format", http.StatusBadRequest)
		return
	}

	if !h.config.VideoEnabled {
		metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
		writeJSONError(w, "Video support disabled (ffmpeg not available)", http.StatusServiceUnavailable)
		return
	}

	opts, err := h.parseRenderOptions(r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	path, size, err := h.saveUpload(file, header.Filename)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
		logging.Error("video upload save failed: %v", err)
		writeJSONError(w, "Failed to store upload", http.StatusInternalServerError)
		return
	}
	metrics.UploadBytes.WithLabelValues("video").Add(float64(size))

	response := VideoUploadResponse{Kind: "video", UploadPath: path}

	// Playback outlives the request, so the decoder is not bound to the
	// request context.
	if formBool(r, "terminal", true) {
		src, err := video.Open(context.Background(), path)
		if err != nil {
			metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
			logging.Warn("failed to open video %s: %v", path, err)
			writeJSONError(w, "Failed to open video", http.StatusBadRequest)
			return
		}

		stream := video.NewStream(src, opts)
		if err := h.player.Start(stream); err != nil {
			stream.Close()
			metrics.UploadsTotal.WithLabelValues("video", "error").Inc()
			if errors.Is(err, player.ErrAlreadyRunning) {
				writeJSONError(w, err.Error(), http.StatusConflict)
				return
			}
			logging.Error("playback start failed: %v", err)
			writeJSONError(w, "Failed to start playback", http.StatusInternalServerError)
			return
		}

		info := src.Info()
		response.Playing = true
		response.FPS = info.FPS
		response.Duration = info.Duration
	}

	notePath := h.deriveOutputPath(path, "_howto.txt")
	note := fmt.Sprintf("You uploaded: %s\nPlayback started in the server terminal (if enabled).\nUse POST /api/control/stop to stop it.\n", path)
	if err := os.WriteFile(notePath, []byte(note), 0o644); err != nil {
		logging.Warn("failed to write note %s: %v", notePath, err)
	}
	response.OutputPath = notePath

	h.recordConversion(r.Context(), history.Conversion{
		Kind:       "video",
		SourcePath: path,
		OutputPath: notePath,
		Width:      opts.Width,
		Color:      opts.Color,
	})

	metrics.UploadsTotal.WithLabelValues("video", "success").Inc()
	writeJSON(w, response)
}

// recordConversion logs a history entry; failures are not surfaced to
// the client since the conversion itself succeeded.
func (h *Handlers) recordConversion(ctx context.Context, c history.Conversion) {
	if h.store == nil {
		return
	}
	if err := h.store.Record(ctx, c); err != nil {
		logging.Warn("failed to record conversion history: %v", err)
	}
}
