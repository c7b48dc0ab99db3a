package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// sanitizeFilename strips any path components and replaces characters
// outside a conservative allowlist, so uploaded names cannot traverse
// directories or smuggle control characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}

// saveUpload writes an uploaded file into the upload directory under a
// sanitized, collision-free name and returns the stored path and size.
func (h *Handlers) saveUpload(src multipart.File, originalName string) (string, int64, error) {
	name := sanitizeFilename(originalName)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	// A short unique suffix keeps concurrent uploads of the same file apart.
	unique := fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
	path := filepath.Join(h.config.UploadDir, unique)

	dst, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("failed to store upload: %w", err)
	}

	return path, size, nil
}

// deriveOutputPath maps an upload path to its output file in the output
// directory, replacing the extension with the given suffix.
func (h *Handlers) deriveOutputPath(uploadPath, suffix string) string {
	base := filepath.Base(uploadPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(h.config.OutputDir, name+suffix)
}
