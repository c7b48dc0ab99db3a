package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// CompressibleTypes is a list of content type prefixes that should
	// be compressed
	CompressibleTypes []string
}

// DefaultCompressionConfig returns sensible defaults for compression.
// Rendered ASCII art in JSON responses compresses extremely well.
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		CompressibleTypes: []string{
			"text/html",
			"text/plain",
			"text/css",
			"application/json",
			"application/javascript",
		},
	}
}

// gzipWriterPool reduces allocations by reusing gzip writers
var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// gzipResponseWriter compresses the body once the content type is known
// to be compressible.
type gzipResponseWriter struct {
	http.ResponseWriter
	config      CompressionConfig
	gz          *gzip.Writer
	decided     bool
	compressing bool
}

func (g *gzipResponseWriter) decide() {
	g.decided = true
	contentType := g.Header().Get("Content-Type")
	for _, t := range g.config.CompressibleTypes {
		if strings.HasPrefix(contentType, t) {
			g.Header().Set("Content-Encoding", "gzip")
			g.Header().Del("Content-Length")
			g.gz = gzipWriterPool.Get().(*gzip.Writer)
			g.gz.Reset(g.ResponseWriter)
			g.compressing = true
			return
		}
	}
}

func (g *gzipResponseWriter) WriteHeader(code int) {
	if !g.decided {
		g.decide()
	}
	g.ResponseWriter.WriteHeader(code)
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if !g.decided {
		if g.Header().Get("Content-Type") == "" {
			g.Header().Set("Content-Type", http.DetectContentType(data))
		}
		g.decide()
	}
	if g.compressing {
		return g.gz.Write(data)
	}
	return g.ResponseWriter.Write(data)
}

func (g *gzipResponseWriter) close() {
	if g.compressing {
		if err := g.gz.Close(); err == nil {
			gzipWriterPool.Put(g.gz)
		}
		g.gz = nil
	}
}

// Compression returns middleware that gzips compressible responses when
// the client accepts it.
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gzw := &gzipResponseWriter{ResponseWriter: w, config: config}
			defer gzw.close()
			next.ServeHTTP(gzw, r)
		})
	}
}
