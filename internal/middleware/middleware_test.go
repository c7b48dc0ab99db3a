package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Clean", input: "/api/upload/image", want: "/api/upload/image"},
		{name: "Newlines", input: "a\nb\rc", want: "a b c"},
		{name: "ANSIEscape", input: "/x\x1b[2Jy", want: "/x[2Jy"},
		{name: "NullByte", input: "a\x00b", want: "ab"},
		{name: "TabKept", input: "a\tb", want: "a\tb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeLogField(tt.input); got != tt.want {
				t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShouldSkip(t *testing.T) {
	config := DefaultLoggingConfig()

	if !shouldSkip("/static/style.css", config) {
		t.Error("css not skipped")
	}
	if shouldSkip("/api/history", config) {
		t.Error("api path skipped")
	}

	config.LogStaticFiles = true
	if shouldSkip("/static/style.css", config) {
		t.Error("css skipped with LogStaticFiles enabled")
	}
}

func TestLoggerPreservesResponse(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			if _, err := w.Write([]byte("body")); err != nil {
				t.Fatal(err)
			}
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/playback", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	if rec.Body.String() != "body" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath("/api/upload/image"); got != "/api/upload/image" {
		t.Errorf("api path normalized to %q", got)
	}
	if got := normalizePath("/assets/app.js"); got != "/static" {
		t.Errorf("static path normalized to %q", got)
	}
}

func TestCompressionGzipsJSON(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte(strings.Repeat(`{"a":1}`, 100))); err != nil {
				t.Fatal(err)
			}
		}))

	req := httptest.NewRequest("GET", "/api/history", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("response not gzip encoded")
	}

	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("invalid gzip body: %v", err)
	}
	body, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if !strings.HasPrefix(string(body), `{"a":1}`) {
		t.Errorf("unexpected body %q", body[:20])
	}
}

func TestCompressionSkippedWithoutAcceptEncoding(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if _, err := w.Write([]byte("{}")); err != nil {
				t.Fatal(err)
			}
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("response compressed despite missing Accept-Encoding")
	}
	if rec.Body.String() != "{}" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCompressionSkipsNonCompressibleTypes(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			if _, err := w.Write([]byte{0x89, 0x50}); err != nil {
				t.Fatal(err)
			}
		}))

	req := httptest.NewRequest("GET", "/x.png", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("binary response was compressed")
	}
}
