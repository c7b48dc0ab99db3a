package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ascii-theater/internal/history"
	"ascii-theater/internal/player"
	"ascii-theater/internal/startup"
)

type testEnv struct {
	handlers *Handlers
	player   *player.Player
	terminal *bytes.Buffer
	store    *history.Store
	config   *startup.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tmp := t.TempDir()

	config := &startup.Config{
		Port:           "0",
		UploadDir:      filepath.Join(tmp, "uploads"),
		OutputDir:      filepath.Join(tmp, "outputs"),
		DataDir:        tmp,
		DefaultWidth:   120,
		DefaultCharset: "@%#*+=-:. ",
		MaxFrameSkip:   4,
		ClearEachFrame: true,
		MaxUploadBytes: 32 << 20,
		HistoryPath:    filepath.Join(tmp, "history.db"),
	}
	for _, dir := range []string{config.UploadDir, config.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	store, err := history.New(context.Background(), config.HistoryPath)
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	playerOut := &bytes.Buffer{}
	terminal := &bytes.Buffer{}
	p := player.New(playerOut, player.DefaultConfig())

	return &testEnv{
		handlers: New(p, store, config, terminal),
		player:   p,
		terminal: terminal,
		store:    store,
		config:   config,
	}
}

// multipartImage builds a multipart request body carrying a small PNG
// plus any extra form fields.
func multipartImage(t *testing.T, filename string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetNRGBA(x, 0, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
		img.SetNRGBA(x, 1, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(part, img); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	return body, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartImage(t, "art.png", map[string]string{
		"width":   "4",
		"height":  "2",
		"charset": " #",
	})
	req := httptest.NewRequest("POST", "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.handlers.UploadImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ImageUploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}

	if resp.ASCII != "    \n####" {
		t.Errorf("ascii = %q, want %q", resp.ASCII, "    \n####")
	}
	if resp.Width != 4 || resp.Height != 2 {
		t.Errorf("dimensions = %dx%d, want 4x2", resp.Width, resp.Height)
	}

	saved, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if string(saved) != resp.ASCII {
		t.Error("persisted output differs from response")
	}

	// And the conversion made it into the history.
	recent, err := env.store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].Kind != "image" {
		t.Errorf("history = %+v, want one image entry", recent)
	}
}

func TestUploadImageToTerminal(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartImage(t, "art.png", map[string]string{
		"width": "4", "height": "2", "terminal": "true",
	})
	req := httptest.NewRequest("POST", "/api/upload/image", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.handlers.UploadImage(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := env.terminal.String()
	if !strings.HasPrefix(out, clearAndHome) {
		t.Error("terminal output missing clear-and-home prefix")
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("terminal output missing trailing newline")
	}
}

func TestUploadImageErrors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		fields     map[string]string
		noFile     bool
		wantStatus int
	}{
		{name: "NoFile", noFile: true, wantStatus: http.StatusBadRequest},
		{name: "WrongExtension", filename: "notes.txt", wantStatus: http.StatusBadRequest},
		{name: "VideoExtension", filename: "clip.mp4", wantStatus: http.StatusBadRequest},
		{name: "ZeroWidth", filename: "a.png", fields: map[string]string{"width": "0"}, wantStatus: http.StatusBadRequest},
		{name: "BadWidth", filename: "a.png", fields: map[string]string{"width": "abc"}, wantStatus: http.StatusBadRequest},
		{name: "NegativeHeight", filename: "a.png", fields: map[string]string{"height": "-2"}, wantStatus: http.StatusBadRequest},
		{name: "ZeroContrast", filename: "a.png", fields: map[string]string{"contrast": "0"}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			var req *http.Request
			if tt.noFile {
				req = httptest.NewRequest("POST", "/api/upload/image", nil)
			} else {
				body, contentType := multipartImage(t, tt.filename, tt.fields)
				req = httptest.NewRequest("POST", "/api/upload/image", body)
				req.Header.Set("Content-Type", contentType)
			}

			rec := httptest.NewRecorder()
			env.handlers.UploadImage(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestUploadVideoDisabled(t *testing.T) {
	env := newTestEnv(t)
	env.config.VideoEnabled = false

	body, contentType := multipartImage(t, "clip.mp4", nil)
	req := httptest.NewRequest("POST", "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.handlers.UploadVideo(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestUploadVideoWrongExtension(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartImage(t, "photo.png", nil)
	req := httptest.NewRequest("POST", "/api/upload/video", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	env.handlers.UploadVideo(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type endlessStream struct{}

func (endlessStream) Next() (player.Frame, bool) {
	return player.Frame{Text: "x", Interval: 50 * time.Millisecond}, true
}

func TestPlaybackStatusAndStop(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.PlaybackStatus(rec, httptest.NewRequest("GET", "/api/playback", nil))
	if !strings.Contains(rec.Body.String(), "idle") {
		t.Errorf("idle status = %s", rec.Body.String())
	}

	if err := env.player.Start(endlessStream{}); err != nil {
		t.Fatal(err)
	}

	rec = httptest.NewRecorder()
	env.handlers.PlaybackStatus(rec, httptest.NewRequest("GET", "/api/playback", nil))
	if !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("running status = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	env.handlers.StopPlayback(rec, httptest.NewRequest("POST", "/api/control/stop", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("stop status = %d", rec.Code)
	}
	if env.player.Running() {
		t.Error("player still running after stop endpoint")
	}

	// Stop while idle stays a safe no-op.
	rec = httptest.NewRecorder()
	env.handlers.StopPlayback(rec, httptest.NewRequest("POST", "/api/control/stop", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("idle stop status = %d", rec.Code)
	}
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := env.store.Record(ctx, history.Conversion{
			Kind: "image", SourcePath: "s", OutputPath: "o", Width: 80,
		}); err != nil {
			t.Fatal(err)
		}
	}

	rec := httptest.NewRecorder()
	env.handlers.GetHistory(rec, httptest.NewRequest("GET", "/api/history?limit=2", nil))

	var resp HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}

	rec = httptest.NewRecorder()
	env.handlers.GetHistory(rec, httptest.NewRequest("GET", "/api/history?limit=junk", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.handlers.HealthCheck(rec, httptest.NewRequest("GET", "/health", nil))

	var health HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	if health.Status != statusHealthy {
		t.Errorf("status = %q", health.Status)
	}
	if health.Playing {
		t.Error("health reports playback while idle")
	}

	rec = httptest.NewRecorder()
	env.handlers.GetVersion(rec, httptest.NewRequest("GET", "/version", nil))

	var build startup.BuildInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &build); err != nil {
		t.Fatalf("invalid version JSON: %v", err)
	}
	if build.GoVersion == "" {
		t.Error("version response missing goVersion")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"weird name!.png", "weird_name_.png"},
		{"üñïcödé.jpg", "c_d_.jpg"},
		{"...", "upload"},
		{"", "upload"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseRenderOptionsDefaults(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/upload/image", nil)
	opts, err := env.handlers.parseRenderOptions(req)
	if err != nil {
		t.Fatalf("parseRenderOptions failed: %v", err)
	}

	if opts.Width != env.config.DefaultWidth {
		t.Errorf("width = %d, want config default %d", opts.Width, env.config.DefaultWidth)
	}
	if opts.Charset != env.config.DefaultCharset {
		t.Errorf("charset = %q", opts.Charset)
	}
	if opts.Height != 0 {
		t.Errorf("height = %d, want 0 (derived)", opts.Height)
	}
	if opts.Invert || opts.Color {
		t.Error("invert/color should default to false")
	}
}
