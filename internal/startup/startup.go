package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"ascii-theater/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port      string
	UploadDir string
	OutputDir string
	DataDir   string

	// Render defaults, applied when a request omits the parameter
	DefaultWidth   int
	DefaultCharset string
	DefaultInvert  bool
	DefaultColor   bool

	// Playback
	MaxFrameSkip   int
	ClearEachFrame bool

	// Limits
	MaxUploadBytes int64

	MetricsEnabled bool
	LogStaticFiles bool

	// Derived paths
	HistoryPath string

	// Feature flag based on ffmpeg availability
	VideoEnabled bool
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	uploadDir := getEnv("UPLOAD_DIR", "/data/uploads")
	outputDir := getEnv("OUTPUT_DIR", "/data/outputs")
	dataDir := getEnv("DATA_DIR", "/data")
	defaultWidth := getEnvInt("DEFAULT_WIDTH", 120)
	defaultCharset := getEnv("DEFAULT_CHARSET", "@%#*+=-:. ")
	defaultInvert := getEnvBool("DEFAULT_INVERT", false)
	defaultColor := getEnvBool("DEFAULT_COLOR", false)
	maxFrameSkip := getEnvInt("MAX_FRAME_SKIP", 4)
	clearEachFrame := getEnvBool("CLEAR_EACH_FRAME", true)
	maxUploadMB := getEnvInt("MAX_UPLOAD_MB", 512)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logStaticFiles := getEnvBool("LOG_STATIC_FILES", false)

	logging.Info("  PORT:             %s", port)
	logging.Info("  UPLOAD_DIR:       %s", uploadDir)
	logging.Info("  OUTPUT_DIR:       %s", outputDir)
	logging.Info("  DATA_DIR:         %s", dataDir)
	logging.Info("  DEFAULT_WIDTH:    %d", defaultWidth)
	logging.Info("  DEFAULT_CHARSET:  %q", defaultCharset)
	logging.Info("  DEFAULT_INVERT:   %v", defaultInvert)
	logging.Info("  DEFAULT_COLOR:    %v", defaultColor)
	logging.Info("  MAX_FRAME_SKIP:   %d", maxFrameSkip)
	logging.Info("  CLEAR_EACH_FRAME: %v", clearEachFrame)
	logging.Info("  MAX_UPLOAD_MB:    %d", maxUploadMB)
	logging.Info("  METRICS_ENABLED:  %v", metricsEnabled)
	logging.Info("  LOG_STATIC_FILES: %v", logStaticFiles)
	logging.Info("  LOG_LEVEL:        %s", logging.Level())

	if defaultWidth < 1 {
		return nil, fmt.Errorf("DEFAULT_WIDTH must be >= 1, got %d", defaultWidth)
	}
	if defaultCharset == "" {
		return nil, fmt.Errorf("DEFAULT_CHARSET must not be empty")
	}
	if maxFrameSkip < 0 {
		logging.Warn("  Negative MAX_FRAME_SKIP, disabling frame skipping")
		maxFrameSkip = 0
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	var err error
	uploadDir, err = filepath.Abs(uploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload directory path: %w", err)
	}
	outputDir, err = filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}
	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	for _, dir := range []struct{ path, name string }{
		{uploadDir, "upload"},
		{outputDir, "output"},
		{dataDir, "data"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory: %w", dir.name, err)
		}
	}

	videoEnabled := checkFFmpeg()

	config := &Config{
		Port:           port,
		UploadDir:      uploadDir,
		OutputDir:      outputDir,
		DataDir:        dataDir,
		DefaultWidth:   defaultWidth,
		DefaultCharset: defaultCharset,
		DefaultInvert:  defaultInvert,
		DefaultColor:   defaultColor,
		MaxFrameSkip:   maxFrameSkip,
		ClearEachFrame: clearEachFrame,
		MaxUploadBytes: int64(maxUploadMB) * 1024 * 1024,
		MetricsEnabled: metricsEnabled,
		LogStaticFiles: logStaticFiles,
		HistoryPath:    filepath.Join(dataDir, "history.db"),
		VideoEnabled:   videoEnabled,
	}

	logging.Info("")
	return config, nil
}

// checkFFmpeg reports whether the ffmpeg and ffprobe binaries are on
// the PATH. Video uploads are rejected when they are missing.
func checkFFmpeg() bool {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			logging.Warn("  %s not found in PATH, video playback disabled", bin)
			return false
		}
	}
	logging.Info("  ffmpeg/ffprobe found, video playback enabled")
	return true
}

// LogServerStarted logs the final startup message
func LogServerStarted(port string, elapsed time.Duration) {
	logging.Info("------------------------------------------------------------")
	logging.Info("Server listening on :%s (startup took %s)", port, elapsed.Round(time.Millisecond))
	logging.Info("------------------------------------------------------------")
}

// LogShutdownInitiated logs the start of a graceful shutdown
func LogShutdownInitiated(signal string) {
	logging.Info("Received %s, shutting down gracefully...", signal)
}

// LogShutdownStep logs one step of the shutdown sequence
func LogShutdownStep(step string) {
	logging.Info("  %s...", step)
}

// LogShutdownComplete logs the end of the shutdown sequence
func LogShutdownComplete() {
	logging.Info("Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ___   _____ ______________   ________               __
   /   | / ___// ____/  _/  _/  /_  __/ /_  ___  ____ _/ /____  _____
  / /| | \__ \/ /    / / / /     / / / __ \/ _ \/ __ '/ __/ _ \/ ___/
 / ___ |___/ / /____/ /_/ /     / / / / / /  __/ /_/ / /_/  __/ /
/_/  |_/____/\____/___/___/    /_/ /_/ /_/\___/\__,_/\__/\___/_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version: %s", GoVersion)
	logging.Info("  OS/Arch:    %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs:       %d", runtime.NumCPU())
	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Info("  Created %s directory: %s", name, path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Info("  Using %s directory: %s", name, path)
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
