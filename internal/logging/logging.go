package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	logger   *logrus.Logger
	initOnce sync.Once
)

// get returns the process-wide logger, configuring it from the
// environment on first use.
func get() *logrus.Logger {
	initOnce.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
		logger.SetLevel(levelFromEnv())
	})
	return logger
}

// levelFromEnv resolves the log level from the DEBUG and LOG_LEVEL
// environment variables. DEBUG takes precedence.
func levelFromEnv() logrus.Level {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return logrus.DebugLevel
	}

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Level returns the current log level as a string.
func Level() string {
	return get().GetLevel().String()
}

// IsDebugEnabled returns true if debug logging is enabled.
func IsDebugEnabled() bool {
	return get().IsLevelEnabled(logrus.DebugLevel)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug).
func Debug(format string, args ...interface{}) {
	get().Debugf(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	get().Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	get().Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	get().Errorf(format, args...)
}

// Fatal logs an error message and exits.
func Fatal(format string, args ...interface{}) {
	get().Fatalf(format, args...)
}
