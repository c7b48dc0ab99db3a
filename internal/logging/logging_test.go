package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		logLevel string
		want     logrus.Level
	}{
		{name: "Default", want: logrus.InfoLevel},
		{name: "DebugFlag", debug: "true", want: logrus.DebugLevel},
		{name: "DebugFlagNumeric", debug: "1", want: logrus.DebugLevel},
		{name: "DebugFlagOff", debug: "false", want: logrus.InfoLevel},
		{name: "LevelDebug", logLevel: "debug", want: logrus.DebugLevel},
		{name: "LevelWarn", logLevel: "warn", want: logrus.WarnLevel},
		{name: "LevelWarning", logLevel: "warning", want: logrus.WarnLevel},
		{name: "LevelError", logLevel: "ERROR", want: logrus.ErrorLevel},
		{name: "LevelGarbage", logLevel: "verbose", want: logrus.InfoLevel},
		{name: "DebugWinsOverLevel", debug: "yes", logLevel: "error", want: logrus.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DEBUG", tt.debug)
			t.Setenv("LOG_LEVEL", tt.logLevel)

			if got := levelFromEnv(); got != tt.want {
				t.Errorf("levelFromEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
