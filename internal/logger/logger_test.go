package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		logFunc   string
		checkFunc func(t *testing.T, output string)
	}{
		{
			name:    "text logger at info level",
			config:  Config{Level: "info", Format: "text", Output: "stderr"},
			logFunc: "info",
			checkFunc: func(t *testing.T, output string) {
				if !strings.Contains(output, "level=INFO") ||
					!strings.Contains(output, "msg=\"test message\"") {
					t.Errorf("expected text log output with info level and message, got: %s", output)
				}
			},
		},
		{
			name:    "json logger at debug level",
			config:  Config{Level: "debug", Format: "json", Output: "stderr"},
			logFunc: "debug",
			checkFunc: func(t *testing.T, output string) {
				var logEntry map[string]interface{}
				if err := json.Unmarshal([]byte(output), &logEntry); err != nil {
					t.Fatalf("failed to unmarshal JSON log: %v, output: %s", err, output)
				}
				if logEntry["level"] != "DEBUG" || logEntry["msg"] != "test message" {
					t.Errorf("expected JSON log output with debug level and message, got: %v", logEntry)
				}
			},
		},
		{
			name:    "invalid level falls back to info",
			config:  Config{Level: "noisy", Format: "text"},
			logFunc: "debug",
			checkFunc: func(t *testing.T, output string) {
				if output != "" {
					t.Errorf("debug message should be suppressed at the fallback level, got: %s", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewLogger(tt.config, &buf)

			if tt.logFunc == "debug" {
				log.Debug("test message")
			} else {
				log.Info("test message")
			}

			tt.checkFunc(t, buf.String())
		})
	}
}
