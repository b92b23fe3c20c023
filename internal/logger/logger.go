// Package logger builds the application-wide slog logger from configuration.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const logFileName = "redline.log"

// Config selects level, format and destination of the logger.
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NewLogger builds a slog logger from cfg. A non-nil output overrides
// cfg.Output, which tests use to capture log lines.
func NewLogger(cfg Config, output io.Writer) *slog.Logger {
	if output == nil {
		output = destination(cfg.Output)
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// destination resolves the configured output name to a writer. Unknown
// names and file-open failures fall back to stderr so logging never goes
// dark.
func destination(name string) io.Writer {
	switch name {
	case "stdout":
		return os.Stdout
	case "file":
		file, err := os.OpenFile(logFileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", logFileName, err)
			return os.Stderr
		}
		return file
	default:
		return os.Stderr
	}
}

// parseLevel reads a slog level name, defaulting to info when the name is
// unknown.
func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
