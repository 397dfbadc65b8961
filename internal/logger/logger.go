package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/wasatext/internal/constants"
)

// InitLogger configures the server logger for environment and sets it as default.
// Development gets a debug-level text handler with source locations unless
// forceJSON is set; every other environment logs JSON at info level.
func InitLogger(environment string, forceJSON bool) *slog.Logger {
	logger := slog.New(newHandler(os.Stdout, environment == constants.EnvDevelopment, forceJSON))
	slog.SetDefault(logger)
	return logger
}

// NewCLILogger returns a text logger for the command line client.
// Only warnings are shown unless debug is set.
func NewCLILogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newHandler(w io.Writer, development, forceJSON bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if development {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		if !forceJSON {
			return slog.NewTextHandler(w, opts)
		}
	}
	return slog.NewJSONHandler(w, opts)
}
