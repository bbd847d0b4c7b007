// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w. Verbose enables debug records,
// which include assembled prompts.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs a stderr logger as the slog default and returns it.
func Setup(verbose bool) *slog.Logger {
	l := New(os.Stderr, verbose)
	slog.SetDefault(l)
	return l
}
