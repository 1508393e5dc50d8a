package logging

import (
	"log/slog"
	"os"
)

// Init configures the default slog logger. Warnings are the baseline;
// verbose lowers the level to debug, quiet raises it to error. Quiet wins
// when both are set.
func Init(verbose, quiet bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if quiet {
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
