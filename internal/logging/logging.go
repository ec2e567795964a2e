// Package logging configures the process-wide slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// configMutex serializes Configure, which replaces global loggers.
var configMutex sync.Mutex

// Options is used to configure logging.
type Options struct {
	JSON     bool
	MinLevel slog.Level
	Output   io.Writer
}

// Configure installs a text or JSON handler as the default slog logger.
// It returns the new logger.
func Configure(opts Options) *slog.Logger {
	configMutex.Lock()
	defer configMutex.Unlock()

	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.MinLevel}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	// SetDefault also routes the log package through handler.
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
