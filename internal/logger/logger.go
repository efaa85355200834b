// Package logger holds the process-wide structured logger used by slabkit packages.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// EnvAllocLog enables allocator debug logging on stderr when set to any non-empty value.
const EnvAllocLog = "SLABKIT_LOG_ALLOC"

// L is the global logger instance. It discards all output until Init is called
// or EnvAllocLog is set.
var L = defaultLogger()

// Options configures the logger.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Writer  io.Writer  // Destination. Default: os.Stderr
	Level   slog.Level // Minimum level. Default: LevelInfo
	JSON    bool       // JSON records instead of key=value text
}

// Init replaces L according to opts.
func Init(opts Options) {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(w, handlerOpts))
		return
	}
	L = slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Debug reports whether L emits debug records. Hot paths check it before
// building attributes.
func Debug() bool {
	return L.Enabled(context.Background(), slog.LevelDebug)
}

func defaultLogger() *slog.Logger {
	if os.Getenv(EnvAllocLog) != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
