package pax

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with pax-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPath adds the file path to the logger.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{
		Logger: l.Logger.With("path", path),
	}
}

// WithStripe adds a stripe index field to the logger.
func (l *Logger) WithStripe(stripe int) *Logger {
	return &Logger{
		Logger: l.Logger.With("stripe", stripe),
	}
}

// LogStripeWritten logs a stripe flush. Call it on a WithStripe logger.
func (l *Logger) LogStripeWritten(ctx context.Context, rows int, offset uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stripe write failed",
			"rows", rows,
			"offset", offset,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stripe written",
			"rows", rows,
			"offset", offset,
		)
	}
}

// LogStripeLoaded logs a stripe read. Call it on a WithStripe logger.
func (l *Logger) LogStripeLoaded(ctx context.Context, rows int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stripe read failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stripe loaded",
			"rows", rows,
		)
	}
}

// LogFileClosed logs the end of a write.
func (l *Logger) LogFileClosed(ctx context.Context, stripes int, rows, size uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed",
			"stripes", stripes,
			"rows", rows,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "file closed",
			"stripes", stripes,
			"rows", rows,
			"size", size,
		)
	}
}

// LogOpen logs opening a file for reading.
func (l *Logger) LogOpen(ctx context.Context, size int64, stripes int, rows uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"size", size,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "file opened",
			"size", size,
			"stripes", stripes,
			"rows", rows,
		)
	}
}
