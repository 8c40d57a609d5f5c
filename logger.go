package bitsieve

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sieve-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithBound adds a bound field to the logger.
func (l *Logger) WithBound(bound uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("bound", bound),
	}
}

// WithCycle adds a cycle number field to the logger.
func (l *Logger) WithCycle(cycle uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("cycle", cycle),
	}
}

// LogCycle logs a completed (or failed) sieve cycle.
func (l *Logger) LogCycle(ctx context.Context, s Summary, err error) {
	if err != nil {
		l.ErrorContext(ctx, "sieve cycle failed",
			"bound", s.Bound,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "sieve cycle completed",
			"bound", s.Bound,
			"primes", s.Count,
			"clears", s.Clears,
			"cycle", s.Cycle,
			"elapsed", s.Elapsed,
		)
	}
}

// LogPulse logs an indicator pulse between cycles.
func (l *Logger) LogPulse(ctx context.Context, indicator string, err error) {
	if err != nil {
		l.WarnContext(ctx, "indicator pulse failed",
			"indicator", indicator,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "indicator pulsed",
			"indicator", indicator,
		)
	}
}
