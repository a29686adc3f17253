// Package logging defines the minimal structured-logging interface used
// across duogallery. The server wires a slog-backed implementation; tests
// may substitute a silent one.
package logging

import "context"

// Logger is a context-aware, structured logger. Variadic args are
// interpreted as key-value pairs:
//
//	log.Info(ctx, "reservation committed", "id", id, "bytes", n)
type Logger interface {
	// Debug logs fine-grained diagnostics (sweep results, admission math).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs normal operational events.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value pairs.
	With(args ...any) Logger
}
