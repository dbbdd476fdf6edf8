// Package logging defines the structured-logging interface the uploads
// worker writes through. The engine and the record store take a Logger and
// never touch a concrete backend; production wires slog via SlogLogger.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "batch started", "records", len(recs), "folder", folder)
type Logger interface {
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions,
	// such as a status write that failed but did not stop the record.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value
	// pairs; handy for tagging every line of one record's processing.
	With(args ...any) Logger
}
