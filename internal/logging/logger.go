// Package logging is the structured logger the client components accept by
// injection. SlogLogger is the only implementation.
package logging

import "context"

// Logger takes a message followed by alternating keys and values:
//
//	log.Debug(ctx, "request finished", "route", route, "status", code)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
