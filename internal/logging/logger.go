// Package logging defines the structured-logging interface used across
// PlantShelf and its slog-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "plant added", "user_id", uid, "plant_id", id)
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)

	// Warn is for unusual but non-fatal conditions, such as a failed
	// best-effort cleanup.
	Warn(ctx context.Context, msg string, args ...any)

	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
