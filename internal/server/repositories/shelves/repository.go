// Package shelves tracks the per-user container that owns a plant
// collection.
package shelves

import "context"

type Repository interface {
	// Ensure creates the shelf if missing.
	Ensure(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}
