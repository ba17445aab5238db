// Package admins reads and maintains the admin allowlist, keyed by
// normalized email address.
package admins

import "context"

type Repository interface {
	Exists(ctx context.Context, email string) (bool, error)
	// Add is idempotent.
	Add(ctx context.Context, email string) error
}
