// Package refreshtokens declares the server-side store of refresh tokens.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes one token; unknown tokens are not an error.
	Delete(ctx context.Context, token string) error

	// DeleteAllForUser ends every session of the user.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}
