package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/server/models"
)

type Repository interface {
	// Create inserts the user and fills ID and CreatedAt. A taken email
	// yields common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	SetEmailVerified(ctx context.Context, id string) error
	SetPasswordHash(ctx context.Context, id string, hash []byte) error
	// SetTokensValidAfter rejects every access token issued before t.
	SetTokensValidAfter(ctx context.Context, id string, t time.Time) error
	// Delete removes the user; tokens cascade. Missing users are not an error.
	Delete(ctx context.Context, id string) error
}
