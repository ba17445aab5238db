// Package plants persists the plants of every user's shelf.
package plants

import (
	"context"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/server/models"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

// Repository scopes every call by owner: a plant of another user is
// reported as not found.
type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Plant, error)
	Get(ctx context.Context, userID, id string) (*models.Plant, error)

	// NameTaken reports whether another plant of the user already uses
	// nameLower. excludeID, when set, is ignored in the comparison.
	NameTaken(ctx context.Context, userID, nameLower, excludeID string) (bool, error)

	Create(ctx context.Context, p *models.Plant) error

	// Update applies the provided patch fields and stamps updated_at so that
	// it strictly increases. The patch must be normalized.
	Update(ctx context.Context, userID, id string, patch shelf.Patch, now time.Time) (*models.Plant, error)

	// SetFavorite stores fav, or flips the flag when fav is nil, and returns
	// the resulting value.
	SetFavorite(ctx context.Context, userID, id string, fav *bool, now time.Time) (bool, error)

	SetPhotoKey(ctx context.Context, userID, id, key string, now time.Time) error

	// Delete is idempotent.
	Delete(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) (int64, error)
}
