// Package actiontokens stores single-use email action codes (address
// verification and password reset) by their hash.
package actiontokens

import (
	"context"

	"github.com/dmitrijs2005/plantshelf/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ActionToken) error

	// Consume deletes the token of the given kind and returns it. Unknown
	// hashes, wrong kinds and already used tokens yield common.ErrorNotFound.
	// Expiry is checked by the caller.
	Consume(ctx context.Context, hash string, kind models.ActionKind) (*models.ActionToken, error)

	DeleteForUser(ctx context.Context, userID string, kind models.ActionKind) error
}
