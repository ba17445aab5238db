package actiontokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.ActionToken) error {
	query := `
		INSERT INTO action_tokens (token_hash, user_id, kind, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, t.Hash, t.UserID, string(t.Kind), t.Expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Consume(ctx context.Context, hash string, kind models.ActionKind) (*models.ActionToken, error) {
	query := `
		DELETE FROM action_tokens
		WHERE token_hash = $1 AND kind = $2
		RETURNING user_id, expires_at
	`
	t := &models.ActionToken{Hash: hash, Kind: kind}
	if err := r.db.QueryRowContext(ctx, query, hash, string(kind)).Scan(&t.UserID, &t.Expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) DeleteForUser(ctx context.Context, userID string, kind models.ActionKind) error {
	query := `DELETE FROM action_tokens WHERE user_id = $1 AND kind = $2`
	if _, err := r.db.ExecContext(ctx, query, userID, string(kind)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
