// Package users provides the PostgreSQL-backed identity store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
)

const emailConstraint = "users_email_key"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email_verified, tokens_valid_after, created_at
	`
	err := r.db.QueryRowContext(ctx, query, user.Email, user.DisplayName, user.PasswordHash).
		Scan(&user.ID, &user.EmailVerified, &user.TokensValidAfter, &user.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, emailConstraint) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

const selectUser = `
		SELECT id, email, display_name, password_hash, email_verified, tokens_valid_after, created_at
		FROM users
`

func (r *PostgresRepository) get(ctx context.Context, where string, arg any) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRowContext(ctx, selectUser+where, arg).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.EmailVerified, &u.TokensValidAfter, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.get(ctx, "WHERE email = $1", email)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, "WHERE id = $1", id)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetEmailVerified(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET email_verified = TRUE WHERE id = $1`, id)
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) SetTokensValidAfter(ctx context.Context, id string, t time.Time) error {
	return r.exec(ctx, `UPDATE users SET tokens_valid_after = $2 WHERE id = $1`, id, t)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
