package plants

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/server/models"
	"github.com/dmitrijs2005/plantshelf/internal/shelf"
)

const nameConstraint = "plants_user_name_lower_key"

const columns = `id, user_id, name, name_lower, nickname, notes, next_water_at, favorite, photo_key, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlant(s scanner) (*models.Plant, error) {
	var (
		p                         models.Plant
		nickname, notes, photoKey sql.NullString
	)
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.NameLower, &nickname, &notes,
		&p.NextWaterAt, &p.Favorite, &photoKey, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Nickname = nickname.String
	p.Notes = notes.String
	p.PhotoKey = photoKey.String
	return &p, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapWriteError(err error) error {
	if dbx.IsUniqueViolation(err, nameConstraint) {
		return common.ErrDuplicateName
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.Plant, error) {
	query := `SELECT ` + columns + ` FROM plants WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Plant, 0)
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Plant, error) {
	query := `SELECT ` + columns + ` FROM plants WHERE user_id = $1 AND id = $2`
	p, err := scanPlant(r.db.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) NameTaken(ctx context.Context, userID, nameLower, excludeID string) (bool, error) {
	query := `
		SELECT id FROM plants
		WHERE user_id = $1 AND name_lower = $2
	`
	rows, err := r.db.QueryContext(ctx, query, userID, nameLower)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return false, fmt.Errorf("error scanning row: %w", err)
		}
		if id != excludeID {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("rows error: %w", err)
	}
	return false, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Plant) error {
	query := `
		INSERT INTO plants (id, user_id, name, name_lower, nickname, notes, next_water_at, favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query, p.ID, p.UserID, p.Name, p.NameLower,
		nullable(p.Nickname), nullable(p.Notes), p.NextWaterAt, p.Favorite, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch shelf.Patch, now time.Time) (*models.Plant, error) {
	args := []any{userID, id}
	var sets []string
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		set("name", *patch.Name)
		set("name_lower", shelf.NameKey(*patch.Name))
	}
	if patch.Nickname != nil {
		set("nickname", nullable(*patch.Nickname))
	}
	if patch.Notes != nil {
		set("notes", nullable(*patch.Notes))
	}
	if patch.ClearNextWaterAt {
		sets = append(sets, "next_water_at = NULL")
	} else if patch.NextWaterAt != nil {
		set("next_water_at", *patch.NextWaterAt)
	}
	if patch.Favorite != nil {
		set("favorite", *patch.Favorite)
	}
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = GREATEST($%d, updated_at + interval '1 microsecond')", len(args)))

	query := `UPDATE plants SET ` + strings.Join(sets, ", ") +
		` WHERE user_id = $1 AND id = $2 RETURNING ` + columns

	p, err := scanPlant(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}
	return p, nil
}

func (r *PostgresRepository) SetFavorite(ctx context.Context, userID, id string, fav *bool, now time.Time) (bool, error) {
	query := `
		UPDATE plants
		SET favorite = COALESCE($3, NOT favorite),
		    updated_at = GREATEST($4, updated_at + interval '1 microsecond')
		WHERE user_id = $1 AND id = $2
		RETURNING favorite
	`
	var target sql.NullBool
	if fav != nil {
		target = sql.NullBool{Bool: *fav, Valid: true}
	}

	var result bool
	if err := r.db.QueryRowContext(ctx, query, userID, id, target, now).Scan(&result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, common.ErrorNotFound
		}
		return false, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) SetPhotoKey(ctx context.Context, userID, id, key string, now time.Time) error {
	query := `
		UPDATE plants
		SET photo_key = $3,
		    updated_at = GREATEST($4, updated_at + interval '1 microsecond')
		WHERE user_id = $1 AND id = $2
	`
	res, err := r.db.ExecContext(ctx, query, userID, id, nullable(key), now)
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

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plants WHERE user_id = $1 AND id = $2`, userID, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM plants WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
