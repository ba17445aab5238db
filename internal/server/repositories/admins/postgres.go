package admins

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/plantshelf/internal/common"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Exists(ctx context.Context, email string) (bool, error) {
	var ok bool
	query := `SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1)`
	if err := r.db.QueryRowContext(ctx, query, common.NormalizeEmail(email)).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Add(ctx context.Context, email string) error {
	query := `INSERT INTO admins (email) VALUES ($1) ON CONFLICT (email) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, common.NormalizeEmail(email)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
