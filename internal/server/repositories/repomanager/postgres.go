package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/server/migrations"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/admins"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/plants"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/shelves"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/users"
)

type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) ActionTokens(db dbx.DBTX) actiontokens.Repository {
	return actiontokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Admins(db dbx.DBTX) admins.Repository {
	return admins.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Shelves(db dbx.DBTX) shelves.Repository {
	return shelves.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Plants(db dbx.DBTX) plants.Repository {
	return plants.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded schema migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}
