// Package session keeps the CLI's tokens in a local SQLite file, so a
// sign-in survives restarts and is shared by concurrent CLI processes.
package session

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/plantshelf/internal/client/session/migrations"
	"github.com/dmitrijs2005/plantshelf/internal/dbx"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyEmail        = "email"
)

// Tokens is a stored sign-in. The zero value means signed out.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	Email        string
}

func (t Tokens) SignedIn() bool { return t.RefreshToken != "" }

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session file at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("session migrations: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (Tokens, error) {
	var t Tokens
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newRepository(tx)
		var err error
		if t.AccessToken, err = repo.get(ctx, keyAccessToken); err != nil {
			return err
		}
		if t.RefreshToken, err = repo.get(ctx, keyRefreshToken); err != nil {
			return err
		}
		t.Email, err = repo.get(ctx, keyEmail)
		return err
	})
	return t, err
}

// Save replaces the stored tokens. An empty Email keeps the stored one.
func (s *Store) Save(ctx context.Context, t Tokens) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := newRepository(tx)
		if err := repo.set(ctx, keyAccessToken, t.AccessToken); err != nil {
			return err
		}
		if err := repo.set(ctx, keyRefreshToken, t.RefreshToken); err != nil {
			return err
		}
		if t.Email == "" {
			return nil
		}
		return repo.set(ctx, keyEmail, t.Email)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return newRepository(s.db).clear(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
