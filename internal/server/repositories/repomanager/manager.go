// Package repomanager vends repositories bound to a database handle, so
// services can run the same repositories on a pool or inside a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/plantshelf/internal/dbx"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/actiontokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/admins"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/plants"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/shelves"
	"github.com/dmitrijs2005/plantshelf/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	ActionTokens(db dbx.DBTX) actiontokens.Repository
	Admins(db dbx.DBTX) admins.Repository
	Shelves(db dbx.DBTX) shelves.Repository
	Plants(db dbx.DBTX) plants.Repository

	RunMigrations(ctx context.Context, db *sql.DB) error
}
