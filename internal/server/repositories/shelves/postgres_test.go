package shelves

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestEnsureAndDelete(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+shelves.*ON\s+CONFLICT\s*\(user_id\)\s+DO\s+NOTHING`).
		WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE\s+FROM\s+shelves`).WithArgs("u1").WillReturnError(errors.New("down"))

	require.NoError(t, repo.Ensure(context.Background(), "u1"))
	require.ErrorContains(t, repo.Delete(context.Background(), "u1"), "down")
	require.NoError(t, mock.ExpectationsWereMet())
}
