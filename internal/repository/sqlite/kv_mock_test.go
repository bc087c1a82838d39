package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/repository/sqlite"
)

func TestKVStore_GetWrapsDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT data FROM kv_entries").
		WithArgs("bloomy_users").
		WillReturnError(errors.New("disk I/O error"))

	_, err = sqlite.NewKVStore(db).Get(context.Background(), "bloomy_users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get kv entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_UpdateRollsBackOnWriteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT data FROM kv_entries").
		WithArgs("bloomy_orders").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("[]")))
	mock.ExpectExec("INSERT INTO kv_entries").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = sqlite.NewKVStore(db).Update(context.Background(), "bloomy_orders", func(cur []byte) ([]byte, error) {
		return []byte(`[{"id":"BLM-2026-AAAAA"}]`), nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write kv entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKVStore_UpdateCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT data FROM kv_entries").
		WithArgs("bloomy_cart").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("bloomy_cart", []byte("[]"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var seen []byte
	err = sqlite.NewKVStore(db).Update(context.Background(), "bloomy_cart", func(cur []byte) ([]byte, error) {
		seen = cur
		return []byte("[]"), nil
	})
	require.NoError(t, err)
	assert.Nil(t, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}
