package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/msomdec/bloomy/internal/domain"
)

// KVStore implements storage.Store on the kv_entries table.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`select data from kv_entries where storage_key = $1`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get kv entry: %w", err)
	}
	return data, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("set kv entry: %w", err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `delete from kv_entries where storage_key = $1`, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}
	return nil
}

// Update locks the row with SELECT ... FOR UPDATE. A missing key is first
// inserted empty so concurrent creators serialise on the same row.
func (s *KVStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existed bool
	err = tx.QueryRowContext(ctx, `
		insert into kv_entries (storage_key, data) values ($1, ''::bytea)
		on conflict (storage_key) do nothing
		returning false
	`, key).Scan(&existed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		existed = true
	case err != nil:
		return fmt.Errorf("reserve kv entry: %w", err)
	}

	var current []byte
	if err := tx.QueryRowContext(ctx,
		`select data from kv_entries where storage_key = $1 for update`, key,
	).Scan(&current); err != nil {
		return fmt.Errorf("read kv entry: %w", err)
	}
	if !existed {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if err := upsert(ctx, tx, key, next); err != nil {
		return fmt.Errorf("write kv entry: %w", err)
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, db execer, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := db.ExecContext(ctx, `
		insert into kv_entries (storage_key, data, updated_at) values ($1, $2, now())
		on conflict (storage_key) do update set data = excluded.data, updated_at = excluded.updated_at
	`, key, value)
	return err
}
