package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/msomdec/bloomy/internal/repository/migrate"
	"github.com/msomdec/bloomy/internal/repository/postgres/migrations"
)

// DB wraps a PostgreSQL handle opened through the pgx stdlib driver.
type DB struct {
	SqlDB *sql.DB
}

// New opens a PostgreSQL database for the given DSN and verifies the connection.
func New(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{SqlDB: db}, nil
}

// Migrate applies the embedded schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	return migrate.Run(ctx, d.SqlDB, migrations.FS, migrate.Postgres)
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// Ping verifies the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.SqlDB.PingContext(ctx)
}

// KV returns the durable key/value store.
func (d *DB) KV() *KVStore {
	return NewKVStore(d.SqlDB)
}
