package domain

import "context"

// Database defines lifecycle operations for the durable backend.
// Each implementation (SQLite, Postgres) owns its own migrations.
type Database interface {
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
