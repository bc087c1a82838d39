// Package storage is the key/value layer every Bloomy document lives in.
//
// A Store maps string keys to opaque byte values (JSON documents in
// practice). Each browser owns two stores, grouped as Scopes: an ephemeral
// one that lives as long as the tab and a durable one that survives restarts.
package storage

import (
	"context"

	"github.com/msomdec/bloomy/internal/domain"
)

// Store is a key/value store. Get returns domain.ErrNotFound for absent keys.
// Remove is idempotent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Update atomically replaces the value under key with the result of fn.
	// fn receives nil when the key is absent. An error from fn aborts the
	// update and is returned unchanged.
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// Scopes groups the two stores a browser owns.
type Scopes struct {
	Ephemeral Store
	Durable   Store
}

// Of returns the store for the given scope.
func (s Scopes) Of(scope domain.Scope) Store {
	if scope == domain.ScopeDurable {
		return s.Durable
	}
	return s.Ephemeral
}
