package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/bloomy/internal/domain"
)

const corruptMessage = "Les données enregistrées étaient corrompues et ont été réinitialisées."

// errCorrupt is returned for a collection that failed to decode and was
// reset to an empty array.
var errCorrupt = domain.Fail(domain.ErrCorruptState, corruptMessage)

// GetJSON decodes the value under key into dst. It reports false when the key
// is absent and wraps domain.ErrCorruptState when the stored value is not
// valid JSON for dst.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %v", domain.ErrCorruptState, key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// LoadCollection reads the JSON array stored under key. An absent key is an
// empty collection. A value that does not decode is reset to an empty array
// and the call fails with domain.ErrCorruptState.
func LoadCollection[T any](ctx context.Context, s Store, key string) ([]T, error) {
	var items []T
	ok, err := GetJSON(ctx, s, key, &items)
	if err != nil {
		if !errors.Is(err, domain.ErrCorruptState) {
			return nil, err
		}
		slog.Warn("resetting corrupt collection", "key", key, "error", err)
		if err := s.Set(ctx, key, []byte("[]")); err != nil {
			return nil, fmt.Errorf("reset %s: %w", key, err)
		}
		return nil, errCorrupt
	}
	if !ok {
		return []T{}, nil
	}
	return items, nil
}

// UpdateCollection runs fn over the JSON array stored under key inside one
// atomic Store.Update and writes the result back. A corrupt value is replaced
// by an empty array within the same update, fn is skipped, and the call fails
// with domain.ErrCorruptState.
func UpdateCollection[T any](ctx context.Context, s Store, key string, fn func([]T) ([]T, error)) ([]T, error) {
	var (
		result  []T
		corrupt bool
	)
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		items := []T{}
		if current != nil {
			if err := json.Unmarshal(current, &items); err != nil {
				slog.Warn("resetting corrupt collection", "key", key, "error", err)
				corrupt = true
				return []byte("[]"), nil
			}
		}
		next, err := fn(items)
		if err != nil {
			return nil, err
		}
		if next == nil {
			next = []T{}
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		result = next
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	if corrupt {
		return nil, errCorrupt
	}
	return result, nil
}
