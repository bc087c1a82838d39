package docstore

import (
	"context"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/storage"
)

// CartRepository implements domain.CartRepository on the bloomy_cart
// document of one browser's durable store.
type CartRepository struct {
	store storage.Store
}

func NewCartRepository(store storage.Store) *CartRepository {
	return &CartRepository{store: store}
}

func (r *CartRepository) Get(ctx context.Context) ([]domain.CartItem, error) {
	return storage.LoadCollection[domain.CartItem](ctx, r.store, CartKey)
}

func (r *CartRepository) Update(ctx context.Context, fn func([]domain.CartItem) ([]domain.CartItem, error)) ([]domain.CartItem, error) {
	return storage.UpdateCollection(ctx, r.store, CartKey, fn)
}

func (r *CartRepository) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, CartKey)
}
