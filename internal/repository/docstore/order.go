package docstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/storage"
)

// OrderRepository implements domain.OrderRepository on the bloomy_orders document.
type OrderRepository struct {
	store storage.Store
}

func NewOrderRepository(store storage.Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	_, err := storage.UpdateCollection(ctx, r.store, OrdersKey, func(orders []domain.Order) ([]domain.Order, error) {
		for _, o := range orders {
			if o.ID == order.ID {
				return nil, domain.ErrDuplicateID
			}
		}
		return append(orders, *order), nil
	})
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.find(ctx, func(o *domain.Order) bool { return o.ID == id })
}

func (r *OrderRepository) GetByIDAndEmail(ctx context.Context, id, email string) (*domain.Order, error) {
	return r.find(ctx, func(o *domain.Order) bool { return o.ID == id && sameEmail(o.Email, email) })
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := storage.LoadCollection[domain.Order](ctx, r.store, OrdersKey)
	if err != nil {
		return nil, err
	}
	mine := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.UserID != nil && *o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, fn func(*domain.Order) error) (*domain.Order, error) {
	var updated domain.Order
	_, err := storage.UpdateCollection(ctx, r.store, OrdersKey, func(orders []domain.Order) ([]domain.Order, error) {
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			candidate := orders[i]
			candidate.StatusHistory = append([]domain.StatusEntry(nil), candidate.StatusHistory...)
			if err := fn(&candidate); err != nil {
				return nil, err
			}
			candidate.ID = id
			orders[i] = candidate
			updated = candidate
			return orders, nil
		}
		return nil, domain.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *OrderRepository) TombstoneUser(ctx context.Context, userID string, at time.Time) (int, error) {
	marked := 0
	_, err := storage.UpdateCollection(ctx, r.store, OrdersKey, func(orders []domain.Order) ([]domain.Order, error) {
		marked = 0
		for i := range orders {
			if orders[i].UserID != nil && *orders[i].UserID == userID && orders[i].UserDeletedAt == nil {
				ts := at
				orders[i].UserDeletedAt = &ts
				marked++
			}
		}
		return orders, nil
	})
	if err != nil {
		return 0, fmt.Errorf("tombstone orders: %w", err)
	}
	return marked, nil
}

func (r *OrderRepository) find(ctx context.Context, match func(*domain.Order) bool) (*domain.Order, error) {
	orders, err := storage.LoadCollection[domain.Order](ctx, r.store, OrdersKey)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if match(&orders[i]) {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, domain.ErrNotFound
}
