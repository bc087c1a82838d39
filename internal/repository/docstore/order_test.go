package docstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/storage"
)

func newOrder(id string, userID *string, email string, createdAt time.Time) *domain.Order {
	o := &domain.Order{
		ID:       id,
		UserID:   userID,
		Email:    email,
		Items:    []domain.OrderItem{{ProductID: domain.SmartCase.ID, Name: domain.SmartCase.Name, Color: "black", Quantity: 1, UnitPrice: 1699}},
		Total:    1699,
		Currency: "EUR",
	}
	o.CreatedAt = createdAt
	o.AppendStatus(domain.OrderStatusPending, "Commande reçue", createdAt)
	return o
}

func TestOrderRepository_CreateRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewOrderRepository(storage.NewMemory())
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-AAAAA", nil, "g@x.com", now)))
	err := repo.Create(ctx, newOrder("BLM-2026-AAAAA", nil, "other@x.com", now))
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestOrderRepository_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewOrderRepository(storage.NewMemory())
	uid := "u1"
	other := "u2"
	base := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00001", &uid, "j@x.com", base)))
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00002", &other, "o@x.com", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00003", &uid, "j@x.com", base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00004", nil, "j@x.com", base.Add(3*time.Hour))))

	orders, err := repo.ListByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "BLM-2026-00003", orders[0].ID)
	assert.Equal(t, "BLM-2026-00001", orders[1].ID)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderRepository_GetByIDAndEmail(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewOrderRepository(storage.NewMemory())
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-ABCDE", nil, "guest@x.com", time.Now())))

	got, err := repo.GetByIDAndEmail(ctx, "BLM-2026-ABCDE", "GUEST@x.com")
	require.NoError(t, err)
	assert.Equal(t, "guest@x.com", got.Email)

	_, err = repo.GetByIDAndEmail(ctx, "BLM-2026-ABCDE", "someone@x.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_UpdateAppendsHistory(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewOrderRepository(storage.NewMemory())
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-ABCDE", nil, "g@x.com", now)))

	updated, err := repo.Update(ctx, "BLM-2026-ABCDE", func(o *domain.Order) error {
		o.AppendStatus(domain.OrderStatusProcessing, "En préparation", now.Add(time.Minute))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusProcessing, updated.Status)
	assert.Len(t, updated.StatusHistory, 2)

	stored, err := repo.GetByID(ctx, "BLM-2026-ABCDE")
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 2)

	_, err = repo.Update(ctx, "BLM-2026-ZZZZZ", func(*domain.Order) error { return nil })
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderRepository_TombstoneUser(t *testing.T) {
	ctx := context.Background()
	repo := docstore.NewOrderRepository(storage.NewMemory())
	uid := "u1"
	now := time.Now().UTC()
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00001", &uid, "j@x.com", now)))
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00002", &uid, "j@x.com", now)))
	require.NoError(t, repo.Create(ctx, newOrder("BLM-2026-00003", nil, "g@x.com", now)))

	n, err := repo.TombstoneUser(ctx, uid, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	o, err := repo.GetByID(ctx, "BLM-2026-00001")
	require.NoError(t, err)
	require.NotNil(t, o.UserDeletedAt)
	require.NotNil(t, o.UserID)
	assert.Equal(t, uid, *o.UserID)

	n, err = repo.TombstoneUser(ctx, uid, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}
