package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

func TestCart_AddMergesByColor(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	cart := f.newBrowser().cart()
	ctx := context.Background()

	empty, err := cart.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, "EUR", empty.Currency)

	_, err = cart.Add(ctx, "black")
	require.NoError(t, err)
	_, err = cart.Add(ctx, "blue")
	require.NoError(t, err)
	c, err := cart.Add(ctx, "black")
	require.NoError(t, err)

	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 3, c.Count)
	assert.Equal(t, int64(3*1699), c.Total)

	_, err = cart.Add(ctx, "pink")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Couleur inconnue.", mustMessage(t, err))
}

func TestCart_Remove(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	cart := f.newBrowser().cart()
	ctx := context.Background()

	_, _ = cart.Add(ctx, "black")
	_, _ = cart.Add(ctx, "black")
	_, _ = cart.Add(ctx, "white")

	c, err := cart.Remove(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Items[0].Quantity)

	c, err = cart.Remove(ctx, 0)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "white", c.Items[0].Color)

	_, err = cart.Remove(ctx, 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, cart.Clear(ctx))
	c, err = cart.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, c.Count)
}

func TestCart_RepricesStaleLines(t *testing.T) {
	store := storage.NewMemory()
	repo := docstore.NewCartRepository(store)
	ctx := context.Background()

	require.NoError(t, storage.SetJSON(ctx, store, docstore.CartKey, []domain.CartItem{
		{ID: domain.SmartCase.ID, Name: "Old name", Price: 999, Color: "black", Quantity: 2},
	}))

	c, err := service.NewCartService(repo, domain.SmartCase).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SmartCase.Price, c.Items[0].Price)
	assert.Equal(t, domain.SmartCase.Name, c.Items[0].Name)
	assert.Equal(t, 2*domain.SmartCase.Price, c.Total)

	stored, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.SmartCase.Price, stored[0].Price, "repriced lines are written back")
}

func TestCart_SharedAcrossTabsOfDevice(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	ctx := context.Background()

	_, err := f.openTab("device-1").cart().Add(ctx, "white")
	require.NoError(t, err)

	c, err := f.openTab("device-1").cart().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count)

	other, err := f.openTab("device-2").cart().Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, other.Count)
}

func TestCart_AddStopsAtLineCap(t *testing.T) {
	store := storage.NewMemory()
	ctx := context.Background()

	require.NoError(t, storage.SetJSON(ctx, store, docstore.CartKey, []domain.CartItem{
		{ID: domain.SmartCase.ID, Name: domain.SmartCase.Name, Price: domain.SmartCase.Price, Color: "black", Quantity: domain.MaxItemQuantity},
	}))
	cart := service.NewCartService(docstore.NewCartRepository(store), domain.SmartCase)

	_, err := cart.Add(ctx, "black")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Quantité maximale atteinte pour cette couleur.", mustMessage(t, err))

	c, err := cart.Add(ctx, "blue")
	require.NoError(t, err)
	assert.Equal(t, domain.MaxItemQuantity+1, c.Count, "other colours are unaffected")
}
