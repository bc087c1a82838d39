package service_test

import (
	"context"
	"math"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

var orderIDPattern = regexp.MustCompile(`^BLM-\d{4}-[0-9A-Z]{5}$`)

func sampleOrder(email string) service.OrderInput {
	return service.OrderInput{
		Email: email,
		Items: []domain.OrderItem{
			{ProductID: domain.SmartCase.ID, Name: domain.SmartCase.Name, Color: "black", Quantity: 2, UnitPrice: 1699},
		},
		Shipping: domain.OrderAddress{FirstName: "Jane", LastName: "Doe", Street: "1 rue de Rivoli", Postal: "75001", City: "Paris", Country: "FR"},
	}
}

func TestCreateOrder_Guest(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	ctx := context.Background()

	order, err := b.auth.CreateOrder(ctx, sampleOrder("Guest@X.com"))
	require.NoError(t, err)
	assert.Regexp(t, orderIDPattern, order.ID)
	assert.Nil(t, order.UserID)
	assert.Equal(t, "guest@x.com", order.Email)
	assert.Equal(t, int64(3398), order.Total)
	assert.Equal(t, "EUR", order.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Commande reçue", order.StatusHistory[0].Message)
	assert.Nil(t, order.TrackingNumber)

	found, err := f.auth.GetOrderByIDAndEmail(ctx, order.ID, "GUEST@x.com")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = f.auth.GetOrderByIDAndEmail(ctx, order.ID, "other@x.com")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Commande non trouvée.", mustMessage(t, err))

	_, err = f.auth.GetOrderByIDAndEmail(ctx, "", "")
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	ctx := context.Background()

	in := sampleOrder("bad")
	_, err := f.auth.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	in = sampleOrder("jane@x.com")
	in.Items = nil
	_, err = f.auth.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	in = sampleOrder("jane@x.com")
	wrong := int64(100)
	in.Total = &wrong
	_, err = f.auth.CreateOrder(ctx, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "Le montant total ne correspond pas aux articles.", mustMessage(t, err))

	line := func(quantity int, price int64) domain.OrderItem {
		return domain.OrderItem{ProductID: domain.SmartCase.ID, Name: domain.SmartCase.Name, Color: "black", Quantity: quantity, UnitPrice: price}
	}
	invalid := map[string][]domain.OrderItem{
		"zero quantity":         {line(0, 1699)},
		"negative price":        {line(1, -1)},
		"quantity above cap":    {line(domain.MaxItemQuantity+1, 1699)},
		"wrapping quantity":     {line(1<<62, 4), line(1, 1699)},
		"subtotal overflow":     {line(3, math.MaxInt64/2)},
		"total overflow":        {line(1, math.MaxInt64), line(1, 1)},
		"huge quantity negated": {line(math.MaxInt64/2, 3)},
	}
	for name, items := range invalid {
		t.Run(name, func(t *testing.T) {
			in := sampleOrder("jane@x.com")
			in.Items = items
			order, err := f.auth.CreateOrder(ctx, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Nil(t, order)
			assert.Equal(t, "Quantité ou prix d'article invalide.", mustMessage(t, err))
		})
	}
}

func TestListOrders_OwnOnlyNewestFirst(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	ctx := context.Background()

	jane := f.newBrowser()
	f.register(t, jane, "jane@x.com", "Secret12")
	john := f.newBrowser()
	f.register(t, john, "john@x.com", "Secret12")

	first, err := jane.auth.CreateOrder(ctx, sampleOrder("jane@x.com"))
	require.NoError(t, err)
	second, err := jane.auth.CreateOrder(ctx, sampleOrder("jane@x.com"))
	require.NoError(t, err)
	johns, err := john.auth.CreateOrder(ctx, sampleOrder("john@x.com"))
	require.NoError(t, err)

	list, err := jane.auth.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = jane.auth.GetOwnOrder(ctx, johns.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "orders of other users are hidden")

	own, err := jane.auth.GetOwnOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, own.ID)

	anon, err := f.newBrowser().auth.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestUpdateOrderStatus_Lifecycle(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	ctx := context.Background()

	order, err := f.auth.CreateOrder(ctx, sampleOrder("jane@x.com"))
	require.NoError(t, err)

	_, err = f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{Status: domain.OrderStatusDelivered})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "pending cannot jump to delivered")

	_, err = f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{Status: "lost"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{Status: domain.OrderStatusProcessing})
	require.NoError(t, err)
	assert.Equal(t, "En préparation", updated.StatusHistory[1].Message)

	_, err = f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{Status: domain.OrderStatusShipped})
	require.ErrorIs(t, err, domain.ErrMissingField, "shipping needs a tracking number")

	updated, err = f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{
		Status: domain.OrderStatusShipped, TrackingNumber: " COLISSIMO123 ", Message: "Parti",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, "COLISSIMO123", *updated.TrackingNumber)
	assert.Equal(t, domain.OrderStatusShipped, updated.Status)
	require.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, "Parti", updated.StatusHistory[2].Message)

	_, err = f.auth.UpdateOrderStatus(ctx, order.ID, service.StatusUpdate{Status: domain.OrderStatusCancelled})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "shipped orders cannot be cancelled")

	_, err = f.auth.UpdateOrderStatus(ctx, "BLM-2026-ZZZZZ", service.StatusUpdate{Status: domain.OrderStatusProcessing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
