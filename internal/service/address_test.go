package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

func sampleAddress(label string) service.AddressInput {
	return service.AddressInput{
		Label: label, FirstName: "Jane", LastName: "Doe",
		Street: "1 rue de Rivoli", Postal: "75001", City: "Paris", Country: "FR",
	}
}

func defaults(addrs []domain.Address) []string {
	var ids []string
	for _, a := range addrs {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestAddresses_FirstIsDefault(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	a, err := b.auth.AddAddress(ctx, sampleAddress("Maison"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.ID, "addr_"))
	assert.True(t, a.IsDefault)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt, "a new address is stamped with both timestamps")

	stored, err := b.auth.Addresses(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].UpdatedAt.IsZero(), "UpdatedAt is persisted")

	second, err := b.auth.AddAddress(ctx, sampleAddress("Bureau"))
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	_, err = b.auth.AddAddress(ctx, service.AddressInput{Label: "incomplete"})
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestAddresses_SetDefaultIsExclusive(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	_, err := b.auth.AddAddress(ctx, sampleAddress("A"))
	require.NoError(t, err)
	bAddr, err := b.auth.AddAddress(ctx, sampleAddress("B"))
	require.NoError(t, err)

	require.NoError(t, b.auth.SetDefaultAddress(ctx, bAddr.ID))
	addrs, err := b.auth.Addresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bAddr.ID}, defaults(addrs))

	err = b.auth.SetDefaultAddress(ctx, "addr_missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, "Adresse non trouvée.", mustMessage(t, err))

	addrs, err = b.auth.Addresses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{bAddr.ID}, defaults(addrs), "failed update must not change flags")
}

func TestAddresses_DeleteDefaultPromotesFirstRemaining(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	a, _ := b.auth.AddAddress(ctx, sampleAddress("A"))
	second, _ := b.auth.AddAddress(ctx, sampleAddress("B"))
	third, _ := b.auth.AddAddress(ctx, sampleAddress("C"))

	require.NoError(t, b.auth.DeleteAddress(ctx, a.ID))
	addrs, err := b.auth.Addresses(ctx)
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	assert.Equal(t, []string{second.ID}, defaults(addrs))

	require.NoError(t, b.auth.DeleteAddress(ctx, third.ID))
	addrs, _ = b.auth.Addresses(ctx)
	assert.Equal(t, []string{second.ID}, defaults(addrs), "deleting a non-default keeps the default")

	require.NoError(t, b.auth.DeleteAddress(ctx, second.ID))
	addrs, _ = b.auth.Addresses(ctx)
	assert.Empty(t, addrs)

	assert.ErrorIs(t, b.auth.DeleteAddress(ctx, second.ID), domain.ErrNotFound)
}

func TestAddresses_Update(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	a, err := b.auth.AddAddress(ctx, sampleAddress("A"))
	require.NoError(t, err)

	updated, err := b.auth.UpdateAddress(ctx, a.ID, service.AddressUpdate{City: ptr("Lyon"), Postal: ptr("69001")})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", updated.City)
	assert.Equal(t, "1 rue de Rivoli", updated.Street)
	assert.True(t, updated.IsDefault)
	assert.False(t, updated.UpdatedAt.IsZero())

	_, err = b.auth.UpdateAddress(ctx, a.ID, service.AddressUpdate{City: ptr("")})
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, err = b.auth.UpdateAddress(ctx, "addr_missing", service.AddressUpdate{City: ptr("Nice")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
