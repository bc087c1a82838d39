package service

import (
	"context"
	"strings"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/ids"
)

const (
	msgAddressNotFound = "Adresse non trouvée."
	msgAddressFields   = "Rue, code postal, ville et pays sont requis."
)

var errAddressNotFound = domain.Fail(domain.ErrNotFound, msgAddressNotFound)

// AddressInput carries an address form.
type AddressInput struct {
	Label     string
	FirstName string
	LastName  string
	Street    string
	Street2   string
	Postal    string
	City      string
	Country   string
	Phone     string
}

// AddressUpdate lists the address fields to change. Nil fields are kept.
type AddressUpdate struct {
	Label     *string
	FirstName *string
	LastName  *string
	Street    *string
	Street2   *string
	Postal    *string
	City      *string
	Country   *string
	Phone     *string
}

// Addresses returns the logged-in user's addresses.
func (s *AuthService) Addresses(ctx context.Context) ([]domain.Address, error) {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if user.Addresses == nil {
		return []domain.Address{}, nil
	}
	return user.Addresses, nil
}

// AddAddress appends an address. The first address becomes the default.
func (s *AuthService) AddAddress(ctx context.Context, in AddressInput) (*domain.Address, error) {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if blank(in.Street, in.Postal, in.City, in.Country) {
		return nil, domain.Fail(domain.ErrMissingField, msgAddressFields)
	}

	now := s.now().UTC()
	var added domain.Address
	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		added = domain.Address{
			ID:        ids.AddressID(),
			Label:     strings.TrimSpace(in.Label),
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Street:    strings.TrimSpace(in.Street),
			Street2:   strings.TrimSpace(in.Street2),
			Postal:    strings.TrimSpace(in.Postal),
			City:      strings.TrimSpace(in.City),
			Country:   strings.TrimSpace(in.Country),
			Phone:     strings.TrimSpace(in.Phone),
			IsDefault: len(u.Addresses) == 0,
			CreatedAt: now,
			UpdatedAt: now,
		}
		u.Addresses = append(u.Addresses, added)
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// UpdateAddress changes the fields of one address. The default flag is only
// changed through SetDefaultAddress.
func (s *AuthService) UpdateAddress(ctx context.Context, id string, update AddressUpdate) (*domain.Address, error) {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	for _, required := range []*string{update.Street, update.Postal, update.City, update.Country} {
		if required != nil && blank(*required) {
			return nil, domain.Fail(domain.ErrMissingField, msgAddressFields)
		}
	}

	now := s.now().UTC()
	var changed domain.Address
	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		i := addressIndex(u.Addresses, id)
		if i < 0 {
			return errAddressNotFound
		}
		a := &u.Addresses[i]
		set(&a.Label, update.Label)
		set(&a.FirstName, update.FirstName)
		set(&a.LastName, update.LastName)
		set(&a.Street, update.Street)
		set(&a.Street2, update.Street2)
		set(&a.Postal, update.Postal)
		set(&a.City, update.City)
		set(&a.Country, update.Country)
		set(&a.Phone, update.Phone)
		a.UpdatedAt = now
		changed = *a
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &changed, nil
}

// DeleteAddress removes an address. When it was the default, the first
// remaining address is promoted.
func (s *AuthService) DeleteAddress(ctx context.Context, id string) error {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		i := addressIndex(u.Addresses, id)
		if i < 0 {
			return errAddressNotFound
		}
		wasDefault := u.Addresses[i].IsDefault
		u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
		if wasDefault && len(u.Addresses) > 0 {
			u.Addresses[0].IsDefault = true
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	return err
}

// SetDefaultAddress flags id as the only default address.
func (s *AuthService) SetDefaultAddress(ctx context.Context, id string) error {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		if addressIndex(u.Addresses, id) < 0 {
			return errAddressNotFound
		}
		for i := range u.Addresses {
			u.Addresses[i].IsDefault = u.Addresses[i].ID == id
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	return err
}

func addressIndex(addresses []domain.Address, id string) int {
	for i := range addresses {
		if addresses[i].ID == id {
			return i
		}
	}
	return -1
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
