package domain

import (
	"context"
	"time"
)

// User represents a registered shopper as stored in the directory.
type User struct {
	ID                string      `json:"id"`
	Email             string      `json:"email"`
	PasswordHash      string      `json:"password"`
	FirstName         string      `json:"firstName"`
	LastName          string      `json:"lastName"`
	Phone             string      `json:"phone,omitempty"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
	Addresses         []Address   `json:"addresses"`
	SavedCards        []SavedCard `json:"savedCards"`
	Preferences       Preferences `json:"preferences"`
	ResetTokenHash    string      `json:"resetTokenHash,omitempty"`
	ResetTokenExpires *time.Time  `json:"resetTokenExpires,omitempty"`
}

// Preferences holds per-user storefront settings.
type Preferences struct {
	Newsletter bool   `json:"newsletter"`
	Language   string `json:"language"`
}

// DefaultPreferences are assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{Newsletter: false, Language: "fr"}
}

// SavedCard is a display-only placeholder for a stored payment method.
// No card number or CVC is ever kept.
type SavedCard struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
}

// Address is a shipping or billing address nested in a user record.
type Address struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Street    string    `json:"street"`
	Street2   string    `json:"street2,omitempty"`
	Postal    string    `json:"postal"`
	City      string    `json:"city"`
	Country   string    `json:"country"`
	Phone     string    `json:"phone,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Sanitized returns a copy of the user without credential fields.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
	u.Addresses = append([]Address(nil), u.Addresses...)
	u.SavedCards = append([]SavedCard(nil), u.SavedCards...)
	return u
}

// DefaultAddress returns the address flagged as default, if any.
func (u *User) DefaultAddress() (Address, bool) {
	for _, a := range u.Addresses {
		if a.IsDefault {
			return a, true
		}
	}
	return Address{}, false
}

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	ReplaceAll(ctx context.Context, users []User) error
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*User, error)
	// Update applies fn to the stored record inside one atomic rewrite of
	// the directory. Returning an error from fn aborts the write.
	Update(ctx context.Context, id string, fn func(*User) error) (*User, error)
	Delete(ctx context.Context, id string) error
}
