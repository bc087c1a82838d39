package handler

import (
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

// UserDTO is the JSON representation of a user. Credentials never leave
// the server.
type UserDTO struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	FirstName   string             `json:"firstName"`
	LastName    string             `json:"lastName"`
	Phone       string             `json:"phone,omitempty"`
	Addresses   []domain.Address   `json:"addresses"`
	SavedCards  []domain.SavedCard `json:"savedCards"`
	Preferences domain.Preferences `json:"preferences"`
	CreatedAt   string             `json:"createdAt"`
	UpdatedAt   string             `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	dto := UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Phone:       u.Phone,
		Addresses:   u.Addresses,
		SavedCards:  u.SavedCards,
		Preferences: u.Preferences,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
	if dto.Addresses == nil {
		dto.Addresses = []domain.Address{}
	}
	if dto.SavedCards == nil {
		dto.SavedCards = []domain.SavedCard{}
	}
	return dto
}

// addressRequest is the address form shared by create and update.
type addressRequest struct {
	Label     *string `json:"label"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Street    *string `json:"street"`
	Street2   *string `json:"street2"`
	Postal    *string `json:"postal"`
	City      *string `json:"city"`
	Country   *string `json:"country"`
	Phone     *string `json:"phone"`
}

func (a addressRequest) input() service.AddressInput {
	return service.AddressInput{
		Label:     deref(a.Label),
		FirstName: deref(a.FirstName),
		LastName:  deref(a.LastName),
		Street:    deref(a.Street),
		Street2:   deref(a.Street2),
		Postal:    deref(a.Postal),
		City:      deref(a.City),
		Country:   deref(a.Country),
		Phone:     deref(a.Phone),
	}
}

func (a addressRequest) update() service.AddressUpdate {
	return service.AddressUpdate{
		Label:     a.Label,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Street:    a.Street,
		Street2:   a.Street2,
		Postal:    a.Postal,
		City:      a.City,
		Country:   a.Country,
		Phone:     a.Phone,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
