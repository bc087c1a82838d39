package handler

import (
	"net/http"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

// AccountHandler serves profile, credential and address changes of the
// logged-in user. Every route sits behind RequireAuth.
type AccountHandler struct{}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler() *AccountHandler {
	return &AccountHandler{}
}

// HandleUpdateProfile changes name, phone or preferences.
// PATCH /api/account/profile
func (h *AccountHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName   *string             `json:"firstName"`
		LastName    *string             `json:"lastName"`
		Phone       *string             `json:"phone"`
		Preferences *domain.Preferences `json:"preferences"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := browserFrom(r.Context()).auth.UpdateProfile(r.Context(), service.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Profil mis à jour !", result{"user": toUserDTO(user)})
}

// HandleChangePassword replaces the password.
// POST /api/account/password
// Request: {"currentPassword":"...","newPassword":"..."}
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if err := browserFrom(r.Context()).auth.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Mot de passe modifié avec succès !", nil)
}

// HandleChangeEmail moves the account to a new email.
// POST /api/account/email
// Request: {"newEmail":"...","password":"..."}
func (h *AccountHandler) HandleChangeEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewEmail string `json:"newEmail"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := browserFrom(r.Context()).auth.ChangeEmail(r.Context(), req.NewEmail, req.Password)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Email modifié avec succès !", result{"user": toUserDTO(user)})
}

// HandleDeleteAccount removes the account after a password check.
// DELETE /api/account
// Request: {"password":"..."}
func (h *AccountHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if err := browserFrom(r.Context()).auth.DeleteAccount(r.Context(), req.Password); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Compte supprimé.", nil)
}

// HandleListAddresses returns the saved addresses.
// GET /api/account/addresses
func (h *AccountHandler) HandleListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := browserFrom(r.Context()).auth.Addresses(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"addresses": addresses})
}

// HandleAddAddress saves a new address.
// POST /api/account/addresses
func (h *AccountHandler) HandleAddAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !readJSON(w, r, &req) {
		return
	}

	address, err := browserFrom(r.Context()).auth.AddAddress(r.Context(), req.input())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Adresse ajoutée !", result{"address": address})
}

// HandleUpdateAddress changes the fields present in the body.
// PATCH /api/account/addresses/{id}
func (h *AccountHandler) HandleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req addressRequest
	if !readJSON(w, r, &req) {
		return
	}

	address, err := browserFrom(r.Context()).auth.UpdateAddress(r.Context(), r.PathValue("id"), req.update())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Adresse mise à jour !", result{"address": address})
}

// HandleDeleteAddress removes an address.
// DELETE /api/account/addresses/{id}
func (h *AccountHandler) HandleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := browserFrom(r.Context()).auth.DeleteAddress(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Adresse supprimée !", nil)
}

// HandleSetDefaultAddress flags an address as the default.
// POST /api/account/addresses/{id}/default
func (h *AccountHandler) HandleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	if err := browserFrom(r.Context()).auth.SetDefaultAddress(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Adresse par défaut mise à jour !", nil)
}
