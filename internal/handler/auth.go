package handler

import (
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/bloomy/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct{}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// HandleRegister processes a JSON registration request.
// POST /api/auth/register
// Request:  {"email":"...","password":"...","firstName":"...","lastName":"..."}
// Response: {"success":true,"message":"...","user":{...}}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := browserFrom(r.Context()).auth.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Compte créé avec succès !", result{"user": toUserDTO(user)})
}

// HandleLogin processes a JSON login request. With remember set the session
// survives the tab.
// POST /api/auth/login
// Request:  {"email":"...","password":"...","remember":true}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	user, err := browserFrom(r.Context()).auth.Login(r.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Connexion réussie !", result{"user": toUserDTO(user)})
}

// HandleLogout clears the session. Datastar requests are redirected home.
// POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := browserFrom(r.Context()).auth.Logout(r.Context()); err != nil {
		writeFailure(w, r, err)
		return
	}
	if r.Header.Get("Datastar-Request") == "true" {
		sse := datastar.NewSSE(w, r)
		if err := sse.Redirect("/"); err != nil {
			logSSEError(r, err)
		}
		return
	}
	writeOK(w, http.StatusOK, "Déconnexion réussie.", nil)
}

// HandleMe returns the currently authenticated user.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "", result{"user": toUserDTO(UserFromContext(r.Context()))})
}

// HandleForgotPassword issues a reset token. The answer is the same whether
// the account exists or not.
// POST /api/auth/password/forgot
// Request:  {"email":"..."}
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	res, err := browserFrom(r.Context()).auth.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	fields := result{}
	if res.DemoToken != "" {
		fields["demoToken"] = res.DemoToken
	}
	writeOK(w, http.StatusOK, res.Message, fields)
}

// HandleResetPassword sets a new password from a reset token.
// POST /api/auth/password/reset
// Request:  {"token":"...","password":"..."}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	if err := browserFrom(r.Context()).auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "Mot de passe mis à jour avec succès !", nil)
}
