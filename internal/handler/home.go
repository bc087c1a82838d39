package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/view"
)

// HomeHandler renders the storefront.
type HomeHandler struct {
	product domain.Product
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(product domain.Product) *HomeHandler {
	return &HomeHandler{product: product}
}

// HandleHome renders the home page.
func (h *HomeHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	b := browserFrom(r.Context())
	cart, err := b.cart.Get(r.Context())
	if err != nil {
		slog.Error("get cart for home", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	nav := view.Nav{CartCount: cart.Count}
	if session, err := b.auth.GetSession(r.Context()); err == nil && session != nil {
		nav.FirstName = session.FirstName
	}

	if err := view.HomePage(h.product, cart, nav).Render(r.Context(), w); err != nil {
		slog.Error("render home", "error", err)
	}
}
