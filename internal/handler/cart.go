package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/view"
)

// CartHandler serves the cart as JSON and as datastar fragments.
type CartHandler struct {
	product domain.Product
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(product domain.Product) *CartHandler {
	return &CartHandler{product: product}
}

// HandleGet returns the cart.
// GET /api/cart
func (h *CartHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	cart, err := browserFrom(r.Context()).cart.Get(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"cart": cart})
}

// HandleAdd adds one unit of a colour.
// POST /api/cart/items
// Request: {"color":"black"}
func (h *CartHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Color string `json:"color"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	cart, err := browserFrom(r.Context()).cart.Add(r.Context(), req.Color)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"cart": cart})
}

// HandleRemove takes one unit off a cart line.
// DELETE /api/cart/items/{index}
func (h *CartHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", msgBadRequest)
		return
	}

	cart, err := browserFrom(r.Context()).cart.Remove(r.Context(), index)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"cart": cart})
}

// HandleAddFragment adds the colour held in the datastar signals and patches
// the cart sidebar.
// POST /cart/items
func (h *CartHandler) HandleAddFragment(w http.ResponseWriter, r *http.Request) {
	var signals struct {
		Color string `json:"color"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	cart, err := browserFrom(r.Context()).cart.Add(r.Context(), signals.Color)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	h.patchCart(w, r, cart)
}

// HandleRemoveFragment takes one unit off a line and patches the sidebar.
// DELETE /cart/items/{index}
func (h *CartHandler) HandleRemoveFragment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	cart, err := browserFrom(r.Context()).cart.Remove(r.Context(), index)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	h.patchCart(w, r, cart)
}

func (h *CartHandler) patchCart(w http.ResponseWriter, r *http.Request, cart *service.Cart) {
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.CartFragment(h.product, cart)); err != nil {
		logSSEError(r, err)
		return
	}
	if err := sse.PatchElementTempl(view.CartCount(cart.Count)); err != nil {
		logSSEError(r, err)
	}
}

func logSSEError(r *http.Request, err error) {
	slog.WarnContext(r.Context(), "write SSE event", "path", r.URL.Path, "error", err)
}
