package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/view"
)

const recentOrdersPageSize = 3

// DashboardHandler handles the account dashboard.
type DashboardHandler struct{}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler() *DashboardHandler {
	return &DashboardHandler{}
}

// HandleDashboard renders the account overview. Anonymous visitors are sent
// back to the storefront.
// GET /dashboard
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	b := browserFrom(r.Context())
	user, err := b.auth.CurrentUser(r.Context())
	if err != nil {
		if _, ok := domain.Message(err); ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		slog.Error("load user for dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	orders, err := b.auth.ListOrders(r.Context())
	if err != nil {
		slog.Error("list orders for dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	cart, err := b.cart.Get(r.Context())
	if err != nil {
		slog.Error("get cart for dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := view.DashboardPage(view.Dashboard{
		User:        user,
		Recent:      page(orders, 0, recentOrdersPageSize),
		TotalOrders: len(orders),
		CartCount:   cart.Count,
	}).Render(r.Context(), w); err != nil {
		slog.Error("render dashboard", "error", err)
	}
}

// HandleLoadMoreOrders returns the next orders via SSE.
// GET /dashboard/orders?offset=N
func (h *DashboardHandler) HandleLoadMoreOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := browserFrom(r.Context()).auth.ListOrders(r.Context())
	if err != nil {
		slog.Error("load more orders", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	more := page(orders, offset, recentOrdersPageSize)

	sse := datastar.NewSSE(w, r)

	// Append the next order cards to the list.
	if err := sse.PatchElementTempl(
		view.OrdersFragment(more),
		datastar.WithSelectorID("recent-orders"),
		datastar.WithModeAppend(),
	); err != nil {
		logSSEError(r, err)
		return
	}

	// Replace the load-more button (updates count or removes it).
	if err := sse.PatchElementTempl(view.LoadMoreFragment(len(orders), offset+len(more))); err != nil {
		logSSEError(r, err)
	}
}

func page(orders []domain.Order, offset, size int) []domain.Order {
	if offset >= len(orders) {
		return nil
	}
	end := min(offset+size, len(orders))
	return orders[offset:end]
}
