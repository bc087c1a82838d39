package handler

import (
	"net/http"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

// OrderHandler serves the order ledger.
type OrderHandler struct{}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler() *OrderHandler {
	return &OrderHandler{}
}

// HandleList returns the logged-in user's orders, newest first.
// GET /api/orders
func (h *OrderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := browserFrom(r.Context()).auth.ListOrders(r.Context())
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"orders": orders})
}

// HandleCreate records an order for the logged-in user or a guest.
// POST /api/orders
func (h *OrderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email           string              `json:"email"`
		Items           []domain.OrderItem  `json:"items"`
		Shipping        domain.OrderAddress `json:"shipping"`
		Billing         domain.OrderAddress `json:"billing"`
		Total           *int64              `json:"total"`
		Currency        string              `json:"currency"`
		PaymentIntentID string              `json:"paymentIntentId"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	order, err := browserFrom(r.Context()).auth.CreateOrder(r.Context(), service.OrderInput{
		Email:           req.Email,
		Items:           req.Items,
		Shipping:        req.Shipping,
		Billing:         req.Billing,
		Total:           req.Total,
		Currency:        req.Currency,
		PaymentIntentID: req.PaymentIntentID,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Commande enregistrée !", result{"order": order})
}

// HandleGet returns one of the logged-in user's orders.
// GET /api/orders/{id}
func (h *OrderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	order, err := browserFrom(r.Context()).auth.GetOwnOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"order": order})
}

// HandleTrack looks an order up by id and email, for guests.
// POST /api/orders/track
// Request: {"orderId":"...","email":"..."}
func (h *OrderHandler) HandleTrack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
		Email   string `json:"email"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	order, err := browserFrom(r.Context()).auth.GetOrderByIDAndEmail(r.Context(), req.OrderID, req.Email)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"order": order})
}

// HandleUpdateStatus moves an order along its lifecycle.
// POST /api/admin/orders/{id}/status
// Request: {"status":"shipped","message":"...","trackingNumber":"..."}
func (h *OrderHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status         domain.OrderStatus `json:"status"`
		Message        string             `json:"message"`
		TrackingNumber string             `json:"trackingNumber"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	order, err := browserFrom(r.Context()).auth.UpdateOrderStatus(r.Context(), r.PathValue("id"), service.StatusUpdate{
		Status:         req.Status,
		Message:        req.Message,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, "", result{"order": order})
}
