package handler

import (
	"net/http"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/payment"
	"github.com/msomdec/bloomy/internal/service"
)

// CheckoutHandler serves payment intents and checkout.
type CheckoutHandler struct {
	payments *payment.Simulator
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(payments *payment.Simulator) *CheckoutHandler {
	return &CheckoutHandler{payments: payments}
}

// HandleCreateIntent opens a payment intent.
// POST /api/payment/intents
// Request: {"amount":1699,"currency":"eur","metadata":{...}}
func (h *CheckoutHandler) HandleCreateIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   int64             `json:"amount"`
		Currency string            `json:"currency"`
		Metadata map[string]string `json:"metadata"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	intent, err := h.payments.CreateIntent(r.Context(), req.Amount, req.Currency, req.Metadata)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "", result{"paymentIntent": intent})
}

// HandleCheckout pays the cart and records the order.
// POST /api/checkout
// Request: {"email":"...","shipping":{...},"billing":{...},"card":{...}}
func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string               `json:"email"`
		Shipping domain.OrderAddress  `json:"shipping"`
		Billing  *domain.OrderAddress `json:"billing"`
		Card     payment.Card         `json:"card"`
	}
	if !readJSON(w, r, &req) {
		return
	}

	receipt, err := browserFrom(r.Context()).checkout.Checkout(r.Context(), service.CheckoutInput{
		Email:    req.Email,
		Shipping: req.Shipping,
		Billing:  req.Billing,
		Card:     req.Card,
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, "Paiement réussi !", result{"order": receipt.Order, "paymentIntent": receipt.Intent})
}
