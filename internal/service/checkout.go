package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/payment"
)

const msgCartEmpty = "Votre panier est vide."

// CheckoutInput carries the checkout form.
type CheckoutInput struct {
	Email    string
	Shipping domain.OrderAddress
	// Billing defaults to Shipping when empty.
	Billing *domain.OrderAddress
	Card    payment.Card
}

// Receipt is the outcome of a successful checkout.
type Receipt struct {
	Order  *domain.Order   `json:"order"`
	Intent *payment.Intent `json:"paymentIntent"`
}

// CheckoutService turns a browser's cart into a paid order.
type CheckoutService struct {
	auth     *AuthService
	cart     *CartService
	payments *payment.Simulator
}

// NewCheckoutService creates a CheckoutService. auth must be bound to the
// same browser as cart.
func NewCheckoutService(auth *AuthService, cart *CartService, payments *payment.Simulator) *CheckoutService {
	return &CheckoutService{auth: auth, cart: cart, payments: payments}
}

// Checkout charges the cart total and records the order. The cart is only
// cleared once the order exists; a failed payment leaves it untouched.
func (s *CheckoutService) Checkout(ctx context.Context, in CheckoutInput) (*Receipt, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if blank(in.Shipping.Street, in.Shipping.Postal, in.Shipping.City, in.Shipping.Country) {
		return nil, domain.Fail(domain.ErrMissingField, msgAddressFields)
	}
	billing := in.Shipping
	if in.Billing != nil {
		billing = *in.Billing
	}

	cart, err := s.cart.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.Fail(domain.ErrInvalidInput, msgCartEmpty)
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, domain.OrderItem{
			ProductID: line.ID,
			Name:      line.Name,
			Color:     line.Color,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		})
	}

	intent, err := s.payments.CreateIntent(ctx, cart.Total, cart.Currency, map[string]string{"email": email})
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	intent, err = s.payments.Process(ctx, intent.ID, in.Card, payment.Billing{
		Name:   billing.FirstName + " " + billing.LastName,
		Email:  email,
		Postal: billing.Postal,
	})
	if err != nil {
		return nil, err
	}
	if intent.Status == payment.StatusRequiresAction {
		return nil, &payment.Error{Code: payment.CodeAuthRequired, Message: payment.Message(payment.CodeAuthRequired)}
	}

	total := cart.Total
	order, err := s.auth.CreateOrder(ctx, OrderInput{
		Email:           email,
		Items:           items,
		Shipping:        in.Shipping,
		Billing:         billing,
		Total:           &total,
		Currency:        cart.Currency,
		PaymentIntentID: intent.ID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "order creation failed after payment", "intent_id", intent.ID, "error", err)
		return nil, err
	}

	if err := s.cart.Clear(ctx); err != nil && !errors.Is(err, domain.ErrNotFound) {
		slog.ErrorContext(ctx, "clear cart after checkout", "order_id", order.ID, "error", err)
	}
	return &Receipt{Order: order, Intent: intent}, nil
}
