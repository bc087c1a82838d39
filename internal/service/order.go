package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/ids"
)

const (
	msgOrderNotFound     = "Commande non trouvée."
	msgOrderEmpty        = "La commande doit contenir au moins un article."
	msgOrderTotal        = "Le montant total ne correspond pas aux articles."
	msgOrderItem         = "Quantité ou prix d'article invalide."
	msgOrderStatus       = "Statut de commande inconnu."
	msgOrderTransition   = "Changement de statut non autorisé."
	msgTrackingRequired  = "Un numéro de suivi est requis pour l'expédition."
	msgOrderReceived     = "Commande reçue"
	defaultOrderCurrency = "EUR"
	orderIDAttempts      = 5
)

var errOrderNotFound = domain.Fail(domain.ErrNotFound, msgOrderNotFound)

// OrderInput carries a new order. Total is optional; when set it must equal
// the sum of the items.
type OrderInput struct {
	Email           string
	Items           []domain.OrderItem
	Shipping        domain.OrderAddress
	Billing         domain.OrderAddress
	Total           *int64
	Currency        string
	PaymentIntentID string
}

// CreateOrder appends a pending order to the ledger. The order belongs to
// the logged-in user, or is a guest order when nobody is logged in.
func (s *AuthService) CreateOrder(ctx context.Context, in OrderInput) (*domain.Order, error) {
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, domain.Fail(domain.ErrInvalidInput, msgOrderEmpty)
	}
	total, ok := domain.OrderTotal(in.Items)
	if !ok {
		return nil, domain.Fail(domain.ErrInvalidInput, msgOrderItem)
	}
	if in.Total != nil && *in.Total != total {
		return nil, domain.Fail(domain.ErrInvalidInput, msgOrderTotal)
	}

	session, err := s.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	var userID *string
	if session != nil {
		id := session.UserID
		userID = &id
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultOrderCurrency
	}

	now := s.now().UTC()
	order := &domain.Order{
		UserID:          userID,
		Email:           email,
		Items:           append([]domain.OrderItem(nil), in.Items...),
		Shipping:        in.Shipping,
		Billing:         in.Billing,
		Total:           total,
		Currency:        currency,
		PaymentIntentID: in.PaymentIntentID,
		CreatedAt:       now,
	}
	order.AppendStatus(domain.OrderStatusPending, msgOrderReceived, now)

	for attempt := 1; ; attempt++ {
		order.ID, err = ids.OrderID(now)
		if err != nil {
			return nil, err
		}
		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateID) || attempt == orderIDAttempts {
			return nil, fmt.Errorf("create order: %w", err)
		}
	}

	s.metrics.OrderStatus(string(domain.OrderStatusPending))
	return order, nil
}

// ListOrders returns the logged-in user's orders, newest first. It is empty
// when nobody is logged in.
func (s *AuthService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	session, err := s.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return []domain.Order{}, nil
	}
	return s.orders.ListByUser(ctx, session.UserID)
}

// GetOrderByID looks an order up by id regardless of its owner.
func (s *AuthService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errOrderNotFound
	}
	return order, err
}

// GetOwnOrder returns an order of the logged-in user.
func (s *AuthService) GetOwnOrder(ctx context.Context, id string) (*domain.Order, error) {
	session, err := s.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errNotLoggedIn
	}
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != session.UserID {
		return nil, errOrderNotFound
	}
	return order, nil
}

// GetOrderByIDAndEmail supports guest order tracking.
func (s *AuthService) GetOrderByIDAndEmail(ctx context.Context, id, email string) (*domain.Order, error) {
	if blank(id, email) {
		return nil, domain.Fail(domain.ErrMissingField, msgMissingFields)
	}
	order, err := s.orders.GetByIDAndEmail(ctx, strings.TrimSpace(id), email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errOrderNotFound
	}
	return order, err
}

// StatusUpdate moves an order forward in its lifecycle.
type StatusUpdate struct {
	Status         domain.OrderStatus
	Message        string
	TrackingNumber string
}

// UpdateOrderStatus applies an operator status change, enforcing the
// transition table. Shipping requires a tracking number.
func (s *AuthService) UpdateOrderStatus(ctx context.Context, id string, update StatusUpdate) (*domain.Order, error) {
	if !update.Status.Valid() {
		return nil, domain.Fail(domain.ErrInvalidInput, msgOrderStatus)
	}
	tracking := strings.TrimSpace(update.TrackingNumber)
	if update.Status == domain.OrderStatusShipped && tracking == "" {
		return nil, domain.Fail(domain.ErrMissingField, msgTrackingRequired)
	}
	message := strings.TrimSpace(update.Message)
	if message == "" {
		message = update.Status.Label()
	}

	order, err := s.orders.Update(ctx, id, func(o *domain.Order) error {
		if !o.Status.CanTransitionTo(update.Status) {
			return domain.Fail(domain.ErrInvalidInput, msgOrderTransition)
		}
		if tracking != "" {
			o.TrackingNumber = &tracking
		}
		o.AppendStatus(update.Status, message, s.now().UTC())
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	s.metrics.OrderStatus(string(update.Status))
	return order, nil
}
