package domain

import (
	"context"
	"math"
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Label returns the shopper-facing name of the status.
func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "En attente"
	case OrderStatusProcessing:
		return "En préparation"
	case OrderStatusShipped:
		return "Expédié"
	case OrderStatusDelivered:
		return "Livré"
	case OrderStatusCancelled:
		return "Annulé"
	}
	return string(s)
}

// OrderItem is one line of an order. UnitPrice is in cents.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// MaxItemQuantity is the largest quantity a single order or cart line may hold.
const MaxItemQuantity = 99

// Subtotal returns quantity times unit price, in cents. ok is false when the
// line is out of range or the product does not fit in an int64.
func (i OrderItem) Subtotal() (subtotal int64, ok bool) {
	if i.Quantity <= 0 || i.Quantity > MaxItemQuantity || i.UnitPrice < 0 {
		return 0, false
	}
	if i.UnitPrice > math.MaxInt64/int64(i.Quantity) {
		return 0, false
	}
	return int64(i.Quantity) * i.UnitPrice, true
}

// OrderTotal sums the subtotals of items. ok is false when a line is invalid
// or the sum overflows.
func OrderTotal(items []OrderItem) (total int64, ok bool) {
	for _, item := range items {
		sub, ok := item.Subtotal()
		if !ok || sub > math.MaxInt64-total {
			return 0, false
		}
		total += sub
	}
	return total, true
}

// OrderAddress is the address snapshot captured at checkout.
type OrderAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	Street2   string `json:"street2,omitempty"`
	Postal    string `json:"postal"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
}

// StatusEntry is one record of the append-only status history.
type StatusEntry struct {
	Status  OrderStatus `json:"status"`
	Date    time.Time   `json:"date"`
	Message string      `json:"message"`
}

// Order is a placed order. Orders live in the ledger independently of the
// user directory so that guest orders and orders of deleted accounts survive.
type Order struct {
	ID              string        `json:"id"`
	UserID          *string       `json:"userId"`
	Email           string        `json:"email"`
	Items           []OrderItem   `json:"items"`
	Shipping        OrderAddress  `json:"shipping"`
	Billing         OrderAddress  `json:"billing"`
	Total           int64         `json:"total"`
	Currency        string        `json:"currency"`
	Status          OrderStatus   `json:"status"`
	StatusHistory   []StatusEntry `json:"statusHistory"`
	TrackingNumber  *string       `json:"trackingNumber"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	UserDeletedAt   *time.Time    `json:"userDeletedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// AppendStatus moves the order to status and records it in the history.
func (o *Order) AppendStatus(status OrderStatus, message string, at time.Time) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, StatusEntry{Status: status, Date: at, Message: message})
	o.UpdatedAt = at
}

// OrderRepository defines persistence operations for the order ledger.
type OrderRepository interface {
	// Create appends the order. It fails with ErrDuplicateID when the
	// order ID is already taken.
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByIDAndEmail(ctx context.Context, id, email string) (*Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Update(ctx context.Context, id string, fn func(*Order) error) (*Order, error)
	// TombstoneUser marks every order of userID as belonging to a deleted
	// account and returns how many were marked.
	TombstoneUser(ctx context.Context, userID string, at time.Time) (int, error)
}
