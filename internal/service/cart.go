package service

import (
	"context"

	"github.com/msomdec/bloomy/internal/domain"
)

const (
	msgUnknownColor     = "Couleur inconnue."
	msgCartItemNotFound = "Article introuvable dans le panier."
	msgCartLineFull     = "Quantité maximale atteinte pour cette couleur."
)

// Cart is a priced view of the cart contents.
type Cart struct {
	Items    []domain.CartItem `json:"items"`
	Count    int               `json:"count"`
	Total    int64             `json:"total"`
	Currency string            `json:"currency"`
}

// CartService manages one browser's cart of the single catalog product.
type CartService struct {
	cart    domain.CartRepository
	product domain.Product
}

// NewCartService creates a CartService over a browser's cart.
func NewCartService(cart domain.CartRepository, product domain.Product) *CartService {
	return &CartService{cart: cart, product: product}
}

// Get returns the cart, repricing stored lines to the current catalog price.
func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	items, err := s.cart.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s.stale(items) {
		items, err = s.cart.Update(ctx, func(items []domain.CartItem) ([]domain.CartItem, error) {
			return s.reprice(items), nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s.view(items), nil
}

// Add puts one unit of the given colour in the cart, merging with an
// existing line of the same colour.
func (s *CartService) Add(ctx context.Context, color string) (*Cart, error) {
	if !s.product.HasColor(color) {
		return nil, domain.Fail(domain.ErrInvalidInput, msgUnknownColor)
	}
	items, err := s.cart.Update(ctx, func(items []domain.CartItem) ([]domain.CartItem, error) {
		items = s.reprice(items)
		for i := range items {
			if items[i].Color == color {
				if items[i].Quantity >= domain.MaxItemQuantity {
					return nil, domain.Fail(domain.ErrInvalidInput, msgCartLineFull)
				}
				items[i].Quantity++
				return items, nil
			}
		}
		return append(items, domain.CartItem{
			ID:       s.product.ID,
			Name:     s.product.Name,
			Price:    s.product.Price,
			Color:    color,
			Quantity: 1,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(items), nil
}

// Remove takes one unit off the line at index, dropping the line when it
// held a single unit.
func (s *CartService) Remove(ctx context.Context, index int) (*Cart, error) {
	items, err := s.cart.Update(ctx, func(items []domain.CartItem) ([]domain.CartItem, error) {
		if index < 0 || index >= len(items) {
			return nil, domain.Fail(domain.ErrNotFound, msgCartItemNotFound)
		}
		if items[index].Quantity > 1 {
			items[index].Quantity--
		} else {
			items = append(items[:index], items[index+1:]...)
		}
		return s.reprice(items), nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(items), nil
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) error {
	return s.cart.Clear(ctx)
}

func (s *CartService) stale(items []domain.CartItem) bool {
	for _, item := range items {
		if item.ID == s.product.ID && (item.Price != s.product.Price || item.Name != s.product.Name) {
			return true
		}
	}
	return false
}

func (s *CartService) reprice(items []domain.CartItem) []domain.CartItem {
	for i := range items {
		if items[i].ID == s.product.ID {
			items[i].Price = s.product.Price
			items[i].Name = s.product.Name
		}
	}
	return items
}

func (s *CartService) view(items []domain.CartItem) *Cart {
	c := &Cart{Items: items, Currency: s.product.Currency}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	for _, item := range c.Items {
		c.Count += item.Quantity
		c.Total += item.Price * int64(item.Quantity)
	}
	return c
}
