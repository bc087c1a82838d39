package domain

import "context"

// CartItem is one line of the shopping cart. Price is in cents.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Color    string `json:"color"`
	Quantity int    `json:"quantity"`
}

// Product is a catalog entry.
type Product struct {
	ID       string
	Name     string
	Price    int64
	Currency string
	Colors   []Color
}

// Color is a product variant.
type Color struct {
	Code string
	Name string
}

// ColorName returns the display name of a colour code, or the code itself.
func (p Product) ColorName(code string) string {
	for _, c := range p.Colors {
		if c.Code == code {
			return c.Name
		}
	}
	return code
}

// HasColor reports whether code is a variant of p.
func (p Product) HasColor(code string) bool {
	for _, c := range p.Colors {
		if c.Code == code {
			return true
		}
	}
	return false
}

// SmartCase is the only product Bloomy sells.
var SmartCase = Product{
	ID:       "bloomy-smart-case",
	Name:     "Bloomy Smart Case",
	Price:    1699,
	Currency: "EUR",
	Colors: []Color{
		{Code: "black", Name: "Noir"},
		{Code: "white", Name: "Blanc"},
		{Code: "blue", Name: "Bleu Nuit"},
	},
}

// CartRepository persists one browser's cart.
type CartRepository interface {
	Get(ctx context.Context) ([]CartItem, error)
	Update(ctx context.Context, fn func([]CartItem) ([]CartItem, error)) ([]CartItem, error)
	Clear(ctx context.Context) error
}
