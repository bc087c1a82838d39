// Package view renders the storefront pages and the fragments patched in by
// datastar. Components live in the .templ files; run `templ generate` after
// editing them.
package view

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/msomdec/bloomy/internal/domain"
)

// colorSignals seeds the datastar color signal with the first color.
func colorSignals(p domain.Product) string {
	first := ""
	if len(p.Colors) > 0 {
		first = p.Colors[0].Code
	}
	return `{"color":` + strconv.Quote(first) + `}`
}

func cartLine(p domain.Product, item domain.CartItem) string {
	return p.ColorName(item.Color) + " - Qté: " + strconv.Itoa(item.Quantity)
}

func removeAction(index int) string {
	return "@delete('/cart/items/" + strconv.Itoa(index) + "')"
}

func loadMoreAction(offset int) string {
	return "@get('/dashboard/orders?offset=" + strconv.Itoa(offset) + "')"
}

func orderVariant(item domain.OrderItem) string {
	return domain.SmartCase.ColorName(item.Color) + " × " + strconv.Itoa(item.Quantity)
}

func orderURL(id string) templ.SafeURL {
	return templ.URL("/api/orders/" + id)
}

// addressLines returns the non-empty postal lines of a.
func addressLines(a domain.Address) []string {
	var lines []string
	for _, line := range []string{
		strings.TrimSpace(a.FirstName + " " + a.LastName),
		a.Street,
		a.Street2,
		strings.TrimSpace(a.Postal + " " + a.City),
		a.Country,
		a.Phone,
	} {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
