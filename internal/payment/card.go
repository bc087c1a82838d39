package payment

import (
	"strings"
	"time"
)

// Card is the card data submitted with a payment. It is never stored.
type Card struct {
	Number   string `json:"number"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
	CVC      string `json:"cvc"`
}

// CardSummary is the display-safe part of a card kept on an intent.
type CardSummary struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
}

// Brand names returned by DetectBrand.
const (
	BrandVisa       = "visa"
	BrandMastercard = "mastercard"
	BrandAmex       = "amex"
	BrandDiscover   = "discover"
	BrandUnknown    = "unknown"
)

// NormalizeNumber strips spaces and dashes from a card number.
func NormalizeNumber(number string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(number)
}

// DetectBrand infers the card network from the number prefix.
func DetectBrand(number string) string {
	n := NormalizeNumber(number)
	switch {
	case n == "":
		return BrandUnknown
	case strings.HasPrefix(n, "4"):
		return BrandVisa
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return BrandAmex
	case strings.HasPrefix(n, "6011"), strings.HasPrefix(n, "65"):
		return BrandDiscover
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return BrandMastercard
	case len(n) >= 2 && n[0] == '2' && n[1] >= '2' && n[1] <= '7':
		return BrandMastercard
	}
	return BrandUnknown
}

// Luhn reports whether number passes the Luhn checksum.
func Luhn(number string) bool {
	n := NormalizeNumber(number)
	if len(n) < 2 {
		return false
	}
	sum := 0
	double := false
	for i := len(n) - 1; i >= 0; i-- {
		c := n[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validate reports malformed card data, or nil.
func (c Card) validate(now time.Time) *Error {
	n := NormalizeNumber(c.Number)
	brand := DetectBrand(n)
	switch {
	case n == "" || brand == BrandUnknown:
		return &Error{Code: CodeIncorrectNumber, Message: msgEnterValidNumber}
	case len(n) < 13:
		return newError(CodeIncompleteNumber)
	case !Luhn(n):
		return newError(CodeIncorrectNumber)
	}

	if c.ExpMonth == 0 && c.ExpYear == 0 {
		return newError(CodeIncompleteExpiry)
	}
	if c.ExpMonth < 1 || c.ExpMonth > 12 {
		return newError(CodeInvalidExpiryMonth)
	}
	year := c.ExpYear
	if year < 100 {
		year += 2000
	}
	if year > now.Year()+20 {
		return newError(CodeInvalidExpiryYear)
	}
	if year < now.Year() || (year == now.Year() && c.ExpMonth < int(now.Month())) {
		return newError(CodeExpiredCard)
	}

	cvc := strings.TrimSpace(c.CVC)
	want := 3
	if brand == BrandAmex {
		want = 4
	}
	switch {
	case cvc == "":
		return newError(CodeIncompleteCVC)
	case len(cvc) != want || strings.Trim(cvc, "0123456789") != "":
		return newError(CodeIncorrectCVC)
	}
	return nil
}

func (c Card) summary() *CardSummary {
	n := NormalizeNumber(c.Number)
	last4 := n
	if len(n) > 4 {
		last4 = n[len(n)-4:]
	}
	year := c.ExpYear
	if year < 100 {
		year += 2000
	}
	return &CardSummary{Brand: DetectBrand(n), Last4: last4, ExpMonth: c.ExpMonth, ExpYear: year}
}
