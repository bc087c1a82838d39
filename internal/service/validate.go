package service

import (
	"regexp"
	"strings"

	"github.com/msomdec/bloomy/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Shopper-facing validation messages.
const (
	msgMissingFields  = "Tous les champs sont requis."
	msgInvalidEmail   = "Email invalide."
	msgPasswordLength = "Le mot de passe doit contenir au moins 8 caractères."
	msgPasswordUpper  = "Le mot de passe doit contenir au moins une majuscule."
	msgPasswordDigit  = "Le mot de passe doit contenir au moins un chiffre."
	msgEmailExists    = "Un compte existe déjà avec cet email."
	msgEmailTaken     = "Cet email est déjà utilisé."
)

const minPasswordLength = 8

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validateEmail(email string) error {
	if !validEmail(email) {
		return domain.Fail(domain.ErrInvalidEmail, msgInvalidEmail)
	}
	return nil
}

// validatePassword applies the password policy. The first failing rule wins.
func validatePassword(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return domain.Fail(domain.ErrWeakPassword, msgPasswordLength)
	}
	var upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper {
		return domain.Fail(domain.ErrWeakPassword, msgPasswordUpper)
	}
	if !digit {
		return domain.Fail(domain.ErrWeakPassword, msgPasswordDigit)
	}
	return nil
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
