package payment

import "github.com/msomdec/bloomy/internal/domain"

// Decline and validation codes.
const (
	CodeCardDeclined       = "card_declined"
	CodeExpiredCard        = "expired_card"
	CodeIncorrectCVC       = "incorrect_cvc"
	CodeProcessingError    = "processing_error"
	CodeIncorrectNumber    = "incorrect_number"
	CodeInvalidExpiryMonth = "invalid_expiry_month"
	CodeInvalidExpiryYear  = "invalid_expiry_year"
	CodeIncompleteNumber   = "incomplete_number"
	CodeIncompleteCVC      = "incomplete_cvc"
	CodeIncompleteExpiry   = "incomplete_expiry"
	CodeAuthRequired       = "authentication_required"
)

const msgEnterValidNumber = "Veuillez entrer un numéro de carte valide."

var messages = map[string]string{
	CodeCardDeclined:       "Votre carte a été refusée.",
	CodeExpiredCard:        "Votre carte a expiré.",
	CodeIncorrectCVC:       "Le code CVC est incorrect.",
	CodeProcessingError:    "Une erreur est survenue, veuillez réessayer.",
	CodeIncorrectNumber:    "Le numéro de carte est incorrect.",
	CodeInvalidExpiryMonth: "Le mois d'expiration est invalide.",
	CodeInvalidExpiryYear:  "L'année d'expiration est invalide.",
	CodeIncompleteNumber:   "Le numéro de carte est incomplet.",
	CodeIncompleteCVC:      "Le CVC est incomplet.",
	CodeIncompleteExpiry:   "La date d'expiration est incomplète.",
	CodeAuthRequired:       "Une authentification 3D Secure est requise pour cette carte.",
}

// Message returns the shopper-facing message for a code.
func Message(code string) string {
	if m, ok := messages[code]; ok {
		return m
	}
	return "Erreur de paiement."
}

// Error is a failed payment attempt.
type Error struct {
	Code    string
	Message string
}

func newError(code string) *Error {
	return &Error{Code: code, Message: Message(code)}
}

func (e *Error) Error() string {
	return "payment failed: " + e.Code
}

// Unwrap lets errors.Is(err, domain.ErrPaymentFailed) match.
func (e *Error) Unwrap() error {
	return domain.ErrPaymentFailed
}
