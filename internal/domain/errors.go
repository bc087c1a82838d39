package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateID        = errors.New("id already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrMissingField       = errors.New("missing field")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrCorruptState       = errors.New("corrupt state")
	ErrPaymentFailed      = errors.New("payment failed")
)

// Error pairs a machine-readable kind with the message shown to the shopper.
// errors.Is(err, Kind) holds for any *Error.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Fail builds an *Error of the given kind.
func Fail(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the shopper-facing message carried by err, if any.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}

var codes = []struct {
	kind error
	code string
}{
	{ErrMissingField, "missing_field"},
	{ErrInvalidEmail, "invalid_email"},
	{ErrWeakPassword, "weak_password"},
	{ErrDuplicateEmail, "email_taken"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrNotAuthenticated, "not_authenticated"},
	{ErrUnauthorized, "unauthorized"},
	{ErrNotFound, "not_found"},
	{ErrInvalidToken, "invalid_token"},
	{ErrExpiredToken, "expired_token"},
	{ErrInvalidInput, "invalid_input"},
	{ErrCorruptState, "corrupt_state"},
	{ErrPaymentFailed, "payment_failed"},
	{ErrDuplicateID, "duplicate_id"},
}

// Code returns the machine-readable code of err's kind, or "internal".
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.kind) {
			return c.code
		}
	}
	return "internal"
}
