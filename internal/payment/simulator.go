// Package payment simulates a card payment processor. No card ever leaves
// the process and no real network is involved.
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/ids"
	"github.com/msomdec/bloomy/internal/obs"
	"github.com/msomdec/bloomy/internal/storage"
)

// Status is the lifecycle state of an intent.
type Status string

const (
	StatusRequiresPaymentMethod Status = "requires_payment_method"
	StatusProcessing            Status = "processing"
	StatusRequiresAction        Status = "requires_action"
	StatusSucceeded             Status = "succeeded"
)

// DefaultLatency is the simulated processor round trip.
const DefaultLatency = 2 * time.Second

// Test card numbers with a fixed outcome. Any other valid card succeeds.
const (
	CardSuccess        = "4242424242424242"
	CardDeclined       = "4000000000000002"
	CardRequires3DS    = "4000002500003155"
	CardExpired        = "4000000000000069"
	CardIncorrectCVC   = "4000000000000127"
	CardProcessingFail = "4000000000000119"
)

const (
	intentKeyPrefix  = "payment_intent:"
	msgUnknownIntent = "Paiement introuvable."
	msgAlreadyPaid   = "Ce paiement a déjà été effectué."
	msgInProgress    = "Un paiement est déjà en cours."
	msgBadAmount     = "Le montant du paiement est invalide."
)

// Intent is a simulated payment intent.
type Intent struct {
	ID            string            `json:"id"`
	ClientSecret  string            `json:"clientSecret"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Status        Status            `json:"status"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Card          *CardSummary      `json:"card,omitempty"`
	LastErrorCode string            `json:"lastErrorCode,omitempty"`
	Created       time.Time         `json:"created"`
}

// Billing is the billing identity sent with a payment.
type Billing struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Postal string `json:"postal"`
}

// Simulator creates and processes intents. Intents are kept in store.
type Simulator struct {
	store   storage.Store
	latency time.Duration
	metrics *obs.Metrics
	now     func() time.Time
}

// NewSimulator creates a Simulator. A zero latency is honoured as-is.
func NewSimulator(store storage.Store, latency time.Duration, metrics *obs.Metrics) *Simulator {
	return &Simulator{store: store, latency: latency, metrics: metrics, now: time.Now}
}

// CreateIntent opens an intent for amount, in the smallest currency unit.
func (s *Simulator) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	if amount <= 0 {
		return nil, domain.Fail(domain.ErrInvalidInput, msgBadAmount)
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "eur"
	}
	secret, err := ids.Token()
	if err != nil {
		return nil, err
	}

	intent := &Intent{
		ID:       ids.PaymentIntentID(),
		Amount:   amount,
		Currency: currency,
		Status:   StatusRequiresPaymentMethod,
		Metadata: metadata,
		Created:  s.now().UTC(),
	}
	intent.ClientSecret = intent.ID + "_secret_" + secret[:24]

	if err := storage.SetJSON(ctx, s.store, intentKeyPrefix+intent.ID, intent); err != nil {
		return nil, fmt.Errorf("store intent: %w", err)
	}
	slog.InfoContext(ctx, "payment intent created", "intent_id", intent.ID, "amount", amount, "currency", currency)
	return intent, nil
}

// GetIntent returns a stored intent.
func (s *Simulator) GetIntent(ctx context.Context, id string) (*Intent, error) {
	var intent Intent
	ok, err := storage.GetJSON(ctx, s.store, intentKeyPrefix+id, &intent)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Fail(domain.ErrNotFound, msgUnknownIntent)
	}
	return &intent, nil
}

// Process confirms intentID with card. Malformed cards fail before any
// latency. The latency wait honours ctx; a cancelled attempt leaves the
// intent ready for another attempt. A declined card returns the updated
// intent together with an *Error.
func (s *Simulator) Process(ctx context.Context, intentID string, card Card, billing Billing) (*Intent, error) {
	if _, err := s.GetIntent(ctx, intentID); err != nil {
		return nil, err
	}
	if perr := card.validate(s.now()); perr != nil {
		s.metrics.Payment(perr.Code)
		return nil, perr
	}

	if _, err := s.update(ctx, intentID, func(in *Intent) error {
		switch in.Status {
		case StatusSucceeded:
			return domain.Fail(domain.ErrInvalidInput, msgAlreadyPaid)
		case StatusProcessing:
			return domain.Fail(domain.ErrInvalidInput, msgInProgress)
		}
		in.Status = StatusProcessing
		in.Card = card.summary()
		return nil
	}); err != nil {
		return nil, err
	}

	if err := s.wait(ctx); err != nil {
		if _, rerr := s.update(context.WithoutCancel(ctx), intentID, func(in *Intent) error {
			in.Status = StatusRequiresPaymentMethod
			return nil
		}); rerr != nil {
			slog.Error("reset cancelled payment", "intent_id", intentID, "error", rerr)
		}
		return nil, err
	}

	code, status := outcome(NormalizeNumber(card.Number))
	intent, err := s.update(ctx, intentID, func(in *Intent) error {
		in.Status = status
		in.LastErrorCode = code
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case code != "":
		s.metrics.Payment(code)
		slog.InfoContext(ctx, "payment declined", "intent_id", intentID, "code", code)
		return intent, newError(code)
	case status == StatusRequiresAction:
		s.metrics.Payment(string(StatusRequiresAction))
	default:
		s.metrics.Payment(string(StatusSucceeded))
		slog.InfoContext(ctx, "payment succeeded", "intent_id", intentID, "amount", intent.Amount, "billing_email", billing.Email)
	}
	return intent, nil
}

func outcome(number string) (code string, status Status) {
	switch number {
	case CardDeclined:
		return CodeCardDeclined, StatusRequiresPaymentMethod
	case CardExpired:
		return CodeExpiredCard, StatusRequiresPaymentMethod
	case CardIncorrectCVC:
		return CodeIncorrectCVC, StatusRequiresPaymentMethod
	case CardProcessingFail:
		return CodeProcessingError, StatusRequiresPaymentMethod
	case CardRequires3DS:
		return "", StatusRequiresAction
	}
	return "", StatusSucceeded
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Simulator) update(ctx context.Context, id string, fn func(*Intent) error) (*Intent, error) {
	var updated Intent
	err := s.store.Update(ctx, intentKeyPrefix+id, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, domain.Fail(domain.ErrNotFound, msgUnknownIntent)
		}
		if err := json.Unmarshal(current, &updated); err != nil {
			return nil, fmt.Errorf("%w: decode intent: %v", domain.ErrCorruptState, err)
		}
		if err := fn(&updated); err != nil {
			return nil, err
		}
		return json.Marshal(&updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
