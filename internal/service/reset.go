package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/ids"
)

const (
	msgResetRequested = "Si un compte existe avec cet email, vous recevrez un lien de réinitialisation."
	msgResetInvalid   = "Lien de réinitialisation invalide."
	msgResetExpired   = "Le lien de réinitialisation a expiré."
)

// ResetNotifier delivers password reset links.
type ResetNotifier interface {
	PasswordResetRequested(ctx context.Context, user *domain.User, token string, expires time.Time) error
}

// LogResetNotifier records reset requests in the log. The token is never logged.
type LogResetNotifier struct{}

func (LogResetNotifier) PasswordResetRequested(ctx context.Context, user *domain.User, _ string, expires time.Time) error {
	slog.InfoContext(ctx, "password reset requested", "user_id", user.ID, "expires_at", expires)
	return nil
}

// ResetRequest is the outcome of RequestPasswordReset. DemoToken is only
// filled in demo mode when the account exists.
type ResetRequest struct {
	Message   string
	DemoToken string
}

// RequestPasswordReset issues a reset token for email. The result is the
// same whether or not the account exists.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error) {
	result := &ResetRequest{Message: msgResetRequested}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.AuthEvent("reset_request", "unknown")
			return result, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	token, err := ids.Token()
	if err != nil {
		return nil, err
	}
	expires := s.now().UTC().Add(s.cfg.ResetTokenTTL)

	updated, err := s.users.Update(ctx, user.ID, func(u *domain.User) error {
		u.ResetTokenHash = ids.HashToken(token)
		u.ResetTokenExpires = &expires
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store reset token: %w", err)
	}

	if err := s.notifier.PasswordResetRequested(ctx, updated, token, expires); err != nil {
		slog.ErrorContext(ctx, "notify password reset", "user_id", updated.ID, "error", err)
	}
	s.metrics.AuthEvent("reset_request", "issued")

	if s.cfg.DemoMode {
		result.DemoToken = token
	}
	return result, nil
}

// ResetPassword sets a new password for the holder of a valid reset token.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return domain.Fail(domain.ErrInvalidToken, msgResetInvalid)
	}
	hash := ids.HashToken(token)

	user, err := s.users.GetByResetTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Fail(domain.ErrInvalidToken, msgResetInvalid)
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.ResetTokenExpires == nil || user.ResetTokenExpires.Before(s.now()) {
		return domain.Fail(domain.ErrExpiredToken, msgResetExpired)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	encoded, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		if u.ResetTokenHash != hash {
			return domain.Fail(domain.ErrInvalidToken, msgResetInvalid)
		}
		u.PasswordHash = encoded
		u.ResetTokenHash = ""
		u.ResetTokenExpires = nil
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.AuthEvent("reset_password", "success")
	return nil
}
