package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/msomdec/bloomy/internal/domain"
)

const (
	msgCurrentPasswordWrong = "Mot de passe actuel incorrect."
	msgPasswordWrong        = "Mot de passe incorrect."
	msgNameRequired         = "Le prénom et le nom sont requis."
)

// ProfileUpdate lists the profile fields a shopper may change. Nil fields
// are left untouched.
type ProfileUpdate struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Preferences *domain.Preferences
}

// UpdateProfile applies update to the logged-in user and refreshes the session.
func (s *AuthService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.User, error) {
	_, scope, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	if (update.FirstName != nil && blank(*update.FirstName)) || (update.LastName != nil && blank(*update.LastName)) {
		return nil, domain.Fail(domain.ErrMissingField, msgNameRequired)
	}

	updated, err := s.users.Update(ctx, user.ID, func(u *domain.User) error {
		if update.FirstName != nil {
			u.FirstName = strings.TrimSpace(*update.FirstName)
		}
		if update.LastName != nil {
			u.LastName = strings.TrimSpace(*update.LastName)
		}
		if update.Phone != nil {
			u.Phone = strings.TrimSpace(*update.Phone)
		}
		if update.Preferences != nil {
			prefs := *update.Preferences
			if prefs.Language == "" {
				prefs.Language = u.Preferences.Language
			}
			u.Preferences = prefs
		}
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := s.refreshSession(ctx, updated, scope); err != nil {
		return nil, err
	}
	sanitized := updated.Sanitized()
	return &sanitized, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, current, next string) error {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return err
	}
	ok, err := s.verifyPassword(user, current)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Fail(domain.ErrInvalidCredentials, msgCurrentPasswordWrong)
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	encoded, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.Update(ctx, user.ID, func(u *domain.User) error {
		u.PasswordHash = encoded
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// ChangeEmail moves the account to a new email after format, uniqueness and
// password checks, then refreshes the session in its current scope.
func (s *AuthService) ChangeEmail(ctx context.Context, newEmail, pw string) (*domain.User, error) {
	_, scope, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(newEmail)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Fail(domain.ErrDuplicateEmail, msgEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.verifyPassword(user, pw)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.Fail(domain.ErrInvalidCredentials, msgPasswordWrong)
	}

	updated, err := s.users.Update(ctx, user.ID, func(u *domain.User) error {
		u.Email = email
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Fail(domain.ErrDuplicateEmail, msgEmailTaken)
		}
		return nil, fmt.Errorf("change email: %w", err)
	}

	if err := s.refreshSession(ctx, updated, scope); err != nil {
		return nil, err
	}
	sanitized := updated.Sanitized()
	return &sanitized, nil
}

// DeleteAccount removes the logged-in user after verifying the password.
// Their orders are kept and marked as belonging to a deleted account.
func (s *AuthService) DeleteAccount(ctx context.Context, pw string) error {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return err
	}
	ok, err := s.verifyPassword(user, pw)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Fail(domain.ErrInvalidCredentials, msgPasswordWrong)
	}

	// Orders are stamped first so a failure leaves the account intact and
	// the deletion can be retried.
	if _, err := s.orders.TombstoneUser(ctx, user.ID, s.now().UTC()); err != nil {
		return fmt.Errorf("tombstone orders: %w", err)
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.metrics.AuthEvent("delete_account", "success")
	return s.sessions.Clear(ctx)
}
