package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/storage"
)

// UserRepository implements domain.UserRepository on the bloomy_users document.
type UserRepository struct {
	store storage.Store
}

func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return storage.LoadCollection[domain.User](ctx, r.store, UsersKey)
}

func (r *UserRepository) ReplaceAll(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	return storage.SetJSON(ctx, r.store, UsersKey, users)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := storage.UpdateCollection(ctx, r.store, UsersKey, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.ID == user.ID {
				return nil, domain.ErrDuplicateID
			}
			if sameEmail(u.Email, user.Email) {
				return nil, domain.ErrDuplicateEmail
			}
		}
		return append(users, *user), nil
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u *domain.User) bool { return u.ID == id })
}

// GetByEmail matches case-insensitively, ignoring surrounding whitespace.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.find(ctx, func(u *domain.User) bool { return sameEmail(u.Email, email) })
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*domain.User, error) {
	if hash == "" {
		return nil, domain.ErrNotFound
	}
	return r.find(ctx, func(u *domain.User) bool { return u.ResetTokenHash == hash })
}

func (r *UserRepository) Update(ctx context.Context, id string, fn func(*domain.User) error) (*domain.User, error) {
	var updated domain.User
	_, err := storage.UpdateCollection(ctx, r.store, UsersKey, func(users []domain.User) ([]domain.User, error) {
		idx := -1
		for i := range users {
			if users[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, domain.ErrNotFound
		}

		candidate := users[idx]
		candidate.Addresses = append([]domain.Address(nil), candidate.Addresses...)
		candidate.SavedCards = append([]domain.SavedCard(nil), candidate.SavedCards...)
		if err := fn(&candidate); err != nil {
			return nil, err
		}
		candidate.ID = id

		for i, u := range users {
			if i != idx && sameEmail(u.Email, candidate.Email) {
				return nil, domain.ErrDuplicateEmail
			}
		}
		users[idx] = candidate
		updated = candidate
		return users, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	_, err := storage.UpdateCollection(ctx, r.store, UsersKey, func(users []domain.User) ([]domain.User, error) {
		for i := range users {
			if users[i].ID == id {
				return append(users[:i], users[i+1:]...), nil
			}
		}
		return nil, domain.ErrNotFound
	})
	return err
}

func (r *UserRepository) find(ctx context.Context, match func(*domain.User) bool) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if match(&users[i]) {
			u := users[i]
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
