package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/ids"
	"github.com/msomdec/bloomy/internal/obs"
	"github.com/msomdec/bloomy/internal/password"
)

const (
	msgCredentialsRequired = "Email et mot de passe requis."
	msgBadCredentials      = "Email ou mot de passe incorrect."
	msgNotLoggedIn         = "Non connecté."
)

var errNotLoggedIn = domain.Fail(domain.ErrNotAuthenticated, msgNotLoggedIn)

// AuthConfig holds the tunables of AuthService.
type AuthConfig struct {
	ResetTokenTTL time.Duration
	// DemoMode returns raw reset tokens to the caller.
	DemoMode bool
}

// AuthService is the account facade: registration, login, password reset,
// profile, address and order operations. The directory and ledger are
// shared; the session belongs to the browser bound with WithSessions.
type AuthService struct {
	users    domain.UserRepository
	orders   domain.OrderRepository
	hasher   password.Hasher
	notifier ResetNotifier
	metrics  *obs.Metrics
	cfg      AuthConfig
	sessions *SessionManager
	now      func() time.Time
}

// NewAuthService creates a new AuthService. notifier and metrics may be nil.
func NewAuthService(users domain.UserRepository, orders domain.OrderRepository, hasher password.Hasher, notifier ResetNotifier, metrics *obs.Metrics, cfg AuthConfig) *AuthService {
	if notifier == nil {
		notifier = LogResetNotifier{}
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		users:    users,
		orders:   orders,
		hasher:   hasher,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithSessions returns a copy of s bound to one browser's sessions.
func (s *AuthService) WithSessions(m *SessionManager) *AuthService {
	c := *s
	c.sessions = m
	return &c
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an account, logs it in for the current tab and returns
// the sanitized user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	user, err := s.register(ctx, in)
	if err != nil {
		s.metrics.AuthEvent("register", "failure")
		return nil, err
	}
	s.metrics.AuthEvent("register", "success")
	return user, nil
}

func (s *AuthService) register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" || blank(in.FirstName, in.LastName) {
		return nil, domain.Fail(domain.ErrMissingField, msgMissingFields)
	}
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.Fail(domain.ErrDuplicateEmail, msgEmailExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           ids.UserID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
		Addresses:    []domain.Address{},
		SavedCards:   []domain.SavedCard{},
		Preferences:  domain.DefaultPreferences(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.Fail(domain.ErrDuplicateEmail, msgEmailExists)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.sessions != nil {
		if _, err := s.sessions.Create(ctx, user, domain.ScopeEphemeral); err != nil {
			return nil, err
		}
	}

	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Login verifies credentials and opens a session, durable when remember is set.
// Unknown emails and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, email, pw string, remember bool) (*domain.User, error) {
	if strings.TrimSpace(email) == "" || pw == "" {
		return nil, domain.Fail(domain.ErrMissingField, msgCredentialsRequired)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.AuthEvent("login", "failure")
			return nil, domain.Fail(domain.ErrInvalidCredentials, msgBadCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	ok, err := s.verifyPassword(user, pw)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.metrics.AuthEvent("login", "failure")
		return nil, domain.Fail(domain.ErrInvalidCredentials, msgBadCredentials)
	}

	scope := domain.ScopeEphemeral
	if remember {
		scope = domain.ScopeDurable
	}
	if err := s.requireSessions(); err != nil {
		return nil, err
	}
	if _, err := s.sessions.Create(ctx, user, scope); err != nil {
		return nil, err
	}

	s.metrics.AuthEvent("login", "success")
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Logout clears the session from both scopes. It is idempotent.
func (s *AuthService) Logout(ctx context.Context) error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear(ctx)
}

// GetSession returns the active session, or nil when nobody is logged in.
// A session whose user no longer exists is cleared.
func (s *AuthService) GetSession(ctx context.Context) (*domain.Session, error) {
	session, _, _, err := s.current(ctx)
	if errors.Is(err, domain.ErrNotAuthenticated) {
		return nil, nil
	}
	return session, err
}

// IsLoggedIn reports whether a valid session exists.
func (s *AuthService) IsLoggedIn(ctx context.Context) (bool, error) {
	session, err := s.GetSession(ctx)
	return session != nil, err
}

// CurrentUser returns the sanitized logged-in user.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	_, _, user, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// current resolves the session together with its user record.
func (s *AuthService) current(ctx context.Context) (*domain.Session, domain.Scope, *domain.User, error) {
	if s.sessions == nil {
		return nil, "", nil, errNotLoggedIn
	}
	session, scope, err := s.sessions.Get(ctx)
	if err != nil {
		return nil, "", nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, "", nil, errNotLoggedIn
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			if err := s.sessions.Clear(ctx); err != nil {
				return nil, "", nil, err
			}
			return nil, "", nil, errNotLoggedIn
		}
		return nil, "", nil, fmt.Errorf("get user: %w", err)
	}
	return session, scope, user, nil
}

// refreshSession rewrites the session snapshot after the user changed,
// keeping the scope it was stored in.
func (s *AuthService) refreshSession(ctx context.Context, user *domain.User, scope domain.Scope) error {
	if _, err := s.sessions.Create(ctx, user, scope); err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

func (s *AuthService) requireSessions() error {
	if s.sessions == nil {
		return errors.New("auth service is not bound to a browser")
	}
	return nil
}

func (s *AuthService) verifyPassword(user *domain.User, pw string) (bool, error) {
	ok, err := s.hasher.Verify(pw, user.PasswordHash)
	if err != nil && !errors.Is(err, password.ErrMalformedHash) {
		return false, fmt.Errorf("verify password: %w", err)
	}
	return ok, nil
}
