package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/service"
)

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	ctx := context.Background()

	user, err := b.auth.Register(ctx, service.RegisterInput{
		Email: "  New@Example.com ", Password: "Secret12", FirstName: "New", LastName: "User",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected lower-cased email, got %s", user.Email)
	}
	if user.PasswordHash != "" {
		t.Fatal("returned user must be sanitized")
	}
	if user.Preferences != domain.DefaultPreferences() {
		t.Fatalf("unexpected preferences %+v", user.Preferences)
	}

	stored, err := f.users.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "Secret12" {
		t.Fatal("expected a derived password hash to be stored")
	}
}

func TestAuthService_Register_OpensEphemeralSession(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	ctx := context.Background()
	f.register(t, b, "jane@x.com", "Secret12")

	session, scope, err := b.sessions.Get(ctx)
	if err != nil {
		t.Fatalf("Get session: %v", err)
	}
	if session == nil || session.Email != "jane@x.com" {
		t.Fatalf("expected session for jane@x.com, got %+v", session)
	}
	if scope != domain.ScopeEphemeral {
		t.Fatalf("expected ephemeral scope, got %s", scope)
	}
}

func TestAuthService_Register_ValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		in   service.RegisterInput
		kind error
		msg  string
	}{
		{
			name: "missing field wins over everything",
			in:   service.RegisterInput{Email: "bad", Password: "x", FirstName: "", LastName: "Doe"},
			kind: domain.ErrMissingField,
			msg:  "Tous les champs sont requis.",
		},
		{
			name: "whitespace-only name counts as missing",
			in:   service.RegisterInput{Email: "jane@x.com", Password: "Secret12", FirstName: "   ", LastName: "Doe"},
			kind: domain.ErrMissingField,
			msg:  "Tous les champs sont requis.",
		},
		{
			name: "invalid email",
			in:   service.RegisterInput{Email: "jane@x", Password: "x", FirstName: "Jane", LastName: "Doe"},
			kind: domain.ErrInvalidEmail,
			msg:  "Email invalide.",
		},
		{
			name: "email with whitespace",
			in:   service.RegisterInput{Email: "ja ne@x.com", Password: "Secret12", FirstName: "Jane", LastName: "Doe"},
			kind: domain.ErrInvalidEmail,
			msg:  "Email invalide.",
		},
		{
			name: "short password",
			in:   service.RegisterInput{Email: "jane@x.com", Password: "Sec1", FirstName: "Jane", LastName: "Doe"},
			kind: domain.ErrWeakPassword,
			msg:  "Le mot de passe doit contenir au moins 8 caractères.",
		},
		{
			name: "no uppercase",
			in:   service.RegisterInput{Email: "jane@x.com", Password: "secret12", FirstName: "Jane", LastName: "Doe"},
			kind: domain.ErrWeakPassword,
			msg:  "Le mot de passe doit contenir au moins une majuscule.",
		},
		{
			name: "no digit",
			in:   service.RegisterInput{Email: "jane@x.com", Password: "Secretss", FirstName: "Jane", LastName: "Doe"},
			kind: domain.ErrWeakPassword,
			msg:  "Le mot de passe doit contenir au moins un chiffre.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, service.AuthConfig{})
			_, err := f.newBrowser().auth.Register(context.Background(), tt.in)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if got := mustMessage(t, err); got != tt.msg {
				t.Fatalf("expected message %q, got %q", tt.msg, got)
			}
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	f.register(t, f.newBrowser(), "dup@example.com", "Secret12")

	_, err := f.newBrowser().auth.Register(context.Background(), service.RegisterInput{
		Email: "DUP@example.com", Password: "Other123", FirstName: "A", LastName: "B",
	})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if got := mustMessage(t, err); got != "Un compte existe déjà avec cet email." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthService_Login_GenericFailure(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	f.register(t, f.newBrowser(), "jane@x.com", "Secret12")
	ctx := context.Background()
	b := f.newBrowser()

	_, errWrongPassword := b.auth.Login(ctx, "jane@x.com", "wrong", false)
	_, errUnknownEmail := b.auth.Login(ctx, "nobody@x.com", "Secret12", false)

	for _, err := range []error{errWrongPassword, errUnknownEmail} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if mustMessage(t, errWrongPassword) != mustMessage(t, errUnknownEmail) {
		t.Fatal("login failures must not reveal which part was wrong")
	}
	if mustMessage(t, errWrongPassword) != "Email ou mot de passe incorrect." {
		t.Fatalf("unexpected message %q", mustMessage(t, errWrongPassword))
	}

	_, err := b.auth.Login(ctx, "", "", false)
	if got := mustMessage(t, err); got != "Email et mot de passe requis." {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestAuthService_Login_RememberUsesDurableScope(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	f.register(t, f.newBrowser(), "jane@x.com", "Secret12")
	ctx := context.Background()

	device := "device-1"
	b := f.openTab(device)
	if _, err := b.auth.Login(ctx, "JANE@x.com", "Secret12", true); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A new tab on the same device shares the durable scope only.
	other := f.openTab(device)
	ok, err := other.auth.IsLoggedIn(ctx)
	if err != nil {
		t.Fatalf("IsLoggedIn: %v", err)
	}
	if !ok {
		t.Fatal("remembered session must survive a new tab")
	}
}

func TestAuthService_Login_EphemeralSessionDoesNotOutliveTab(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	f.register(t, f.newBrowser(), "jane@x.com", "Secret12")
	ctx := context.Background()

	device := "device-1"
	b := f.openTab(device)
	if _, err := b.auth.Login(ctx, "jane@x.com", "Secret12", false); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if ok, _ := b.auth.IsLoggedIn(ctx); !ok {
		t.Fatal("expected the tab to be logged in")
	}

	other := f.openTab(device)
	if ok, _ := other.auth.IsLoggedIn(ctx); ok {
		t.Fatal("ephemeral session must not be visible from another tab")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	if err := b.auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := b.auth.Logout(ctx); err != nil {
		t.Fatalf("second Logout must be idempotent: %v", err)
	}
	if ok, _ := b.auth.IsLoggedIn(ctx); ok {
		t.Fatal("expected logged out")
	}
	_, err := b.auth.CurrentUser(ctx)
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAuthService_SessionOfDeletedUserIsCleared(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	u := f.register(t, b, "jane@x.com", "Secret12")
	ctx := context.Background()

	if err := f.users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	session, err := b.auth.GetSession(ctx)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if session != nil {
		t.Fatal("session of a deleted user must be treated as absent")
	}
	raw, _, _ := b.sessions.Get(ctx)
	if raw != nil {
		t.Fatal("dangling session must be removed from storage")
	}
}

func TestAuthService_EndToEndScenario(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	b := f.newBrowser()
	ctx := context.Background()

	if _, err := b.auth.Register(ctx, service.RegisterInput{
		Email: "jane@x.com", Password: "Secret12", FirstName: "Jane", LastName: "Doe",
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	current, err := b.auth.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if current.Email != "jane@x.com" {
		t.Fatalf("expected jane@x.com, got %s", current.Email)
	}

	if _, err := b.auth.Login(ctx, "jane@x.com", "wrong", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected generic failure, got %v", err)
	}
	if _, err := b.auth.Login(ctx, "jane@x.com", "Secret12", false); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := b.auth.ChangePassword(ctx, "Secret12", "NewPass99"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := b.auth.Login(ctx, "jane@x.com", "Secret12", false); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must fail, got %v", err)
	}
	if _, err := b.auth.Login(ctx, "jane@x.com", "NewPass99", false); err != nil {
		t.Fatalf("new password must succeed: %v", err)
	}
}

func TestAuthService_UnboundFacadeIsLoggedOut(t *testing.T) {
	f := newFixture(t, service.AuthConfig{})
	ctx := context.Background()

	ok, err := f.auth.IsLoggedIn(ctx)
	if err != nil || ok {
		t.Fatalf("expected logged out without error, got %v %v", ok, err)
	}
	if err := f.auth.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}
