package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/password"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/repository/sqlite"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

// fixture is a storefront backed by a temporary SQLite durable store and an
// in-memory ephemeral store.
type fixture struct {
	durable   storage.Store
	ephemeral *storage.Memory
	users     *docstore.UserRepository
	orders    *docstore.OrderRepository
	auth      *service.AuthService
}

// fastHasher keeps argon2 cheap in tests.
var fastHasher = password.NewArgon2(password.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

func newFixture(t *testing.T, cfg service.AuthConfig) *fixture {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		durable:   db.KV(),
		ephemeral: storage.NewMemory(),
	}
	f.users = docstore.NewUserRepository(f.durable)
	f.orders = docstore.NewOrderRepository(f.durable)
	f.auth = service.NewAuthService(f.users, f.orders, fastHasher, nil, nil, cfg)
	return f
}

// browser models one tab of one device.
type browser struct {
	tab, device string
	scopes      storage.Scopes
	sessions    *service.SessionManager
	auth        *service.AuthService
}

func (f *fixture) newBrowser() *browser {
	return f.openTab(uuid.NewString())
}

// openTab opens a new tab on an existing device.
func (f *fixture) openTab(device string) *browser {
	b := &browser{tab: uuid.NewString(), device: device}
	b.scopes = storage.Scopes{
		Ephemeral: storage.Prefix(f.ephemeral, "tab:"+b.tab+":"),
		Durable:   storage.Prefix(f.durable, "device:"+device+":"),
	}
	b.sessions = service.NewSessionManager(b.scopes, 0)
	b.auth = f.auth.WithSessions(b.sessions)
	return b
}

func (b *browser) cart() *service.CartService {
	return service.NewCartService(docstore.NewCartRepository(b.scopes.Durable), domain.SmartCase)
}

func (f *fixture) register(t *testing.T, b *browser, email, pw string) *domain.User {
	t.Helper()
	u, err := b.auth.Register(context.Background(), service.RegisterInput{
		Email: email, Password: pw, FirstName: "Jane", LastName: "Doe",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return u
}

func mustMessage(t *testing.T, err error) string {
	t.Helper()
	msg, ok := domain.Message(err)
	if !ok {
		t.Fatalf("expected a shopper-facing error, got %v", err)
	}
	return msg
}
