package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/handler"
	"github.com/msomdec/bloomy/internal/obs"
	"github.com/msomdec/bloomy/internal/password"
	"github.com/msomdec/bloomy/internal/payment"
	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/repository/sqlite"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

const (
	testJWTSecret  = "test-secret-for-handler-tests-0123456789"
	testAdminToken = "admin-test-token"
)

var fastHasher = password.NewArgon2(password.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

type testServer struct {
	*httptest.Server
	deps     handler.Deps
	registry *prometheus.Registry
	db       *sqlite.DB
}

func newTestDeps(t *testing.T) (handler.Deps, *prometheus.Registry, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	metrics := obs.New(reg)
	durable := db.KV()
	ephemeral := storage.NewMemory()
	auth := service.NewAuthService(docstore.NewUserRepository(durable), docstore.NewOrderRepository(durable),
		fastHasher, nil, metrics, service.AuthConfig{DemoMode: true})

	return handler.Deps{
		Auth:       auth,
		Payments:   payment.NewSimulator(ephemeral, 0, metrics),
		Product:    domain.SmartCase,
		Identity:   handler.NewBrowserIdentity(testJWTSecret, false),
		Durable:    durable,
		Ephemeral:  ephemeral,
		AdminToken: testAdminToken,
		Metrics:    metrics,
		Health:     []handler.Pinger{db},
	}, reg, db
}

// newRouterServer serves deps and returns the base URL.
func newRouterServer(t *testing.T, deps handler.Deps) string {
	t.Helper()
	srv := httptest.NewServer(handler.NewRouter(deps))
	t.Cleanup(srv.Close)
	return srv.URL
}

// newLimiter allows burst requests per client and practically never refills.
func newLimiter(t *testing.T, burst int) *service.TokenBucket {
	t.Helper()
	limiter := service.NewTokenBucket(0.0001, burst)
	t.Cleanup(limiter.Close)
	return limiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	deps, reg, db := newTestDeps(t)
	srv := httptest.NewServer(handler.NewRouter(deps))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, deps: deps, registry: reg, db: db}
}

// newClient returns a client with its own cookie jar, i.e. a new browser.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

// call sends body as JSON and decodes the result record.
func call(t *testing.T, client *http.Client, method, url string, body any, header ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		t.Fatalf("%s %s: decode body: %v", method, url, err)
	}
	return resp.StatusCode, out
}

func register(t *testing.T, srv *testServer, client *http.Client, email string) {
	t.Helper()
	status, body := call(t, client, http.MethodPost, srv.URL+"/api/auth/register", map[string]string{
		"email": email, "password": "Secret12", "firstName": "Jane", "lastName": "Doe",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d %v", status, body)
	}
}

func get(t *testing.T, client *http.Client, url string) (int, string) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}
