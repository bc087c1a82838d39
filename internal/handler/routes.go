package handler

import (
	"net/http"
	"time"

	"github.com/msomdec/bloomy/internal/domain"
	"github.com/msomdec/bloomy/internal/obs"
	"github.com/msomdec/bloomy/internal/payment"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

// Deps are the collaborators of the HTTP layer.
type Deps struct {
	Auth     *service.AuthService
	Payments *payment.Simulator
	Product  domain.Product
	Identity *BrowserIdentity

	// Durable and Ephemeral are the shared stores the per-browser scopes
	// are carved out of.
	Durable   storage.Store
	Ephemeral storage.Store

	SessionTTL time.Duration
	AdminToken string

	Limiter *service.TokenBucket
	Metrics *obs.Metrics
	Health  []Pinger
}

// NewRouter returns the complete HTTP handler: routes, instrumentation,
// browser binding and security headers.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, d)
	return SecurityHeaders(Browser(d, d.Metrics.Instrument(mux)))
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, d Deps) {
	limit := func(h http.HandlerFunc) http.Handler {
		return RateLimit(d.Limiter, d.Metrics, h)
	}
	authed := func(h http.HandlerFunc) http.Handler {
		return RequireAuth(h)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz(d.Health...))
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics.Handler())
	}

	home := NewHomeHandler(d.Product)
	mux.HandleFunc("GET /", home.HandleHome)

	dashboard := NewDashboardHandler()
	mux.HandleFunc("GET /dashboard", dashboard.HandleDashboard)
	mux.Handle("GET /dashboard/orders", authed(dashboard.HandleLoadMoreOrders))

	auth := NewAuthHandler()
	mux.Handle("POST /api/auth/register", limit(auth.HandleRegister))
	mux.Handle("POST /api/auth/login", limit(auth.HandleLogin))
	mux.HandleFunc("POST /api/auth/logout", auth.HandleLogout)
	mux.Handle("GET /api/auth/me", authed(auth.HandleMe))
	mux.Handle("POST /api/auth/password/forgot", limit(auth.HandleForgotPassword))
	mux.Handle("POST /api/auth/password/reset", limit(auth.HandleResetPassword))

	account := NewAccountHandler()
	mux.Handle("PATCH /api/account/profile", authed(account.HandleUpdateProfile))
	mux.Handle("POST /api/account/password", authed(account.HandleChangePassword))
	mux.Handle("POST /api/account/email", authed(account.HandleChangeEmail))
	mux.Handle("DELETE /api/account", authed(account.HandleDeleteAccount))
	mux.Handle("GET /api/account/addresses", authed(account.HandleListAddresses))
	mux.Handle("POST /api/account/addresses", authed(account.HandleAddAddress))
	mux.Handle("PATCH /api/account/addresses/{id}", authed(account.HandleUpdateAddress))
	mux.Handle("DELETE /api/account/addresses/{id}", authed(account.HandleDeleteAddress))
	mux.Handle("POST /api/account/addresses/{id}/default", authed(account.HandleSetDefaultAddress))

	orders := NewOrderHandler()
	mux.HandleFunc("GET /api/orders", orders.HandleList)
	mux.HandleFunc("POST /api/orders", orders.HandleCreate)
	mux.Handle("GET /api/orders/{id}", authed(orders.HandleGet))
	mux.Handle("POST /api/orders/track", limit(orders.HandleTrack))
	mux.Handle("POST /api/admin/orders/{id}/status", RequireAdmin(d.AdminToken, http.HandlerFunc(orders.HandleUpdateStatus)))

	cart := NewCartHandler(d.Product)
	mux.HandleFunc("GET /api/cart", cart.HandleGet)
	mux.HandleFunc("POST /api/cart/items", cart.HandleAdd)
	mux.HandleFunc("DELETE /api/cart/items/{index}", cart.HandleRemove)
	mux.HandleFunc("POST /cart/items", cart.HandleAddFragment)
	mux.HandleFunc("DELETE /cart/items/{index}", cart.HandleRemoveFragment)

	checkout := NewCheckoutHandler(d.Payments)
	mux.Handle("POST /api/payment/intents", limit(checkout.HandleCreateIntent))
	mux.Handle("POST /api/checkout", limit(checkout.HandleCheckout))
}
