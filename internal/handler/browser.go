package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/msomdec/bloomy/internal/repository/docstore"
	"github.com/msomdec/bloomy/internal/service"
	"github.com/msomdec/bloomy/internal/storage"
)

// Cookie names of the two browser identities.
const (
	TabCookie    = "bloomy_tab"
	DeviceCookie = "bloomy_device"

	tabAudience    = "tab"
	deviceAudience = "device"
	deviceTTL      = 365 * 24 * time.Hour
)

// BrowserIdentity issues and verifies the signed cookies that identify a
// tab and a device. The tab cookie lives as long as the browser session;
// the device cookie for a year.
type BrowserIdentity struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewBrowserIdentity creates a BrowserIdentity signing with secret.
func NewBrowserIdentity(secret string, secure bool) *BrowserIdentity {
	return &BrowserIdentity{secret: []byte(secret), secure: secure, now: time.Now}
}

// Sign returns a token naming id for audience.
func (b *BrowserIdentity) Sign(id, audience string, ttl time.Duration) (string, error) {
	now := b.now()
	claims := jwt.RegisteredClaims{
		Subject:  id,
		Audience: jwt.ClaimStrings{audience},
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign browser token: %w", err)
	}
	return token, nil
}

// Verify returns the id named by token for audience.
func (b *BrowserIdentity) Verify(token, audience string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return b.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("browser token subject is not a uuid")
	}
	return claims.Subject, nil
}

// resolve returns the id carried by the named cookie, issuing a new one when
// the cookie is missing or invalid.
func (b *BrowserIdentity) resolve(w http.ResponseWriter, r *http.Request, name, audience string, ttl time.Duration) (string, error) {
	if c, err := r.Cookie(name); err == nil {
		if id, err := b.Verify(c.Value, audience); err == nil {
			return id, nil
		}
	}

	id := uuid.NewString()
	token, err := b.Sign(id, audience, ttl)
	if err != nil {
		return "", err
	}
	cookie := &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return id, nil
}

// browser is everything a request may do on behalf of one tab and device.
type browser struct {
	auth     *service.AuthService
	cart     *service.CartService
	checkout *service.CheckoutService
}

type browserContextKey struct{}

func browserFrom(ctx context.Context) *browser {
	b, _ := ctx.Value(browserContextKey{}).(*browser)
	return b
}

// Browser binds the services to the tab and device of each request.
func Browser(d Deps, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tab, err := d.Identity.resolve(w, r, TabCookie, tabAudience, 0)
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		device, err := d.Identity.resolve(w, r, DeviceCookie, deviceAudience, deviceTTL)
		if err != nil {
			writeFailure(w, r, err)
			return
		}

		scopes := storage.Scopes{
			Ephemeral: storage.Prefix(d.Ephemeral, "tab:"+tab+":"),
			Durable:   storage.Prefix(d.Durable, "device:"+device+":"),
		}
		auth := d.Auth.WithSessions(service.NewSessionManager(scopes, d.SessionTTL))
		cart := service.NewCartService(docstore.NewCartRepository(scopes.Durable), d.Product)
		b := &browser{
			auth:     auth,
			cart:     cart,
			checkout: service.NewCheckoutService(auth, cart, d.Payments),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), browserContextKey{}, b)))
	})
}
