package sec

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/DJKwan1228/phonebook/internal/storage"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "phonebook_session"

// Identity is the authenticated account resolved from a session, produced by
// the middleware and read explicitly by handlers. Never attached to a mutable
// request bag.
type Identity struct {
	UserID uint64
	Name   string
}

type identityKey struct{}

// GetAuthenticatedUser returns the identity for the authenticated account.
// Returns a zero-value Identity if the context has no authenticated account
// (should only happen if middleware is misconfigured).
func GetAuthenticatedUser(ctx context.Context) Identity {
	if identity, ok := ctx.Value(identityKey{}).(Identity); ok {
		return identity
	}
	return Identity{}
}

// SetAuthenticatedUser sets the identity for an authenticated account. The
// session middleware injects this automatically; this function is provided as
// a convenience for testing.
func SetAuthenticatedUser(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// SessionManager owns the session lifecycle: issuing tokens on successful
// authentication, resolving cookies back to identities, and destroying
// sessions on logout. It is constructed once at process start and passed by
// reference; there is no ambient global.
type SessionManager struct {
	store  storage.Store
	secret []byte
	ttl    time.Duration
}

// NewSessionManager returns a manager storing sessions in store, signing
// cookie values with secret, and expiring sessions after ttl.
func NewSessionManager(store storage.Store, secret []byte, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, secret: secret, ttl: ttl}
}

// Issue creates a session for the account and returns the cookie carrying its
// signed token.
func (m *SessionManager) Issue(ctx context.Context, userID uint64) (*http.Cookie, error) {
	token := uuid.NewString()
	expiresAt := time.Now().Add(m.ttl)
	if err := m.store.CreateSession(ctx, token, userID, expiresAt); err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token + "." + m.sign(token),
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Resolve maps a cookie value to the identity it authenticates. A malformed
// or tampered value is rejected without a database lookup; unknown and
// expired tokens return [storage.ErrNotFound].
func (m *SessionManager) Resolve(ctx context.Context, cookieValue string) (Identity, error) {
	token, ok := m.verify(cookieValue)
	if !ok {
		return Identity{}, storage.ErrNotFound
	}
	session, err := m.store.GetSession(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	user, err := m.store.GetUser(ctx, session.UserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: user.ID, Name: user.Name}, nil
}

// Destroy removes the session named by the cookie value. Destroying an
// absent, expired, or tampered session is not an error.
func (m *SessionManager) Destroy(ctx context.Context, cookieValue string) error {
	token, ok := m.verify(cookieValue)
	if !ok {
		return nil
	}
	return m.store.DeleteSession(ctx, token)
}

// ClearCookie returns an expired cookie that removes the session cookie from
// the client.
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// Sweep deletes expired session rows.
func (m *SessionManager) Sweep(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredSessions(ctx)
}

// Middleware guards protected routes: it resolves the session cookie into an
// [Identity] on the request context, or redirects to the login entry point.
// Unauthenticated access is navigational, not an error.
func (m *SessionManager) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie == nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		identity, err := m.Resolve(c.Request().Context(), cookie.Value)
		if err != nil {
			return c.Redirect(http.StatusFound, "/login")
		}
		ctx := SetAuthenticatedUser(c.Request().Context(), identity)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

func (m *SessionManager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *SessionManager) verify(cookieValue string) (token string, ok bool) {
	token, sig, found := strings.Cut(cookieValue, ".")
	if !found {
		return "", false
	}
	return token, hmac.Equal([]byte(sig), []byte(m.sign(token)))
}
