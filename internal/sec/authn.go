package sec

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DJKwan1228/phonebook/internal/storage"
	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

var (
	// ErrInvalidCredentials covers both an unknown identifier and a password
	// mismatch; the caller cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid identifier or password")
	// ErrMissingCredentials is returned when the identifier or password is
	// empty.
	ErrMissingCredentials = errors.New("identifier and password are required")
)

// Authenticator verifies submitted credentials against the user store and
// establishes sessions on success.
type Authenticator struct {
	users    storage.Users
	sessions *SessionManager
	logger   *slog.Logger
}

// NewAuthenticator returns an Authenticator over the given store and session
// manager.
func NewAuthenticator(users storage.Users, sessions *SessionManager, logger *slog.Logger) *Authenticator {
	return &Authenticator{users: users, sessions: sessions, logger: logger}
}

// Register creates an account for the identifier with a freshly salted
// password hash and establishes a session for it (auto-login). A taken
// identifier fails with [storage.ErrAlreadyExists]; uniqueness under
// concurrent registration is guaranteed by the store's constraint, not an
// existence pre-check.
func (a *Authenticator) Register(ctx context.Context, identifier, password string) (db.User, *http.Cookie, error) {
	if identifier == "" || password == "" {
		return db.User{}, nil, ErrMissingCredentials
	}
	hash, err := HashPassword(password)
	if err != nil {
		return db.User{}, nil, err
	}
	user, err := a.users.CreateUser(ctx, identifier, hash)
	if err != nil {
		return db.User{}, nil, err
	}
	cookie, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return db.User{}, nil, err
	}
	a.logger.InfoContext(ctx, "account registered", slog.String("identifier", identifier))
	return user, cookie, nil
}

// Login authenticates the identifier/password pair and establishes a session.
// An unknown identifier and a wrong password both return
// [ErrInvalidCredentials]; the distinction is logged server-side only.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (db.User, *http.Cookie, error) {
	if identifier == "" || password == "" {
		return db.User{}, nil, ErrMissingCredentials
	}
	user, err := a.users.GetUserByName(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.DebugContext(ctx, "login for unknown identifier", slog.String("identifier", identifier))
		return db.User{}, nil, ErrInvalidCredentials
	} else if err != nil {
		return db.User{}, nil, err
	}
	if err := ComparePassword(password, user.PasswordHash); err != nil {
		a.logger.DebugContext(ctx, "login password mismatch", slog.String("identifier", identifier))
		return db.User{}, nil, ErrInvalidCredentials
	}
	cookie, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return db.User{}, nil, err
	}
	return user, cookie, nil
}

// Logout destroys the session named by the cookie value. Idempotent: logging
// out with no live session is not an error.
func (a *Authenticator) Logout(ctx context.Context, cookieValue string) error {
	return a.sessions.Destroy(ctx, cookieValue)
}
