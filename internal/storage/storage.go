// Package storage provides the state management for accounts, contact
// records, and sessions.
package storage

import (
	"context"
	"time"

	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

const (
	// ErrNotFound is returned when an account or session cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if an account identifier is already taken.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidIdentifier is returned when an identifier fails validation.
	ErrInvalidIdentifier Error = "identifier must be 1-255 printable characters"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying accounts.
type Users interface {
	// CreateUser inserts a new account with the given identifier and password
	// hash and no contact record. An [ErrAlreadyExists] is returned if the
	// identifier is already in use; uniqueness is enforced by the database
	// constraint, not an application-level existence check.
	CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error)
	// GetUser returns a single account with the specified ID. An
	// [ErrNotFound] is returned if the ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByName returns a single account with the specified identifier.
	// An [ErrNotFound] is returned if the identifier does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// ListUsers returns accounts in identifier order, paginated by the given
	// name (if provided) up to the given limit of records.
	ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error)
	// DeleteUser removes an account and its sessions. Note that this is a
	// hard delete; data is not recoverable.
	DeleteUser(ctx context.Context, userID uint64) error
}

// Contacts are the methods on a storage implementation that are responsible
// for the contact record embedded in each account.
type Contacts interface {
	// GetContact returns the contact record for an account. The record may be
	// empty if the account never set one. An [ErrNotFound] is returned if the
	// account does not exist.
	GetContact(ctx context.Context, userID uint64) (db.Contact, error)
	// UpsertContact writes all three contact fields onto the account in a
	// single statement. This is a full PUT-style update; prior values are
	// always overwritten.
	UpsertContact(ctx context.Context, userID uint64, contact db.Contact) error
	// ClearContact removes all three contact fields in a single statement,
	// never leaving them partially absent.
	ClearContact(ctx context.Context, userID uint64) error
}

// Sessions are the methods on a storage implementation that are responsible
// for server-side session state.
type Sessions interface {
	// CreateSession stores a session token bound to an account until the
	// given expiry.
	CreateSession(ctx context.Context, token string, userID uint64, expiresAt time.Time) error
	// GetSession resolves a token to its session. An [ErrNotFound] is
	// returned for unknown or expired tokens.
	GetSession(ctx context.Context, token string) (db.Session, error)
	// DeleteSession removes a session. Deleting an absent session is not an
	// error.
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes all sessions past their expiry and
	// returns the number removed.
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// Store is the combination interface for [Users], [Contacts], and [Sessions].
type Store interface {
	Users
	Contacts
	Sessions
	// Close releases any resources held by the store. An error is returned if
	// the store cannot be cleanly closed.
	Close() error
}
