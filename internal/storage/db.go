package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"
	"unicode"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/influxdata/influxdb/pkg/snowflake"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

// Identifier validation constraints. The identifier is an opaque unique
// string; its format (username- or email-shaped) is a presentation concern.
const maxIdentifierLen = 255

// pgUniqueViolation is the Postgres error code for unique constraint
// violations.
const pgUniqueViolation = "23505"

// validateIdentifier checks that an identifier is non-empty, within the
// length cap, and free of control characters.
func validateIdentifier(name string) bool {
	if name == "" || len(name) > maxIdentifierLen {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// DB is a [Store] backed by a Postgres database.
type DB struct {
	ids     *snowflake.Generator
	db      *sql.DB
	queries *db.Queries
}

// NewDB initializes a DB for the given DSN and logger, migrating the schema
// on open.
func NewDB(ctx context.Context, logger *slog.Logger, dsn string) (*DB, error) {
	handle, err := db.Open(ctx, logger, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		db:      handle,
		queries: db.New(handle),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return d.db.Close()
}

// CreateUser satisfies the [Users] interface.
func (d *DB) CreateUser(ctx context.Context, name string, passwordHash []byte) (db.User, error) {
	if !validateIdentifier(name) {
		return db.User{}, ErrInvalidIdentifier
	}
	user, err := d.queries.CreateUser(ctx, db.CreateUserParams{
		ID:           d.ids.Next(),
		Name:         name,
		PasswordHash: passwordHash,
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return db.User{}, ErrAlreadyExists
	}
	return user, err
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.queries.GetUser(ctx, userID)
	if sqlscan.NotFound(err) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.queries.GetUserByName(ctx, name)
	if sqlscan.NotFound(err) {
		return user, ErrNotFound
	}
	return user, err
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context, afterName string, limit int32) ([]db.User, error) {
	return d.queries.GetUsers(ctx, db.GetUsersParams{
		AfterName: afterName,
		Limit:     int64(limit),
	})
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID uint64) error {
	return d.queries.DeleteUser(ctx, userID)
}

// GetContact satisfies the [Contacts] interface.
func (d *DB) GetContact(ctx context.Context, userID uint64) (db.Contact, error) {
	user, err := d.GetUser(ctx, userID)
	if err != nil {
		return db.Contact{}, err
	}
	return user.Contact(), nil
}

// UpsertContact satisfies the [Contacts] interface.
func (d *DB) UpsertContact(ctx context.Context, userID uint64, contact db.Contact) error {
	affected, err := d.queries.UpsertContact(ctx, db.UpsertContactParams{
		UserID: userID,
		Name:   contact.Name,
		Mobile: contact.Mobile,
		Email:  contact.Email,
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearContact satisfies the [Contacts] interface.
func (d *DB) ClearContact(ctx context.Context, userID uint64) error {
	affected, err := d.queries.ClearContact(ctx, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSession satisfies the [Sessions] interface.
func (d *DB) CreateSession(ctx context.Context, token string, userID uint64, expiresAt time.Time) error {
	return d.queries.CreateSession(ctx, db.CreateSessionParams{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}

// GetSession satisfies the [Sessions] interface.
func (d *DB) GetSession(ctx context.Context, token string) (db.Session, error) {
	session, err := d.queries.GetSession(ctx, token)
	if sqlscan.NotFound(err) {
		return session, ErrNotFound
	}
	return session, err
}

// DeleteSession satisfies the [Sessions] interface.
func (d *DB) DeleteSession(ctx context.Context, token string) error {
	return d.queries.DeleteSession(ctx, token)
}

// DeleteExpiredSessions satisfies the [Sessions] interface.
func (d *DB) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	return d.queries.DeleteExpiredSessions(ctx)
}

var _ Store = (*DB)(nil)
