package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
)

// DBTX is the subset of [sql.DB] the query methods require, so they can run
// against a pool or a transaction alike.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Queries bundles the SQL statements issued against the phonebook schema.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to the given handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// CreateUserParams are the inputs to [Queries.CreateUser].
type CreateUserParams struct {
	ID           uint64
	Name         string
	PasswordHash []byte
}

const createUser = `
INSERT INTO users (id, name, password_hash)
VALUES ($1, $2, $3)
RETURNING id, name, password_hash, contact_name, contact_mobile, contact_email, created_at
`

// CreateUser inserts a new account with no contact record. The identifier's
// uniqueness is enforced by the table constraint; a duplicate surfaces as a
// pgconn unique-violation error.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	var user User
	err := sqlscan.Get(ctx, q.db, &user, createUser, arg.ID, arg.Name, arg.PasswordHash)
	return user, err
}

const getUser = `
SELECT id, name, password_hash, contact_name, contact_mobile, contact_email, created_at
FROM users
WHERE id = $1
`

// GetUser fetches an account by ID.
func (q *Queries) GetUser(ctx context.Context, userID uint64) (User, error) {
	var user User
	err := sqlscan.Get(ctx, q.db, &user, getUser, userID)
	return user, err
}

const getUserByName = `
SELECT id, name, password_hash, contact_name, contact_mobile, contact_email, created_at
FROM users
WHERE name = $1
`

// GetUserByName fetches an account by its unique identifier.
func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	var user User
	err := sqlscan.Get(ctx, q.db, &user, getUserByName, name)
	return user, err
}

// GetUsersParams are the inputs to [Queries.GetUsers].
type GetUsersParams struct {
	AfterName string
	Limit     int64
}

const getUsers = `
SELECT id, name, password_hash, contact_name, contact_mobile, contact_email, created_at
FROM users
WHERE name > $1
ORDER BY name
LIMIT $2
`

// GetUsers lists accounts in identifier order after the given name.
func (q *Queries) GetUsers(ctx context.Context, arg GetUsersParams) ([]User, error) {
	var users []User
	err := sqlscan.Select(ctx, q.db, &users, getUsers, arg.AfterName, arg.Limit)
	return users, err
}

const deleteUser = `
DELETE FROM users
WHERE id = $1
`

// DeleteUser removes an account. Its sessions are removed by the foreign key
// cascade.
func (q *Queries) DeleteUser(ctx context.Context, userID uint64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, userID)
	return err
}

// UpsertContactParams are the inputs to [Queries.UpsertContact].
type UpsertContactParams struct {
	UserID uint64
	Name   string
	Mobile string
	Email  string
}

const upsertContact = `
UPDATE users
SET contact_name = $2, contact_mobile = $3, contact_email = $4
WHERE id = $1
`

// UpsertContact writes all three contact fields in a single statement and
// returns the number of rows affected.
func (q *Queries) UpsertContact(ctx context.Context, arg UpsertContactParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, upsertContact, arg.UserID, arg.Name, arg.Mobile, arg.Email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const clearContact = `
UPDATE users
SET contact_name = NULL, contact_mobile = NULL, contact_email = NULL
WHERE id = $1
`

// ClearContact removes all three contact fields in a single statement and
// returns the number of rows affected.
func (q *Queries) ClearContact(ctx context.Context, userID uint64) (int64, error) {
	res, err := q.db.ExecContext(ctx, clearContact, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateSessionParams are the inputs to [Queries.CreateSession].
type CreateSessionParams struct {
	Token     string
	UserID    uint64
	ExpiresAt time.Time
}

const createSession = `
INSERT INTO sessions (token, user_id, expires_at)
VALUES ($1, $2, $3)
`

// CreateSession stores a session token bound to an account.
func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.ExecContext(ctx, createSession, arg.Token, arg.UserID, arg.ExpiresAt)
	return err
}

const getSession = `
SELECT token, user_id, expires_at, created_at
FROM sessions
WHERE token = $1 AND expires_at > now()
`

// GetSession resolves a live session token. Expired rows never resolve.
func (q *Queries) GetSession(ctx context.Context, token string) (Session, error) {
	var session Session
	err := sqlscan.Get(ctx, q.db, &session, getSession, token)
	return session, err
}

const deleteSession = `
DELETE FROM sessions
WHERE token = $1
`

// DeleteSession removes a session row.
func (q *Queries) DeleteSession(ctx context.Context, token string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, token)
	return err
}

const deleteExpiredSessions = `
DELETE FROM sessions
WHERE expires_at <= now()
`

// DeleteExpiredSessions sweeps sessions past their expiry and returns the
// number removed.
func (q *Queries) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpiredSessions)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
