package db

import (
	"database/sql"
	"time"
)

// User is one account row: the login identifier, its password hash, and the
// optional embedded contact record.
type User struct {
	ID            uint64         `db:"id"`
	Name          string         `db:"name"`
	PasswordHash  []byte         `db:"password_hash"`
	ContactName   sql.NullString `db:"contact_name"`
	ContactMobile sql.NullString `db:"contact_mobile"`
	ContactEmail  sql.NullString `db:"contact_email"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Contact returns the account's contact record. Absent fields come back as
// empty strings.
func (u User) Contact() Contact {
	return Contact{
		Name:   u.ContactName.String,
		Mobile: u.ContactMobile.String,
		Email:  u.ContactEmail.String,
	}
}

// Contact is the three-field record a user maintains about themself. The
// fields are written and cleared together; a zero Contact means the record is
// absent.
type Contact struct {
	Name   string `db:"contact_name"`
	Mobile string `db:"contact_mobile"`
	Email  string `db:"contact_email"`
}

// IsZero reports whether the record is absent.
func (c Contact) IsZero() bool {
	return c == Contact{}
}

// Session is one server-side session row keyed by its opaque token.
type Session struct {
	Token     string    `db:"token"`
	UserID    uint64    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
