package storage

import (
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

// Memory is an in-memory [Store] with the same semantics as [DB], used as a
// test double and for ephemeral development runs.
type Memory struct {
	mu       sync.RWMutex
	nextID   uint64
	users    map[uint64]db.User
	sessions map[string]db.Session
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		users:    make(map[uint64]db.User),
		sessions: make(map[string]db.Session),
	}
}

// Close satisfies the [Store] interface.
func (m *Memory) Close() error { return nil }

// CreateUser satisfies the [Users] interface.
func (m *Memory) CreateUser(_ context.Context, name string, passwordHash []byte) (db.User, error) {
	if !validateIdentifier(name) {
		return db.User{}, ErrInvalidIdentifier
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Name == name {
			return db.User{}, ErrAlreadyExists
		}
	}
	user := db.User{
		ID:           m.nextID,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	m.nextID++
	m.users[user.ID] = user
	return user, nil
}

// GetUser satisfies the [Users] interface.
func (m *Memory) GetUser(_ context.Context, userID uint64) (db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[userID]
	if !ok {
		return db.User{}, ErrNotFound
	}
	return user, nil
}

// GetUserByName satisfies the [Users] interface.
func (m *Memory) GetUserByName(_ context.Context, name string) (db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Name == name {
			return u, nil
		}
	}
	return db.User{}, ErrNotFound
}

// ListUsers satisfies the [Users] interface.
func (m *Memory) ListUsers(_ context.Context, afterName string, limit int32) ([]db.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]db.User, 0, len(m.users))
	for _, u := range m.users {
		if u.Name > afterName {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b db.User) int { return strings.Compare(a.Name, b.Name) })
	if int32(len(users)) > limit {
		users = users[:limit]
	}
	return users, nil
}

// DeleteUser satisfies the [Users] interface.
func (m *Memory) DeleteUser(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
	for token, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, token)
		}
	}
	return nil
}

// GetContact satisfies the [Contacts] interface.
func (m *Memory) GetContact(ctx context.Context, userID uint64) (db.Contact, error) {
	user, err := m.GetUser(ctx, userID)
	if err != nil {
		return db.Contact{}, err
	}
	return user.Contact(), nil
}

// UpsertContact satisfies the [Contacts] interface.
func (m *Memory) UpsertContact(_ context.Context, userID uint64, contact db.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.ContactName = sql.NullString{String: contact.Name, Valid: true}
	user.ContactMobile = sql.NullString{String: contact.Mobile, Valid: true}
	user.ContactEmail = sql.NullString{String: contact.Email, Valid: true}
	m.users[userID] = user
	return nil
}

// ClearContact satisfies the [Contacts] interface.
func (m *Memory) ClearContact(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	user.ContactName = sql.NullString{}
	user.ContactMobile = sql.NullString{}
	user.ContactEmail = sql.NullString{}
	m.users[userID] = user
	return nil
}

// CreateSession satisfies the [Sessions] interface.
func (m *Memory) CreateSession(_ context.Context, token string, userID uint64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = db.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

// GetSession satisfies the [Sessions] interface.
func (m *Memory) GetSession(_ context.Context, token string) (db.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[token]
	if !ok || !session.ExpiresAt.After(time.Now()) {
		return db.Session{}, ErrNotFound
	}
	return session, nil
}

// DeleteSession satisfies the [Sessions] interface.
func (m *Memory) DeleteSession(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// DeleteExpiredSessions satisfies the [Sessions] interface.
func (m *Memory) DeleteExpiredSessions(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	now := time.Now()
	for token, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, token)
			removed++
		}
	}
	return removed, nil
}

var _ Store = (*Memory)(nil)
