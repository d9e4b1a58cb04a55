package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

func TestMemory(t *testing.T) {
	t.Parallel()

	store := NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	user, err := store.CreateUser(t.Context(), "alice", []byte("hash-1"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Name)
	assert.True(t, user.Contact().IsZero())

	t.Run("DuplicateIdentifier", func(t *testing.T) {
		t.Parallel()

		_, err := store.CreateUser(t.Context(), "alice", []byte("hash-2"))
		require.ErrorIs(t, err, ErrAlreadyExists)

		// the original registration is untouched
		stored, err := store.GetUserByName(t.Context(), "alice")
		require.NoError(t, err)
		assert.Equal(t, []byte("hash-1"), stored.PasswordHash)
	})

	t.Run("InvalidIdentifier", func(t *testing.T) {
		t.Parallel()

		_, err := store.CreateUser(t.Context(), "", []byte("hash"))
		require.ErrorIs(t, err, ErrInvalidIdentifier)

		_, err = store.CreateUser(t.Context(), "with\ncontrol", []byte("hash"))
		require.ErrorIs(t, err, ErrInvalidIdentifier)
	})

	t.Run("ContactRoundTrip", func(t *testing.T) {
		t.Parallel()

		user, err := store.CreateUser(t.Context(), "ada", []byte("hash"))
		require.NoError(t, err)

		record := db.Contact{Name: "Ada", Mobile: "555-0100", Email: "ada@example.com"}
		require.NoError(t, store.UpsertContact(t.Context(), user.ID, record))

		got, err := store.GetContact(t.Context(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, record, got)

		// idempotent: a second identical upsert changes nothing
		require.NoError(t, store.UpsertContact(t.Context(), user.ID, record))
		got, err = store.GetContact(t.Context(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, record, got)

		require.NoError(t, store.ClearContact(t.Context(), user.ID))
		got, err = store.GetContact(t.Context(), user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("ContactUnknownUser", func(t *testing.T) {
		t.Parallel()

		err := store.UpsertContact(t.Context(), 987654, db.Contact{Name: "x"})
		require.ErrorIs(t, err, ErrNotFound)
		err = store.ClearContact(t.Context(), 987654)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetContact(t.Context(), 987654)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Sessions", func(t *testing.T) {
		t.Parallel()

		user, err := store.CreateUser(t.Context(), "sessioned", []byte("hash"))
		require.NoError(t, err)

		err = store.CreateSession(t.Context(), "tok-live", user.ID, time.Now().Add(time.Hour))
		require.NoError(t, err)
		err = store.CreateSession(t.Context(), "tok-dead", user.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		session, err := store.GetSession(t.Context(), "tok-live")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)

		_, err = store.GetSession(t.Context(), "tok-dead")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetSession(t.Context(), "tok-unknown")
		require.ErrorIs(t, err, ErrNotFound)

		removed, err := store.DeleteExpiredSessions(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		require.NoError(t, store.DeleteSession(t.Context(), "tok-live"))
		_, err = store.GetSession(t.Context(), "tok-live")
		require.ErrorIs(t, err, ErrNotFound)

		// idempotent
		require.NoError(t, store.DeleteSession(t.Context(), "tok-live"))
	})

	t.Run("ListUsers", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{"list_c", "list_a", "list_b"} {
			_, err := store.CreateUser(t.Context(), name, []byte("hash"))
			require.NoError(t, err)
		}

		users, err := store.ListUsers(t.Context(), "list_", 2)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "list_a", users[0].Name)
		assert.Equal(t, "list_b", users[1].Name)

		users, err = store.ListUsers(t.Context(), "list_b", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "list_c", users[0].Name)
	})

	t.Run("DeleteUser", func(t *testing.T) {
		t.Parallel()

		user, err := store.CreateUser(t.Context(), "doomed", []byte("hash"))
		require.NoError(t, err)
		err = store.CreateSession(t.Context(), "tok-doomed", user.ID, time.Now().Add(time.Hour))
		require.NoError(t, err)

		require.NoError(t, store.DeleteUser(t.Context(), user.ID))
		_, err = store.GetUserByName(t.Context(), "doomed")
		require.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetSession(t.Context(), "tok-doomed")
		require.ErrorIs(t, err, ErrNotFound)

		// idempotent
		require.NoError(t, store.DeleteUser(t.Context(), user.ID))
	})
}
