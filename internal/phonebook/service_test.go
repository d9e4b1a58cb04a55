package phonebook

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJKwan1228/phonebook/internal/storage"
	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

func newTestService(t *testing.T) (*Service, uint64) {
	t.Helper()
	store := storage.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	user, err := store.CreateUser(t.Context(), "alice", []byte("hash"))
	require.NoError(t, err)
	return NewService(store, slog.New(slog.DiscardHandler)), user.ID
}

func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	svc, userID := newTestService(t)

	record, err := svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.True(t, record.IsZero())

	want := db.Contact{Name: "Ada", Mobile: "555-0100", Email: "ada@example.com"}
	require.NoError(t, svc.Upsert(t.Context(), userID, want))

	record, err = svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, want, record)

	require.NoError(t, svc.Clear(t.Context(), userID))
	record, err = svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, db.Contact{}, record)
}

func TestUpsertIdempotent(t *testing.T) {
	t.Parallel()

	svc, userID := newTestService(t)
	want := db.Contact{Name: "Ada", Mobile: "555-0100", Email: "ada@example.com"}

	require.NoError(t, svc.Upsert(t.Context(), userID, want))
	require.NoError(t, svc.Upsert(t.Context(), userID, want))

	record, err := svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, want, record)
}

func TestUpsertOverwritesAllFields(t *testing.T) {
	t.Parallel()

	svc, userID := newTestService(t)
	require.NoError(t, svc.Upsert(t.Context(), userID, db.Contact{
		Name: "Ada", Mobile: "555-0100", Email: "ada@example.com",
	}))

	// a total write: fields left empty in the new record become empty
	require.NoError(t, svc.Upsert(t.Context(), userID, db.Contact{Name: "Ada L."}))
	record, err := svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, db.Contact{Name: "Ada L."}, record)
}

func TestUpsertTrimsWhitespace(t *testing.T) {
	t.Parallel()

	svc, userID := newTestService(t)
	require.NoError(t, svc.Upsert(t.Context(), userID, db.Contact{
		Name: "  Ada ", Mobile: " 555-0100", Email: "ada@example.com ",
	}))

	record, err := svc.Record(t.Context(), userID)
	require.NoError(t, err)
	assert.Equal(t, db.Contact{Name: "Ada", Mobile: "555-0100", Email: "ada@example.com"}, record)
}

func TestUnknownAccount(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	_, err := svc.Record(t.Context(), 987654)
	require.ErrorIs(t, err, storage.ErrNotFound)
	err = svc.Upsert(t.Context(), 987654, db.Contact{Name: "x"})
	require.ErrorIs(t, err, storage.ErrNotFound)
	err = svc.Clear(t.Context(), 987654)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
