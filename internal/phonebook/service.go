// Package phonebook implements the per-account contact record operations:
// read, upsert, clear, and spreadsheet export.
package phonebook

import (
	"context"
	"log/slog"
	"strings"

	"github.com/DJKwan1228/phonebook/internal/sec"
	"github.com/DJKwan1228/phonebook/internal/storage"
	"github.com/DJKwan1228/phonebook/internal/storage/db"
)

// Service exposes the contact record operations. Callers are identified by
// the account ID resolved from the session; the service never inspects the
// request itself.
type Service struct {
	store  storage.Contacts
	logger *slog.Logger
}

// NewService returns a Service over the given store.
func NewService(store storage.Contacts, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record returns the caller's contact record. All fields are empty if the
// record was never set or has been cleared.
func (s *Service) Record(ctx context.Context, userID uint64) (db.Contact, error) {
	return s.store.GetContact(ctx, userID)
}

// Upsert writes all three contact fields onto the caller's account,
// overwriting any prior values. There is no separate create versus update
// state; the operation is idempotent and total. Leading and trailing
// whitespace is trimmed, but no format validation is imposed here.
func (s *Service) Upsert(ctx context.Context, userID uint64, record db.Contact) error {
	record.Name = strings.TrimSpace(record.Name)
	record.Mobile = strings.TrimSpace(record.Mobile)
	record.Email = strings.TrimSpace(record.Email)
	if err := s.store.UpsertContact(ctx, userID, record); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "contact record upserted", slog.Uint64("user_id", userID))
	return nil
}

// Clear removes all three contact fields together. The store guarantees the
// fields are never observably part-cleared.
func (s *Service) Clear(ctx context.Context, userID uint64) error {
	if err := s.store.ClearContact(ctx, userID); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "contact record cleared", slog.Uint64("user_id", userID))
	return nil
}

// Export renders the caller's identifier and contact record as a spreadsheet
// and returns the serialized workbook.
func (s *Service) Export(ctx context.Context, identity sec.Identity) ([]byte, error) {
	record, err := s.store.GetContact(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	return exportWorkbook(exportRows(identity.Name, record))
}
