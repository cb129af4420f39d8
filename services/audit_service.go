package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

// maxAuditEntries caps the global audit trail; oldest entries beyond the
// cap are silently dropped.
const maxAuditEntries = 1000

// AuditService owns the global append-only audit trail. There is no
// per-tenant partition: every authentication attempt and account action
// lands in one sequence regardless of which tenant triggered it.
type AuditService struct {
	store store.Store
	locks *store.KeyLocker
	log   zerolog.Logger
}

// NewAuditService creates an audit service over the given store.
func NewAuditService(st store.Store, locks *store.KeyLocker, log zerolog.Logger) *AuditService {
	return &AuditService{store: st, locks: locks, log: log}
}

// Record appends an entry, assigning its id and timestamp, and truncates
// the trail to the most recent entries.
func (s *AuditService) Record(ctx context.Context, entry models.AuditLogEntry) error {
	entry.ID = uuid.NewString()
	entry.Timestamp = time.Now()

	s.locks.Lock(store.KeyAuditLogs)
	defer s.locks.Unlock(store.KeyAuditLogs)

	var entries []models.AuditLogEntry
	if _, err := s.store.Get(ctx, store.KeyAuditLogs, &entries); err != nil {
		return fmt.Errorf("load audit logs: %w", err)
	}

	entries = append([]models.AuditLogEntry{entry}, entries...)
	if len(entries) > maxAuditEntries {
		entries = entries[:maxAuditEntries]
	}

	if err := s.store.Set(ctx, store.KeyAuditLogs, entries); err != nil {
		return fmt.Errorf("save audit logs: %w", err)
	}

	s.log.Debug().Str("action", entry.Action).Str("username", entry.Username).Msg("audit entry recorded")
	return nil
}

// List returns the audit trail, newest first. Only admins may read it.
func (s *AuditService) List(ctx context.Context, caller models.Identity) ([]models.AuditLogEntry, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("audit logs require admin rank: %w", models.ErrForbidden)
	}

	var entries []models.AuditLogEntry
	if _, err := s.store.Get(ctx, store.KeyAuditLogs, &entries); err != nil {
		return nil, fmt.Errorf("load audit logs: %w", err)
	}
	return entries, nil
}
