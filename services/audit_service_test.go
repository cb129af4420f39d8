package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

func newTestAuditService() *AuditService {
	return NewAuditService(store.NewMemoryStore(zerolog.Nop()), store.NewKeyLocker(), zerolog.Nop())
}

func TestAuditRecordAssignsIDAndTimestamp(t *testing.T) {
	svc := newTestAuditService()
	ctx := context.Background()

	err := svc.Record(ctx, models.AuditLogEntry{Username: "bob", Action: models.AuditLoginSuccess})
	require.NoError(t, err)

	entries, err := svc.List(ctx, models.SuperAdminIdentity())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAuditRecordNewestFirst(t *testing.T) {
	svc := newTestAuditService()
	ctx := context.Background()

	require.NoError(t, svc.Record(ctx, models.AuditLogEntry{Username: "first", Action: models.AuditLoginSuccess}))
	require.NoError(t, svc.Record(ctx, models.AuditLogEntry{Username: "second", Action: models.AuditLoginFailed}))

	entries, err := svc.List(ctx, models.SuperAdminIdentity())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Username)
	assert.Equal(t, "first", entries[1].Username)
}

func TestAuditTrailCapped(t *testing.T) {
	svc := newTestAuditService()
	ctx := context.Background()

	for i := 0; i < maxAuditEntries+25; i++ {
		require.NoError(t, svc.Record(ctx, models.AuditLogEntry{
			Username: fmt.Sprintf("user-%d", i),
			Action:   models.AuditLoginSuccess,
		}))
	}

	entries, err := svc.List(ctx, models.SuperAdminIdentity())
	require.NoError(t, err)
	assert.Len(t, entries, maxAuditEntries)
	// The oldest entries are silently dropped
	assert.Equal(t, fmt.Sprintf("user-%d", maxAuditEntries+24), entries[0].Username)
	assert.Equal(t, "user-25", entries[len(entries)-1].Username)
}

func TestAuditListRequiresAdmin(t *testing.T) {
	svc := newTestAuditService()

	worker := models.Identity{User: &models.SystemUser{ID: "w1", Role: models.RoleWorker, IsActive: true}}
	_, err := svc.List(context.Background(), worker)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
