package jobs

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcall/roadcall-api/services"
	"github.com/roadcall/roadcall-api/store"
)

func TestSchedulerStartStop(t *testing.T) {
	tenants := services.NewTenantService(store.NewMemoryStore(zerolog.Nop()), store.NewKeyLocker(), zerolog.Nop())
	s := NewScheduler(tenants, zerolog.Nop())

	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1, "the daily sweep is registered")
	s.Stop()
}

func TestSweepTenantsRunsWithoutTenants(t *testing.T) {
	tenants := services.NewTenantService(store.NewMemoryStore(zerolog.Nop()), store.NewKeyLocker(), zerolog.Nop())
	s := NewScheduler(tenants, zerolog.Nop())

	// Must not panic or error on an empty directory
	s.sweepTenants()
}
