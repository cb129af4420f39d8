package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/roadcall/roadcall-api/services"
)

// Scheduler runs the recurring maintenance jobs: the daily tenant
// expiration sweep that suspends lapsed trials and cancels ended
// subscriptions.
type Scheduler struct {
	cron    *cron.Cron
	tenants *services.TenantService
	log     zerolog.Logger
}

// NewScheduler creates the job scheduler.
func NewScheduler(tenants *services.TenantService, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		tenants: tenants,
		log:     log,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.sweepTenants); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the cron loop, waiting briefly for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepTenants() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.tenants.SweepExpirations(ctx, time.Now()); err != nil {
		s.log.Error().Err(err).Msg("tenant expiration sweep failed")
	}
}
