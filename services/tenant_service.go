package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

// trialLength is how long a newly registered tenant may evaluate before
// the expiration sweep suspends it.
const trialLength = 14 * 24 * time.Hour

// TenantService is the tenant directory: it registers, looks up, and
// updates tenant records and enforces plan-based usage ceilings. Every
// mutating operation here is super-admin only.
type TenantService struct {
	store store.Store
	locks *store.KeyLocker
	log   zerolog.Logger
}

// NewTenantService creates a tenant directory over the given store.
func NewTenantService(st store.Store, locks *store.KeyLocker, log zerolog.Logger) *TenantService {
	return &TenantService{store: st, locks: locks, log: log}
}

// CreateTenantInput is the payload for registering a tenant.
type CreateTenantInput struct {
	BusinessName string
	Subdomain    string
	Plan         string
	Billing      *models.TenantBilling
	Settings     map[string]string
}

// Create registers a new tenant on a trial of its chosen plan. The
// subdomain must be unique across all tenants, compared case-insensitively.
func (s *TenantService) Create(ctx context.Context, caller models.Identity, input CreateTenantInput) (*models.Tenant, error) {
	if !caller.IsSuperAdmin() {
		return nil, fmt.Errorf("tenant management requires super admin: %w", models.ErrForbidden)
	}

	input.Subdomain = strings.ToLower(strings.TrimSpace(input.Subdomain))
	if input.BusinessName == "" || input.Subdomain == "" {
		return nil, fmt.Errorf("business name and subdomain are required: %w", models.ErrBadRequest)
	}
	switch input.Plan {
	case models.PlanStarter, models.PlanProfessional, models.PlanEnterprise:
	case "":
		input.Plan = models.PlanStarter
	default:
		return nil, fmt.Errorf("unknown plan %q: %w", input.Plan, models.ErrBadRequest)
	}

	s.locks.Lock(store.KeyTenants)
	defer s.locks.Unlock(store.KeyTenants)

	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}

	for _, t := range tenants {
		if strings.EqualFold(t.Subdomain, input.Subdomain) {
			return nil, fmt.Errorf("subdomain %q already registered: %w", input.Subdomain, models.ErrConflict)
		}
	}

	now := time.Now()
	trialEnd := now.Add(trialLength)
	tenant := models.Tenant{
		ID:           uuid.NewString(),
		BusinessName: input.BusinessName,
		Subdomain:    input.Subdomain,
		Status:       models.TenantStatusTrial,
		Plan:         input.Plan,
		Features:     models.PlanFeatures(input.Plan),
		Billing:      input.Billing,
		Settings:     input.Settings,
		TrialEndsAt:  &trialEnd,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tenants = append(tenants, tenant)
	if err := s.store.Set(ctx, store.KeyTenants, tenants); err != nil {
		return nil, fmt.Errorf("save tenants: %w", err)
	}

	s.log.Info().Str("tenant_id", tenant.ID).Str("subdomain", tenant.Subdomain).Msg("tenant registered")
	return &tenant, nil
}

// List returns every tenant. Super admin only.
func (s *TenantService) List(ctx context.Context, caller models.Identity) ([]models.Tenant, error) {
	if !caller.IsSuperAdmin() {
		return nil, fmt.Errorf("tenant listing requires super admin: %w", models.ErrForbidden)
	}
	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	return tenants, nil
}

// Get looks up a tenant by id. Lookups are not role-gated; the engine
// itself needs them to authorize tenant-scoped writes.
func (s *TenantService) Get(ctx context.Context, id string) (*models.Tenant, error) {
	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	for i := range tenants {
		if tenants[i].ID == id {
			return &tenants[i], nil
		}
	}
	return nil, fmt.Errorf("tenant %s: %w", id, models.ErrNotFound)
}

// GetBySubdomain looks up a tenant by its unique subdomain.
func (s *TenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}
	for i := range tenants {
		if strings.EqualFold(tenants[i].Subdomain, subdomain) {
			return &tenants[i], nil
		}
	}
	return nil, fmt.Errorf("tenant subdomain %s: %w", subdomain, models.ErrNotFound)
}

// UpdateTenantInput carries the mutable tenant fields; nil pointers mean
// "leave unchanged".
type UpdateTenantInput struct {
	BusinessName       *string
	Plan               *string
	Status             *string
	Settings           map[string]string
	Billing            *models.TenantBilling
	TrialEndsAt        *time.Time
	SubscriptionEndsAt *time.Time
}

// Update applies changes to a tenant record. Changing the plan resets the
// feature limits to the new plan's defaults. Status changes here include
// reactivation, the one write a suspended or canceled tenant accepts.
func (s *TenantService) Update(ctx context.Context, caller models.Identity, id string, input UpdateTenantInput) (*models.Tenant, error) {
	if !caller.IsSuperAdmin() {
		return nil, fmt.Errorf("tenant management requires super admin: %w", models.ErrForbidden)
	}

	s.locks.Lock(store.KeyTenants)
	defer s.locks.Unlock(store.KeyTenants)

	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return nil, fmt.Errorf("load tenants: %w", err)
	}

	idx := -1
	for i := range tenants {
		if tenants[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("tenant %s: %w", id, models.ErrNotFound)
	}

	t := &tenants[idx]
	if input.BusinessName != nil {
		t.BusinessName = *input.BusinessName
	}
	if input.Plan != nil {
		switch *input.Plan {
		case models.PlanStarter, models.PlanProfessional, models.PlanEnterprise:
		default:
			return nil, fmt.Errorf("unknown plan %q: %w", *input.Plan, models.ErrBadRequest)
		}
		t.Plan = *input.Plan
		t.Features = models.PlanFeatures(*input.Plan)
	}
	if input.Status != nil {
		switch *input.Status {
		case models.TenantStatusTrial, models.TenantStatusActive, models.TenantStatusSuspended, models.TenantStatusCanceled:
		default:
			return nil, fmt.Errorf("unknown status %q: %w", *input.Status, models.ErrBadRequest)
		}
		t.Status = *input.Status
	}
	if input.Settings != nil {
		t.Settings = input.Settings
	}
	if input.Billing != nil {
		t.Billing = input.Billing
	}
	if input.TrialEndsAt != nil {
		t.TrialEndsAt = input.TrialEndsAt
	}
	if input.SubscriptionEndsAt != nil {
		t.SubscriptionEndsAt = input.SubscriptionEndsAt
	}
	t.UpdatedAt = time.Now()

	if err := s.store.Set(ctx, store.KeyTenants, tenants); err != nil {
		return nil, fmt.Errorf("save tenants: %w", err)
	}

	updated := tenants[idx]
	return &updated, nil
}

// EnsureWritable fails with ErrForbidden when the tenant is suspended or
// canceled. Every tenant-scoped write checks this at its start; writes
// already in flight when a suspension lands are not aborted.
func (s *TenantService) EnsureWritable(ctx context.Context, tenantID string) (*models.Tenant, error) {
	tenant, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.IsWritable() {
		return nil, fmt.Errorf("tenant %s is %s: %w", tenantID, tenant.Status, models.ErrForbidden)
	}
	return tenant, nil
}

// SweepExpirations suspends tenants whose trial has lapsed and cancels
// those whose subscription has ended. Invoked by the daily scheduler.
func (s *TenantService) SweepExpirations(ctx context.Context, now time.Time) error {
	s.locks.Lock(store.KeyTenants)
	defer s.locks.Unlock(store.KeyTenants)

	var tenants []models.Tenant
	if _, err := s.store.Get(ctx, store.KeyTenants, &tenants); err != nil {
		return fmt.Errorf("load tenants: %w", err)
	}

	changed := false
	for i := range tenants {
		t := &tenants[i]
		if t.Status == models.TenantStatusTrial && t.TrialEndsAt != nil && now.After(*t.TrialEndsAt) {
			t.Status = models.TenantStatusSuspended
			t.UpdatedAt = now
			changed = true
			s.log.Info().Str("tenant_id", t.ID).Msg("trial expired, tenant suspended")
		}
		if t.Status == models.TenantStatusActive && t.SubscriptionEndsAt != nil && now.After(*t.SubscriptionEndsAt) {
			t.Status = models.TenantStatusCanceled
			t.UpdatedAt = now
			changed = true
			s.log.Info().Str("tenant_id", t.ID).Msg("subscription ended, tenant canceled")
		}
	}

	if !changed {
		return nil
	}
	if err := s.store.Set(ctx, store.KeyTenants, tenants); err != nil {
		return fmt.Errorf("save tenants: %w", err)
	}
	return nil
}
