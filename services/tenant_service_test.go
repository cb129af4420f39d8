package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

func newTestTenantService() *TenantService {
	return NewTenantService(store.NewMemoryStore(zerolog.Nop()), store.NewKeyLocker(), zerolog.Nop())
}

func mustCreateTenant(t *testing.T, svc *TenantService, name, subdomain, plan string) *models.Tenant {
	t.Helper()
	tenant, err := svc.Create(context.Background(), models.SuperAdminIdentity(), CreateTenantInput{
		BusinessName: name,
		Subdomain:    subdomain,
		Plan:         plan,
	})
	require.NoError(t, err)
	return tenant
}

func TestCreateTenantStartsTrial(t *testing.T) {
	svc := newTestTenantService()

	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", models.PlanProfessional)

	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, models.TenantStatusTrial, tenant.Status)
	assert.Equal(t, models.PlanProfessional, tenant.Plan)
	assert.Equal(t, models.PlanFeatures(models.PlanProfessional), tenant.Features)
	require.NotNil(t, tenant.TrialEndsAt)
	assert.WithinDuration(t, time.Now().Add(trialLength), *tenant.TrialEndsAt, 5*time.Second)
}

func TestCreateTenantDefaultsToStarter(t *testing.T) {
	svc := newTestTenantService()

	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")

	assert.Equal(t, models.PlanStarter, tenant.Plan)
	assert.Equal(t, 5, tenant.Features.MaxUsers)
	assert.Equal(t, 200, tenant.Features.MaxRequests)
}

func TestCreateTenantRejectsDuplicateSubdomain(t *testing.T) {
	svc := newTestTenantService()
	mustCreateTenant(t, svc, "Acme Roadside", "acme", "")

	// Subdomains are compared case-insensitively
	_, err := svc.Create(context.Background(), models.SuperAdminIdentity(), CreateTenantInput{
		BusinessName: "Acme Clone",
		Subdomain:    "ACME",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCreateTenantRequiresSuperAdmin(t *testing.T) {
	svc := newTestTenantService()

	admin := models.Identity{User: &models.SystemUser{ID: "a1", Role: models.RoleAdmin, IsActive: true}}
	_, err := svc.Create(context.Background(), admin, CreateTenantInput{
		BusinessName: "Acme Roadside",
		Subdomain:    "acme",
	})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCreateTenantRejectsUnknownPlan(t *testing.T) {
	svc := newTestTenantService()

	_, err := svc.Create(context.Background(), models.SuperAdminIdentity(), CreateTenantInput{
		BusinessName: "Acme Roadside",
		Subdomain:    "acme",
		Plan:         "platinum",
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestGetTenantNotFound(t *testing.T) {
	svc := newTestTenantService()

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetBySubdomainIgnoresCase(t *testing.T) {
	svc := newTestTenantService()
	created := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")

	tenant, err := svc.GetBySubdomain(context.Background(), "AcMe")
	require.NoError(t, err)
	assert.Equal(t, created.ID, tenant.ID)
}

func TestUpdateTenantPlanResetsFeatures(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", models.PlanStarter)

	plan := models.PlanEnterprise
	updated, err := svc.Update(context.Background(), models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{Plan: &plan})
	require.NoError(t, err)

	assert.Equal(t, models.PlanEnterprise, updated.Plan)
	assert.Equal(t, models.PlanFeatures(models.PlanEnterprise), updated.Features)
}

func TestUpdateTenantNotFound(t *testing.T) {
	svc := newTestTenantService()

	name := "Renamed"
	_, err := svc.Update(context.Background(), models.SuperAdminIdentity(), "missing", UpdateTenantInput{BusinessName: &name})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEnsureWritableRejectsSuspended(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")

	status := models.TenantStatusSuspended
	_, err := svc.Update(context.Background(), models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{Status: &status})
	require.NoError(t, err)

	_, err = svc.EnsureWritable(context.Background(), tenant.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestEnsureWritableAfterReactivation(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")
	ctx := context.Background()

	suspended := models.TenantStatusSuspended
	_, err := svc.Update(ctx, models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{Status: &suspended})
	require.NoError(t, err)

	// Reactivation is the one write a suspended tenant accepts
	active := models.TenantStatusActive
	_, err = svc.Update(ctx, models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{Status: &active})
	require.NoError(t, err)

	got, err := svc.EnsureWritable(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusActive, got.Status)
}

func TestSweepExpirationsSuspendsLapsedTrials(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	_, err := svc.Update(ctx, models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{TrialEndsAt: &past})
	require.NoError(t, err)

	require.NoError(t, svc.SweepExpirations(ctx, time.Now()))

	got, err := svc.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusSuspended, got.Status)
}

func TestSweepExpirationsCancelsEndedSubscriptions(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")
	ctx := context.Background()

	active := models.TenantStatusActive
	past := time.Now().Add(-time.Hour)
	_, err := svc.Update(ctx, models.SuperAdminIdentity(), tenant.ID, UpdateTenantInput{
		Status:             &active,
		SubscriptionEndsAt: &past,
	})
	require.NoError(t, err)

	require.NoError(t, svc.SweepExpirations(ctx, time.Now()))

	got, err := svc.Get(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusCanceled, got.Status)
}

func TestSweepExpirationsLeavesHealthyTenantsAlone(t *testing.T) {
	svc := newTestTenantService()
	tenant := mustCreateTenant(t, svc, "Acme Roadside", "acme", "")

	require.NoError(t, svc.SweepExpirations(context.Background(), time.Now()))

	got, err := svc.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusTrial, got.Status)
}
