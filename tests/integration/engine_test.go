package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
	"github.com/roadcall/roadcall-api/tests/testutil"
)

// The full onboarding path: register a tenant, create its admin, log in
// as that admin, and have the admin create a worker. Every step leaves
// its trace in the credential ledger and the audit trail.
func TestTenantOnboardingFlow(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	e := testutil.NewEngine(t)
	ctx := context.Background()
	super := testutil.SuperAdmin()

	tenant := e.CreateTenant(t, "Acme Roadside", "acme", models.PlanProfessional)
	assert.Equal(t, models.TenantStatusTrial, tenant.Status)

	bob := e.CreateUser(t, super, tenant.ID, services.CreateUserInput{
		Username: "bob",
		Password: "bob-secret-1",
		Role:     models.RoleAdmin,
		FullName: "Bob Admin",
	})
	assert.Equal(t, "000001", bob.EmployeeID)

	bobCaller, err := e.Identity.Login(ctx, "bob", "bob-secret-1", "acme")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, bobCaller.TenantID)

	amy := e.CreateUser(t, bobCaller, tenant.ID, services.CreateUserInput{
		Username: "amy",
		Password: "amy-secret-1",
		Role:     models.RoleWorker,
		FullName: "Amy Worker",
	})
	assert.Equal(t, "000002", amy.EmployeeID)
	assert.True(t, amy.Permissions.CanHandleRequests)

	// The super admin sees both ledger entries; bob only his own
	all, err := e.Identity.GetCredentialLogs(ctx, super, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "amy", all[0].Username, "ledger is newest first")
	assert.Equal(t, "amy-secret-1", all[0].Password)

	own, err := e.Identity.GetCredentialLogs(ctx, bobCaller, tenant.ID)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "amy", own[0].Username)

	// The audit trail recorded both creations and bob's login
	entries, err := e.Audit.List(ctx, super)
	require.NoError(t, err)
	var actions []string
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	assert.Contains(t, actions, models.AuditUserCreated)
	assert.Contains(t, actions, models.AuditLoginSuccess)
}

// A priced intake carries the submission-time quote through to the
// invoice payload.
func TestIntakeToInvoiceFlow(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	e := testutil.NewEngine(t)
	ctx := context.Background()
	super := testutil.SuperAdmin()

	tenant := e.CreateTenant(t, "Acme Roadside", "acme", models.PlanStarter)

	request := e.CreateRequest(t, tenant.ID, services.CreateRequestInput{
		Type:  models.RequestTypeRoadside,
		Name:  "Dana Driver",
		Phone: "555-0101",
		Email: "dana@example.com",
		Title: "Flat tire",
		Services: []models.CatalogEntry{
			{ID: "tire-change", Name: "Tire Change", BasePrice: 64.13, AfterHoursPrice: 89.99, TravelFee: 25},
		},
	})

	require.NotNil(t, request.TotalAmount)
	require.Len(t, request.SelectedServices, 1)
	subtotal := request.SelectedServices[0].Price
	assert.InDelta(t, subtotal*1.0825, *request.TotalAmount, 0.001, "total is the service sum plus tax")

	invoice, err := services.BuildInvoice(request)
	require.NoError(t, err)
	assert.Equal(t, *request.TotalAmount, invoice.TotalAmount)
	assert.Equal(t, "Dana Driver", invoice.CustomerName)

	// The archive mirror already holds the priced snapshot
	archived, err := e.Requests.ListArchived(ctx, super, tenant.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	require.NotNil(t, archived[0].TotalAmount)
	assert.Equal(t, *request.TotalAmount, *archived[0].TotalAmount)
}

// Cancellation combines a reason, a status transition, and a customer
// message; the mirror follows every step and survives a live clear.
func TestCancellationFlow(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	e := testutil.NewEngine(t)
	ctx := context.Background()
	super := testutil.SuperAdmin()

	tenant := e.CreateTenant(t, "Acme Roadside", "acme", models.PlanStarter)
	request := e.CreateRequest(t, tenant.ID, services.CreateRequestInput{
		Type:  models.RequestTypeCharging,
		Name:  "Dana Driver",
		Phone: "555-0101",
	})

	_, err := e.Requests.UpdateReason(ctx, super, tenant.ID, request.ID, services.ReasonCancel, "duplicate submission")
	require.NoError(t, err)
	_, err = e.Requests.UpdateStatus(ctx, super, tenant.ID, request.ID, models.StatusCanceled)
	require.NoError(t, err)
	_, err = e.Requests.AddMessage(ctx, super, tenant.ID, request.ID, "This request was canceled as a duplicate.", models.SenderAdmin)
	require.NoError(t, err)

	updated, err := e.Requests.Get(ctx, super, tenant.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, updated.Status)
	assert.Equal(t, "duplicate submission", updated.CancelReason)
	require.Len(t, updated.Messages, 1)

	removed, err := e.Requests.ClearPastRequests(ctx, super, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	live, err := e.Requests.List(ctx, super, tenant.ID)
	require.NoError(t, err)
	assert.Empty(t, live)

	archived, err := e.Requests.ListArchived(ctx, super, tenant.ID)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, models.StatusCanceled, archived[0].Status)
	assert.Equal(t, "duplicate submission", archived[0].CancelReason)
}

// Suspending a tenant freezes its writes until a super admin reactivates it.
func TestSuspensionFreezesTenant(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	e := testutil.NewEngine(t)
	ctx := context.Background()
	super := testutil.SuperAdmin()

	tenant := e.CreateTenant(t, "Acme Roadside", "acme", models.PlanStarter)
	request := e.CreateRequest(t, tenant.ID, services.CreateRequestInput{
		Type:  models.RequestTypeRoadside,
		Name:  "Dana Driver",
		Phone: "555-0101",
	})

	suspended := models.TenantStatusSuspended
	_, err := e.Tenants.Update(ctx, super, tenant.ID, services.UpdateTenantInput{Status: &suspended})
	require.NoError(t, err)

	_, _, err = e.Requests.Create(ctx, tenant.ID, services.CreateRequestInput{
		Type:  models.RequestTypeRoadside,
		Name:  "Eve Driver",
		Phone: "555-0102",
	})
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = e.Requests.UpdateNote(ctx, super, tenant.ID, request.ID, "note")
	assert.ErrorIs(t, err, models.ErrForbidden)

	active := models.TenantStatusActive
	_, err = e.Tenants.Update(ctx, super, tenant.ID, services.UpdateTenantInput{Status: &active})
	require.NoError(t, err)

	_, err = e.Requests.UpdateNote(ctx, super, tenant.ID, request.ID, "back in business")
	assert.NoError(t, err)
}

// Tenants are isolated: one tenant's data never leaks into another's
// scope, and the global scope is separate from both.
func TestTenantIsolation(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	e := testutil.NewEngine(t)
	ctx := context.Background()
	super := testutil.SuperAdmin()

	acme := e.CreateTenant(t, "Acme Roadside", "acme", models.PlanStarter)
	volt := e.CreateTenant(t, "Volt Charging", "volt", models.PlanStarter)

	e.CreateRequest(t, acme.ID, services.CreateRequestInput{
		Type:  models.RequestTypeRoadside,
		Name:  "Dana Driver",
		Phone: "555-0101",
	})

	acmeRequests, err := e.Requests.List(ctx, super, acme.ID)
	require.NoError(t, err)
	assert.Len(t, acmeRequests, 1)

	voltRequests, err := e.Requests.List(ctx, super, volt.ID)
	require.NoError(t, err)
	assert.Empty(t, voltRequests)

	globalRequests, err := e.Requests.List(ctx, super, "")
	require.NoError(t, err)
	assert.Empty(t, globalRequests)
}
