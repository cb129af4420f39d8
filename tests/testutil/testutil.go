package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
	"github.com/roadcall/roadcall-api/store"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// It will fail the test immediately if GO_ENV is set to production.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env == "production" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must not run with GO_ENV=production. Current GO_ENV=%q.", env)
	}
}

// Engine bundles a fully wired engine over an in-memory store for tests.
type Engine struct {
	Store    *store.MemoryStore
	Locks    *store.KeyLocker
	Audit    *services.AuditService
	Tenants  *services.TenantService
	Identity *services.IdentityService
	Requests *services.RequestService
	Notifier *services.MockNotifier
}

// RootCredentials used by test engines.
var RootCredentials = services.RootCredentials{
	Username: "superadmin",
	Password: "root-secret",
}

// NewEngine wires every service over a fresh in-memory store.
func NewEngine(t *testing.T) *Engine {
	t.Helper()

	logger := zerolog.Nop()
	kv := store.NewMemoryStore(zerolog.Nop())
	locks := store.NewKeyLocker()
	audit := services.NewAuditService(kv, locks, logger)
	tenants := services.NewTenantService(kv, locks, logger)
	identity := services.NewIdentityService(kv, locks, audit, tenants, RootCredentials, logger)
	notifier := services.NewMockNotifier()
	requests := services.NewRequestService(kv, locks, tenants, notifier, logger)

	return &Engine{
		Store:    kv,
		Locks:    locks,
		Audit:    audit,
		Tenants:  tenants,
		Identity: identity,
		Requests: requests,
		Notifier: notifier,
	}
}

// SuperAdmin returns the synthetic global super admin identity.
func SuperAdmin() models.Identity {
	return models.SuperAdminIdentity()
}

// CreateTenant registers a tenant as the super admin, failing the test on error.
func (e *Engine) CreateTenant(t *testing.T, businessName, subdomain, plan string) *models.Tenant {
	t.Helper()

	tenant, err := e.Tenants.Create(context.Background(), SuperAdmin(), services.CreateTenantInput{
		BusinessName: businessName,
		Subdomain:    subdomain,
		Plan:         plan,
	})
	if err != nil {
		t.Fatalf("Failed to create tenant %q: %v", subdomain, err)
	}
	return tenant
}

// CreateUser creates an account as the given caller, failing the test on error.
func (e *Engine) CreateUser(t *testing.T, caller models.Identity, tenantID string, input services.CreateUserInput) *models.SystemUser {
	t.Helper()

	user, err := e.Identity.CreateUser(context.Background(), caller, tenantID, input)
	if err != nil {
		t.Fatalf("Failed to create user %q: %v", input.Username, err)
	}
	return user
}

// CreateRequest submits an intake request, failing the test on error.
func (e *Engine) CreateRequest(t *testing.T, tenantID string, input services.CreateRequestInput) *models.ServiceRequest {
	t.Helper()

	request, _, err := e.Requests.Create(context.Background(), tenantID, input)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	return request
}
