package store

import (
	"context"
	"fmt"
)

// Store is the key-value abstraction the engine persists through. Keys
// are namespaced strings, values JSON documents. Implementations own
// serialization; a value that fails to deserialize is treated as absent
// and the corrupt key is cleared (the failure is logged, not swallowed
// silently). The engine never assumes in-process sharing.
type Store interface {
	// Get reads the value at key into dest. It returns false when the
	// key is absent (or held a corrupt value that was cleared).
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set writes value at key, replacing any existing value.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Logical key layout. Global collections use bare names; tenant-owned
// collections are prefixed with the tenant id.
const (
	KeyEmployees       = "employees"
	KeyCredentialLogs  = "credential_logs"
	KeyAuditLogs       = "audit_logs"
	KeyTenants         = "tenants"
	KeyServiceRequests = "service_requests"
	KeyArchived        = "archived_requests"
)

// TenantKey returns the tenant-scoped form of a collection key,
// e.g. TenantKey("t1", "users") == "tenant:t1:users".
func TenantKey(tenantID, collection string) string {
	return fmt.Sprintf("tenant:%s:%s", tenantID, collection)
}

// UsersKey returns the user-list key for a scope. An empty tenant id
// means the global scope.
func UsersKey(tenantID string) string {
	if tenantID == "" {
		return KeyEmployees
	}
	return TenantKey(tenantID, "users")
}

// CredentialLogsKey returns the credential-log key for a scope.
func CredentialLogsKey(tenantID string) string {
	if tenantID == "" {
		return KeyCredentialLogs
	}
	return TenantKey(tenantID, "credential_logs")
}

// RequestsKey returns the live request-list key for a scope.
func RequestsKey(tenantID string) string {
	if tenantID == "" {
		return KeyServiceRequests
	}
	return TenantKey(tenantID, "requests")
}

// ArchivedRequestsKey returns the archived request-list key for a scope.
func ArchivedRequestsKey(tenantID string) string {
	if tenantID == "" {
		return KeyArchived
	}
	return TenantKey(tenantID, "archived_requests")
}
