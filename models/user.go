package models

import (
	"fmt"
	"time"
)

// User roles
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleWorker     = "worker"
	RoleUser       = "user"
)

// SuperAdminID is the reserved caller id of the single global super admin.
// The super admin is synthetic: it exists outside every storage scope and
// is never persisted in a user list.
const SuperAdminID = "super-admin"

// Permissions is the capability set attached to a system user.
type Permissions struct {
	CanManageUsers      bool `json:"can_manage_users"`
	CanViewReports      bool `json:"can_view_reports"`
	CanHandleRequests   bool `json:"can_handle_requests"`
	CanCreateInvoices   bool `json:"can_create_invoices"`
	CanViewCustomerInfo bool `json:"can_view_customer_info"`
	CanDeleteData       bool `json:"can_delete_data"`
}

// DefaultPermissions returns the capability set granted to a role at creation.
func DefaultPermissions(role string) Permissions {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return Permissions{
			CanManageUsers:      true,
			CanViewReports:      true,
			CanHandleRequests:   true,
			CanCreateInvoices:   true,
			CanViewCustomerInfo: true,
			CanDeleteData:       role == RoleSuperAdmin,
		}
	case RoleWorker:
		return Permissions{
			CanHandleRequests:   true,
			CanViewCustomerInfo: true,
		}
	default:
		return Permissions{}
	}
}

// SystemUser represents an employee account, either in the global scope
// or in a tenant's user list. The password hash round-trips through
// persistence; API responses must go through Sanitized.
type SystemUser struct {
	ID           string      `json:"id"`
	EmployeeID   string      `json:"employee_id"` // sequential, zero-padded to 6 digits
	Username     string      `json:"username"`    // unique within its scope, case-insensitive
	PasswordHash string      `json:"password_hash"`
	Role         string      `json:"role"` // super_admin, admin, worker, user
	FullName     string      `json:"full_name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	IsActive     bool        `json:"is_active"`
	Permissions  Permissions `json:"permissions"`
	CreatedBy    string      `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	LastLogin    *time.Time  `json:"last_login,omitempty"`
}

// Sanitized returns a copy safe to hand to the presentation layer.
func (u SystemUser) Sanitized() SystemUser {
	u.PasswordHash = ""
	return u
}

// Identity is the resolved caller of an engine operation. Exactly one of
// two variants holds: the global super admin (no stored record, no
// tenant), or a stored user acting within an optional tenant scope. The
// super admin bypasses tenant membership checks entirely; modeling it as
// a variant keeps that bypass explicit at call sites.
type Identity struct {
	Global   bool
	User     *SystemUser
	TenantID string
}

// SuperAdminIdentity returns the synthetic global super admin identity.
func SuperAdminIdentity() Identity {
	return Identity{
		Global: true,
		User: &SystemUser{
			ID:          SuperAdminID,
			Username:    "superadmin",
			Role:        RoleSuperAdmin,
			FullName:    "Super Administrator",
			IsActive:    true,
			Permissions: DefaultPermissions(RoleSuperAdmin),
		},
	}
}

// Role returns the caller's role.
func (i Identity) Role() string {
	if i.Global {
		return RoleSuperAdmin
	}
	if i.User == nil {
		return ""
	}
	return i.User.Role
}

// IsSuperAdmin reports whether the caller is the global super admin.
func (i Identity) IsSuperAdmin() bool {
	return i.Global
}

// IsAdmin reports whether the caller holds admin or super admin rank.
func (i Identity) IsAdmin() bool {
	r := i.Role()
	return r == RoleAdmin || r == RoleSuperAdmin
}

// AuthorizeScope checks that the caller may act in the given scope. The
// super admin bypasses membership checks entirely; a tenant member may
// act only within its own tenant; a caller with no tenant who is not the
// super admin is rejected on any tenant-scoped operation.
func (i Identity) AuthorizeScope(tenantID string) error {
	if i.IsSuperAdmin() {
		return nil
	}
	if tenantID == "" {
		if i.TenantID != "" {
			return fmt.Errorf("tenant account cannot act in the global scope: %w", ErrForbidden)
		}
		return nil
	}
	if i.TenantID == "" {
		return fmt.Errorf("tenant id required for tenant-scoped operation: %w", ErrBadRequest)
	}
	if i.TenantID != tenantID {
		return fmt.Errorf("caller belongs to a different tenant: %w", ErrForbidden)
	}
	return nil
}

// CanManage reports whether the caller may create or update an account of
// the given role. Admins manage workers; the super admin manages admins
// and workers. Nobody edits a super admin except another super admin.
func (i Identity) CanManage(role string) bool {
	switch i.Role() {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return role == RoleWorker || role == RoleUser
	default:
		return false
	}
}
