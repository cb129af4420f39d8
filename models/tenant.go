package models

import "time"

// Tenant statuses
const (
	TenantStatusTrial     = "trial"
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
	TenantStatusCanceled  = "canceled"
)

// Tenant plans
const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

// TenantFeatures holds the per-plan feature limits for a tenant.
type TenantFeatures struct {
	MaxUsers          int  `json:"max_users"`
	MaxRequests       int  `json:"max_requests"`
	CustomBranding    bool `json:"custom_branding"`
	APIAccess         bool `json:"api_access"`
	AdvancedReporting bool `json:"advanced_reporting"`
}

// TenantBilling holds optional billing contact details for a tenant.
type TenantBilling struct {
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Address      string `json:"address,omitempty"`
}

// Tenant represents an isolated business account with its own users,
// requests, and plan limits. Subdomain is unique across all tenants.
type Tenant struct {
	ID                 string            `json:"id"`
	BusinessName       string            `json:"business_name"`
	Subdomain          string            `json:"subdomain"`
	Status             string            `json:"status"` // trial, active, suspended, canceled
	Plan               string            `json:"plan"`   // starter, professional, enterprise
	Features           TenantFeatures    `json:"features"`
	Billing            *TenantBilling    `json:"billing,omitempty"`
	Settings           map[string]string `json:"settings,omitempty"`
	TrialEndsAt        *time.Time        `json:"trial_ends_at,omitempty"`
	SubscriptionEndsAt *time.Time        `json:"subscription_ends_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// IsWritable reports whether the tenant accepts new writes. Suspended and
// canceled tenants reject everything except reactivation.
func (t *Tenant) IsWritable() bool {
	return t.Status == TenantStatusTrial || t.Status == TenantStatusActive
}

// PlanFeatures returns the default feature set for a plan.
func PlanFeatures(plan string) TenantFeatures {
	switch plan {
	case PlanEnterprise:
		return TenantFeatures{
			MaxUsers:          100,
			MaxRequests:       10000,
			CustomBranding:    true,
			APIAccess:         true,
			AdvancedReporting: true,
		}
	case PlanProfessional:
		return TenantFeatures{
			MaxUsers:          25,
			MaxRequests:       2000,
			CustomBranding:    true,
			APIAccess:         true,
			AdvancedReporting: false,
		}
	default: // starter
		return TenantFeatures{
			MaxUsers:          5,
			MaxRequests:       200,
			CustomBranding:    false,
			APIAccess:         false,
			AdvancedReporting: false,
		}
	}
}
