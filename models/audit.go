package models

import "time"

// Audit actions
const (
	AuditLoginSuccess    = "login_success"
	AuditLoginFailed     = "login_failed"
	AuditLogout          = "logout"
	AuditUserCreated     = "user_created"
	AuditUserUpdated     = "user_updated"
	AuditPasswordChanged = "password_changed"
)

// AuditLogEntry is one entry in the global authentication/account audit
// trail. The trail is a single sequence regardless of tenant, capped to
// the most recent 1000 entries.
type AuditLogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// CredentialLog records the plaintext password handed to a newly created
// account, kept deliberately recoverable for administrative retrieval.
// Logs are scoped per tenant (or globally for the root scope) and
// appended newest first. Access is strictly role-gated.
type CredentialLog struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
	CreatedByID string    `json:"created_by_id"`
}
