package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/store"
)

// RootCredentials are the configured credentials of the implicit global
// super admin. The super admin is never stored; it exists only here.
type RootCredentials struct {
	Username string
	Password string
}

// IdentityService resolves caller identities, enforces the role matrix
// for account management, and owns the credential ledger.
type IdentityService struct {
	store   store.Store
	locks   *store.KeyLocker
	audit   *AuditService
	tenants *TenantService
	root    RootCredentials
	log     zerolog.Logger
}

// NewIdentityService creates the identity and permission model.
func NewIdentityService(st store.Store, locks *store.KeyLocker, audit *AuditService, tenants *TenantService, root RootCredentials, log zerolog.Logger) *IdentityService {
	return &IdentityService{store: st, locks: locks, audit: audit, tenants: tenants, root: root, log: log}
}

// Resolve turns an opaque caller id plus optional tenant id into an
// Identity. Resolution order: the reserved super admin id short-circuits
// without a lookup; then the global employee list; then, when a tenant id
// is given, that tenant's user list; otherwise the caller is
// unauthenticated. Inactive accounts never resolve.
func (s *IdentityService) Resolve(ctx context.Context, callerID, tenantID string) (models.Identity, error) {
	if callerID == "" {
		return models.Identity{}, fmt.Errorf("missing caller id: %w", models.ErrUnauthenticated)
	}
	if callerID == models.SuperAdminID {
		return models.SuperAdminIdentity(), nil
	}

	var global []models.SystemUser
	if _, err := s.store.Get(ctx, store.KeyEmployees, &global); err != nil {
		return models.Identity{}, fmt.Errorf("load employees: %w", err)
	}
	for i := range global {
		if global[i].ID == callerID {
			if !global[i].IsActive {
				return models.Identity{}, fmt.Errorf("account %s is inactive: %w", callerID, models.ErrUnauthenticated)
			}
			return models.Identity{User: &global[i]}, nil
		}
	}

	if tenantID != "" {
		var users []models.SystemUser
		if _, err := s.store.Get(ctx, store.UsersKey(tenantID), &users); err != nil {
			return models.Identity{}, fmt.Errorf("load tenant users: %w", err)
		}
		for i := range users {
			if users[i].ID == callerID {
				if !users[i].IsActive {
					return models.Identity{}, fmt.Errorf("account %s is inactive: %w", callerID, models.ErrUnauthenticated)
				}
				return models.Identity{User: &users[i], TenantID: tenantID}, nil
			}
		}
	}

	return models.Identity{}, fmt.Errorf("caller %s not found: %w", callerID, models.ErrUnauthenticated)
}

// CreateUserInput is the payload for creating an account.
type CreateUserInput struct {
	Username    string
	Password    string
	Role        string
	FullName    string
	Email       string
	Phone       string
	Permissions *models.Permissions
}

// CreateUser creates an account in the given scope (empty tenant id means
// global). Only admins create accounts, and only for roles they manage.
// The plaintext password is appended to the scope's credential ledger,
// deliberately recoverable for administrative retrieval.
func (s *IdentityService) CreateUser(ctx context.Context, caller models.Identity, tenantID string, input CreateUserInput) (*models.SystemUser, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("account creation requires admin rank: %w", models.ErrForbidden)
	}
	if input.Role == models.RoleSuperAdmin {
		return nil, fmt.Errorf("the super admin is implicit and cannot be created: %w", models.ErrBadRequest)
	}
	switch input.Role {
	case models.RoleAdmin, models.RoleWorker, models.RoleUser:
	default:
		return nil, fmt.Errorf("unknown role %q: %w", input.Role, models.ErrBadRequest)
	}
	if !caller.CanManage(input.Role) {
		return nil, fmt.Errorf("role %s may not create %s accounts: %w", caller.Role(), input.Role, models.ErrForbidden)
	}
	if err := caller.AuthorizeScope(tenantID); err != nil {
		return nil, err
	}

	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" || input.FullName == "" {
		return nil, fmt.Errorf("username, password, and full name are required: %w", models.ErrBadRequest)
	}

	var tenant *models.Tenant
	if tenantID != "" {
		var err error
		tenant, err = s.tenants.EnsureWritable(ctx, tenantID)
		if err != nil {
			return nil, err
		}
	}

	usersKey := store.UsersKey(tenantID)
	s.locks.Lock(usersKey)
	defer s.locks.Unlock(usersKey)

	var users []models.SystemUser
	if _, err := s.store.Get(ctx, usersKey, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	if tenant != nil && len(users) >= tenant.Features.MaxUsers {
		return nil, fmt.Errorf("plan limit of %d users reached: %w", tenant.Features.MaxUsers, models.ErrBadRequest)
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, input.Username) {
			return nil, fmt.Errorf("username %q already taken: %w", input.Username, models.ErrConflict)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	perms := models.DefaultPermissions(input.Role)
	if input.Permissions != nil {
		perms = *input.Permissions
	}

	// Sequence derived from the current count. Serialized per scope by
	// the key lock; collisions remain possible across processes.
	user := models.SystemUser{
		ID:           uuid.NewString(),
		EmployeeID:   fmt.Sprintf("%06d", len(users)+1),
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		FullName:     input.FullName,
		Email:        input.Email,
		Phone:        input.Phone,
		IsActive:     true,
		Permissions:  perms,
		CreatedBy:    caller.User.Username,
		CreatedAt:    time.Now(),
	}

	users = append(users, user)
	if err := s.store.Set(ctx, usersKey, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	if err := s.appendCredentialLog(ctx, tenantID, models.CredentialLog{
		ID:          uuid.NewString(),
		Username:    user.Username,
		Password:    input.Password,
		Role:        user.Role,
		CreatedAt:   user.CreatedAt,
		CreatedBy:   caller.User.Username,
		CreatedByID: caller.User.ID,
	}); err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, models.AuditLogEntry{
		Username: caller.User.Username,
		Action:   models.AuditUserCreated,
		UserID:   user.ID,
		Details:  fmt.Sprintf("created %s %q", user.Role, user.Username),
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("tenant_id", tenantID).Msg("user created")
	return &user, nil
}

// UpdateUserInput carries mutable account fields; nil means unchanged.
type UpdateUserInput struct {
	FullName    *string
	Email       *string
	Phone       *string
	Role        *string
	IsActive    *bool
	Permissions *models.Permissions
	Password    *string
}

// UpdateUser edits an account in the given scope. The caller must
// outrank the target per the role matrix; a super admin account could
// only ever be edited by another super admin, and since the super admin
// is implicit no stored record carries that role.
func (s *IdentityService) UpdateUser(ctx context.Context, caller models.Identity, tenantID, userID string, input UpdateUserInput) (*models.SystemUser, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("account updates require admin rank: %w", models.ErrForbidden)
	}
	if err := caller.AuthorizeScope(tenantID); err != nil {
		return nil, err
	}
	if tenantID != "" {
		if _, err := s.tenants.EnsureWritable(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	usersKey := store.UsersKey(tenantID)
	s.locks.Lock(usersKey)
	defer s.locks.Unlock(usersKey)

	var users []models.SystemUser
	if _, err := s.store.Get(ctx, usersKey, &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}

	target := &users[idx]
	if !caller.CanManage(target.Role) {
		return nil, fmt.Errorf("role %s may not edit %s accounts: %w", caller.Role(), target.Role, models.ErrForbidden)
	}
	if target.Role == models.RoleSuperAdmin && !caller.IsSuperAdmin() {
		return nil, fmt.Errorf("only a super admin may edit a super admin: %w", models.ErrForbidden)
	}

	if input.FullName != nil {
		target.FullName = *input.FullName
	}
	if input.Email != nil {
		target.Email = *input.Email
	}
	if input.Phone != nil {
		target.Phone = *input.Phone
	}
	if input.Role != nil {
		switch *input.Role {
		case models.RoleAdmin, models.RoleWorker, models.RoleUser:
		default:
			return nil, fmt.Errorf("unknown role %q: %w", *input.Role, models.ErrBadRequest)
		}
		if !caller.CanManage(*input.Role) {
			return nil, fmt.Errorf("role %s may not grant role %s: %w", caller.Role(), *input.Role, models.ErrForbidden)
		}
		target.Role = *input.Role
	}
	if input.IsActive != nil {
		target.IsActive = *input.IsActive
	}
	if input.Permissions != nil {
		target.Permissions = *input.Permissions
	}

	action := models.AuditUserUpdated
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		target.PasswordHash = string(hash)
		action = models.AuditPasswordChanged
	}

	if err := s.store.Set(ctx, usersKey, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}

	if err := s.audit.Record(ctx, models.AuditLogEntry{
		Username: caller.User.Username,
		Action:   action,
		UserID:   target.ID,
		Details:  fmt.Sprintf("updated %q", target.Username),
	}); err != nil {
		return nil, err
	}

	updated := users[idx]
	return &updated, nil
}

// ListUsers returns the accounts in a scope. Admin rank required.
func (s *IdentityService) ListUsers(ctx context.Context, caller models.Identity, tenantID string) ([]models.SystemUser, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("user listing requires admin rank: %w", models.ErrForbidden)
	}
	if err := caller.AuthorizeScope(tenantID); err != nil {
		return nil, err
	}
	var users []models.SystemUser
	if _, err := s.store.Get(ctx, store.UsersKey(tenantID), &users); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// GetCredentialLogs returns the credential ledger for a scope. The super
// admin sees every log; any other admin sees only the entries it
// personally authored.
func (s *IdentityService) GetCredentialLogs(ctx context.Context, caller models.Identity, tenantID string) ([]models.CredentialLog, error) {
	if !caller.IsAdmin() {
		return nil, fmt.Errorf("credential logs require admin rank: %w", models.ErrForbidden)
	}
	if err := caller.AuthorizeScope(tenantID); err != nil {
		return nil, err
	}

	var logs []models.CredentialLog
	if _, err := s.store.Get(ctx, store.CredentialLogsKey(tenantID), &logs); err != nil {
		return nil, fmt.Errorf("load credential logs: %w", err)
	}
	if caller.IsSuperAdmin() {
		return logs, nil
	}

	own := make([]models.CredentialLog, 0, len(logs))
	for _, l := range logs {
		if l.CreatedByID == caller.User.ID {
			own = append(own, l)
		}
	}
	return own, nil
}

// Login verifies a username and password against a scope selected by
// tenant subdomain (empty means the global scope, where the configured
// root credentials resolve to the synthetic super admin). Every attempt
// produces exactly one audit entry.
func (s *IdentityService) Login(ctx context.Context, username, password, subdomain string) (models.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Identity{}, fmt.Errorf("username and password are required: %w", models.ErrBadRequest)
	}

	tenantID := ""
	if subdomain != "" {
		tenant, err := s.tenants.GetBySubdomain(ctx, subdomain)
		if err != nil {
			// Rejections still count as attempts: exactly one audit
			// entry per attempt, whatever the outcome.
			if auditErr := s.audit.Record(ctx, models.AuditLogEntry{
				Username: username,
				Action:   models.AuditLoginFailed,
				Details:  fmt.Sprintf("unknown tenant subdomain %q", subdomain),
			}); auditErr != nil {
				return models.Identity{}, auditErr
			}
			return models.Identity{}, err
		}
		if !tenant.IsWritable() {
			if auditErr := s.audit.Record(ctx, models.AuditLogEntry{
				Username: username,
				Action:   models.AuditLoginFailed,
				Details:  fmt.Sprintf("tenant is %s", tenant.Status),
			}); auditErr != nil {
				return models.Identity{}, auditErr
			}
			return models.Identity{}, fmt.Errorf("tenant %s is %s: %w", tenant.ID, tenant.Status, models.ErrForbidden)
		}
		tenantID = tenant.ID
	}

	if tenantID == "" && s.root.Password != "" &&
		subtle.ConstantTimeCompare([]byte(username), []byte(s.root.Username)) == 1 &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.root.Password)) == 1 {
		if err := s.audit.Record(ctx, models.AuditLogEntry{
			Username: username,
			Action:   models.AuditLoginSuccess,
			UserID:   models.SuperAdminID,
		}); err != nil {
			return models.Identity{}, err
		}
		return models.SuperAdminIdentity(), nil
	}

	usersKey := store.UsersKey(tenantID)
	s.locks.Lock(usersKey)
	defer s.locks.Unlock(usersKey)

	var users []models.SystemUser
	if _, err := s.store.Get(ctx, usersKey, &users); err != nil {
		return models.Identity{}, fmt.Errorf("load users: %w", err)
	}

	idx := -1
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			idx = i
			break
		}
	}

	if idx < 0 || !users[idx].IsActive ||
		bcrypt.CompareHashAndPassword([]byte(users[idx].PasswordHash), []byte(password)) != nil {
		if err := s.audit.Record(ctx, models.AuditLogEntry{
			Username: username,
			Action:   models.AuditLoginFailed,
			Details:  "invalid credentials",
		}); err != nil {
			return models.Identity{}, err
		}
		return models.Identity{}, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	now := time.Now()
	users[idx].LastLogin = &now
	if err := s.store.Set(ctx, usersKey, users); err != nil {
		return models.Identity{}, fmt.Errorf("save users: %w", err)
	}

	if err := s.audit.Record(ctx, models.AuditLogEntry{
		Username: users[idx].Username,
		Action:   models.AuditLoginSuccess,
		UserID:   users[idx].ID,
	}); err != nil {
		return models.Identity{}, err
	}

	return models.Identity{User: &users[idx], TenantID: tenantID}, nil
}

// Logout records the logout of an authenticated caller.
func (s *IdentityService) Logout(ctx context.Context, caller models.Identity) error {
	return s.audit.Record(ctx, models.AuditLogEntry{
		Username: caller.User.Username,
		Action:   models.AuditLogout,
		UserID:   caller.User.ID,
	})
}

func (s *IdentityService) appendCredentialLog(ctx context.Context, tenantID string, entry models.CredentialLog) error {
	key := store.CredentialLogsKey(tenantID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	var logs []models.CredentialLog
	if _, err := s.store.Get(ctx, key, &logs); err != nil {
		return fmt.Errorf("load credential logs: %w", err)
	}
	logs = append([]models.CredentialLog{entry}, logs...)
	if err := s.store.Set(ctx, key, logs); err != nil {
		return fmt.Errorf("save credential logs: %w", err)
	}
	return nil
}
