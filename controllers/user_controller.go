package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
)

// UserController handles account management, the credential ledger, and
// the audit trail.
type UserController struct {
	identity *services.IdentityService
	audit    *services.AuditService
}

// NewUserController creates the user controller.
func NewUserController(identity *services.IdentityService, audit *services.AuditService) *UserController {
	return &UserController{identity: identity, audit: audit}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username    string              `json:"username" binding:"required"`
	Password    string              `json:"password" binding:"required"`
	Role        string              `json:"role" binding:"required"`
	FullName    string              `json:"full_name" binding:"required"`
	Email       string              `json:"email" binding:"omitempty,email"`
	Phone       string              `json:"phone"`
	Permissions *models.Permissions `json:"permissions"`
}

// CreateUser handles POST /api/v1/users - creates an account in the caller's scope
func (ctrl *UserController) CreateUser(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ctrl.identity.CreateUser(c.Request.Context(), caller, requestScope(c, caller), services.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Permissions: req.Permissions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user.Sanitized(),
	})
}

// ListUsers handles GET /api/v1/users - lists accounts in the caller's scope
func (ctrl *UserController) ListUsers(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	users, err := ctrl.identity.ListUsers(c.Request.Context(), caller, requestScope(c, caller))
	if err != nil {
		respondError(c, err)
		return
	}

	sanitized := make([]models.SystemUser, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    sanitized,
	})
}

// UpdateUserRequest represents the request body for updating a user
type UpdateUserRequest struct {
	FullName    *string             `json:"full_name"`
	Email       *string             `json:"email" binding:"omitempty,email"`
	Phone       *string             `json:"phone"`
	Role        *string             `json:"role"`
	IsActive    *bool               `json:"is_active"`
	Permissions *models.Permissions `json:"permissions"`
	Password    *string             `json:"password"`
}

// UpdateUser handles PUT /api/v1/users/:id - edits an account
func (ctrl *UserController) UpdateUser(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := ctrl.identity.UpdateUser(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), services.UpdateUserInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Role:        req.Role,
		IsActive:    req.IsActive,
		Permissions: req.Permissions,
		Password:    req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user.Sanitized(),
	})
}

// GetCredentialLogs handles GET /api/v1/credential-logs - returns the
// role-gated credential ledger for the caller's scope
func (ctrl *UserController) GetCredentialLogs(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	logs, err := ctrl.identity.GetCredentialLogs(c.Request.Context(), caller, requestScope(c, caller))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
	})
}

// GetAuditLogs handles GET /api/v1/audit-logs - returns the global audit trail
func (ctrl *UserController) GetAuditLogs(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	entries, err := ctrl.audit.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}
