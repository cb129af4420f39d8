package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/middleware"
	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
)

// AuthController handles login and logout.
type AuthController struct {
	identity  *services.IdentityService
	jwtSecret string
}

// NewAuthController creates the auth controller.
func NewAuthController(identity *services.IdentityService, jwtSecret string) *AuthController {
	return &AuthController{identity: identity, jwtSecret: jwtSecret}
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Subdomain string `json:"subdomain"`
}

// Login handles POST /api/v1/auth/login - verifies credentials and issues a token
func (ctrl *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	caller, err := ctrl.identity.Login(c.Request.Context(), req.Username, req.Password, req.Subdomain)
	if err != nil {
		respondError(c, err)
		return
	}

	callerID := caller.User.ID
	if caller.IsSuperAdmin() {
		callerID = models.SuperAdminID
	}

	token, err := middleware.IssueToken(ctrl.jwtSecret, callerID, caller.TenantID, caller.Role())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_ERROR",
				"message": "Failed to issue token",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"token": token,
			"user":  caller.User.Sanitized(),
		},
	})
}

// Logout handles POST /api/v1/auth/logout - records the logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	if err := ctrl.identity.Logout(c.Request.Context(), caller); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out",
	})
}
