package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
)

// TenantController handles the tenant directory. Every route here is
// effectively super-admin only; the services enforce it.
type TenantController struct {
	identity *services.IdentityService
	tenants  *services.TenantService
}

// NewTenantController creates the tenant controller.
func NewTenantController(identity *services.IdentityService, tenants *services.TenantService) *TenantController {
	return &TenantController{identity: identity, tenants: tenants}
}

// CreateTenantRequest represents the request body for registering a tenant
type CreateTenantRequest struct {
	BusinessName string                `json:"business_name" binding:"required"`
	Subdomain    string                `json:"subdomain" binding:"required"`
	Plan         string                `json:"plan"`
	Billing      *models.TenantBilling `json:"billing"`
	Settings     map[string]string     `json:"settings"`
}

// CreateTenant handles POST /api/v1/tenants
func (ctrl *TenantController) CreateTenant(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tenant, err := ctrl.tenants.Create(c.Request.Context(), caller, services.CreateTenantInput{
		BusinessName: req.BusinessName,
		Subdomain:    req.Subdomain,
		Plan:         req.Plan,
		Billing:      req.Billing,
		Settings:     req.Settings,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tenant,
	})
}

// ListTenants handles GET /api/v1/tenants
func (ctrl *TenantController) ListTenants(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	tenants, err := ctrl.tenants.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tenants,
	})
}

// GetTenant handles GET /api/v1/tenants/:id
func (ctrl *TenantController) GetTenant(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}
	if !caller.IsSuperAdmin() {
		respondError(c, models.ErrForbidden)
		return
	}

	tenant, err := ctrl.tenants.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tenant,
	})
}

// UpdateTenantRequest represents the request body for updating a tenant
type UpdateTenantRequest struct {
	BusinessName       *string               `json:"business_name"`
	Plan               *string               `json:"plan"`
	Status             *string               `json:"status"`
	Settings           map[string]string     `json:"settings"`
	Billing            *models.TenantBilling `json:"billing"`
	TrialEndsAt        *time.Time            `json:"trial_ends_at"`
	SubscriptionEndsAt *time.Time            `json:"subscription_ends_at"`
}

// UpdateTenant handles PUT /api/v1/tenants/:id
func (ctrl *TenantController) UpdateTenant(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tenant, err := ctrl.tenants.Update(c.Request.Context(), caller, c.Param("id"), services.UpdateTenantInput{
		BusinessName:       req.BusinessName,
		Plan:               req.Plan,
		Status:             req.Status,
		Settings:           req.Settings,
		Billing:            req.Billing,
		TrialEndsAt:        req.TrialEndsAt,
		SubscriptionEndsAt: req.SubscriptionEndsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tenant,
	})
}
