package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/middleware"
	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
)

// respondError maps an engine error to the HTTP envelope. The engine
// returns precise error kinds; anything unrecognized is a 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		status = http.StatusUnauthorized
		code = "UNAUTHENTICATED"
	case errors.Is(err, models.ErrForbidden):
		status = http.StatusForbidden
		code = "FORBIDDEN"
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
		code = "NOT_FOUND"
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
		code = "CONFLICT"
	case errors.Is(err, models.ErrBadRequest):
		status = http.StatusBadRequest
		code = "BAD_REQUEST"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

// respondValidationError reports a request-body binding failure.
func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// resolveCaller resolves the authenticated caller from the request
// context. On failure it writes the error response and returns false.
func resolveCaller(c *gin.Context, identity *services.IdentityService) (models.Identity, bool) {
	callerID, err := middleware.GetCallerID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract caller information",
			},
		})
		return models.Identity{}, false
	}

	caller, err := identity.Resolve(c.Request.Context(), callerID, middleware.GetTenantID(c))
	if err != nil {
		respondError(c, err)
		return models.Identity{}, false
	}
	return caller, true
}

// requestScope returns the tenant scope for the current request. Tenant
// members are pinned to the tenant in their token; the super admin may
// select any tenant with the tenant_id query parameter.
func requestScope(c *gin.Context, caller models.Identity) string {
	if caller.IsSuperAdmin() {
		return c.Query("tenant_id")
	}
	return middleware.GetTenantID(c)
}
