package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/models"
	"github.com/roadcall/roadcall-api/services"
)

// RequestController handles the service-request lifecycle. Intake is
// public (customers submit without an account); everything else requires
// an authenticated staff caller.
type RequestController struct {
	identity *services.IdentityService
	requests *services.RequestService
	tenants  *services.TenantService
}

// NewRequestController creates the request controller.
func NewRequestController(identity *services.IdentityService, requests *services.RequestService, tenants *services.TenantService) *RequestController {
	return &RequestController{identity: identity, requests: requests, tenants: tenants}
}

// CreateRequestRequest represents the public intake body. The optional
// subdomain routes the request to a tenant.
type CreateRequestRequest struct {
	Subdomain     string                `json:"subdomain"`
	Type          string                `json:"type" binding:"required"`
	Name          string                `json:"name" binding:"required"`
	Phone         string                `json:"phone" binding:"required"`
	Email         string                `json:"email" binding:"omitempty,email"`
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	Location      models.Location       `json:"location"`
	VehicleInfo   *models.VehicleInfo   `json:"vehicle_info"`
	PreferredDate string                `json:"preferred_date"`
	PreferredTime string                `json:"preferred_time"`
	HasSpareTire  bool                  `json:"has_spare_tire"`
	Services      []models.CatalogEntry `json:"services"`
}

// CreateRequest handles POST /api/v1/requests - public customer intake
func (ctrl *RequestController) CreateRequest(c *gin.Context) {
	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	tenantID := ""
	if req.Subdomain != "" {
		tenant, err := ctrl.tenants.GetBySubdomain(c.Request.Context(), req.Subdomain)
		if err != nil {
			respondError(c, err)
			return
		}
		tenantID = tenant.ID
	}

	request, position, err := ctrl.requests.Create(c.Request.Context(), tenantID, services.CreateRequestInput{
		Type:          req.Type,
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Title:         req.Title,
		Description:   req.Description,
		Location:      req.Location,
		VehicleInfo:   req.VehicleInfo,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		HasSpareTire:  req.HasSpareTire,
		Services:      req.Services,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"request":        request,
			"queue_position": position,
		},
	})
}

// ListRequests handles GET /api/v1/requests - lists live requests in the caller's scope
func (ctrl *RequestController) ListRequests(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	requests, err := ctrl.requests.List(c.Request.Context(), caller, requestScope(c, caller))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// ListArchivedRequests handles GET /api/v1/requests/archived
func (ctrl *RequestController) ListArchivedRequests(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	archived, err := ctrl.requests.ListArchived(c.Request.Context(), caller, requestScope(c, caller))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    archived,
	})
}

// GetRequest handles GET /api/v1/requests/:id
func (ctrl *RequestController) GetRequest(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	request, err := ctrl.requests.Get(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// UpdateStatusRequest represents the request body for a status transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus handles PATCH /api/v1/requests/:id/status
func (ctrl *RequestController) UpdateStatus(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.UpdateStatus(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// UpdateReasonRequest represents the request body for setting a reason
type UpdateReasonRequest struct {
	Kind   string `json:"kind" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// UpdateReason handles PATCH /api/v1/requests/:id/reason
func (ctrl *RequestController) UpdateReason(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.UpdateReason(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Kind, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// AddMessageRequest represents the request body for appending a message
type AddMessageRequest struct {
	Text   string `json:"text" binding:"required"`
	Sender string `json:"sender" binding:"required"`
}

// AddMessage handles POST /api/v1/requests/:id/messages
func (ctrl *RequestController) AddMessage(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req AddMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.AddMessage(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Text, req.Sender)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// AddPhotoRequest represents the request body for attaching a photo
type AddPhotoRequest struct {
	Photo string `json:"photo" binding:"required"` // data URI
}

// AddPhoto handles POST /api/v1/requests/:id/photos
func (ctrl *RequestController) AddPhoto(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req AddPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	stored, err := services.GetPhotoService().StorePhoto(req.Photo)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PHOTO",
				"message": err.Error(),
			},
		})
		return
	}

	request, err := ctrl.requests.AddPhoto(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), stored)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// RemovePhoto handles DELETE /api/v1/requests/:id/photos/:index
func (ctrl *RequestController) RemovePhoto(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, models.ErrBadRequest)
		return
	}

	request, err := ctrl.requests.RemovePhoto(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), index)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// UpdateNoteRequest represents the request body for setting the admin note
type UpdateNoteRequest struct {
	Note string `json:"note"`
}

// UpdateNote handles PATCH /api/v1/requests/:id/note
func (ctrl *RequestController) UpdateNote(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.UpdateNote(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// UpdateAddressRequest represents the request body for replacing the location
type UpdateAddressRequest struct {
	Location models.Location `json:"location" binding:"required"`
}

// UpdateAddress handles PATCH /api/v1/requests/:id/address
func (ctrl *RequestController) UpdateAddress(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.UpdateAddress(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Location)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// UpdateStaffRequest represents the request body for assigning staff
type UpdateStaffRequest struct {
	StaffIDs []string `json:"staff_ids"`
}

// UpdateAssignedStaff handles PUT /api/v1/requests/:id/staff
func (ctrl *RequestController) UpdateAssignedStaff(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	request, err := ctrl.requests.UpdateAssignedStaff(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.StaffIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    request,
	})
}

// AcceptJobRequest represents the request body for accepting a job
type AcceptJobRequest struct {
	Coordinates models.Coordinates `json:"coordinates" binding:"required"`
	Platform    string             `json:"platform"`
}

// AcceptJob handles POST /api/v1/requests/:id/accept - records the
// acceptance and returns the round-trip distance to the request
func (ctrl *RequestController) AcceptJob(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	var req AcceptJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	entry, distance, err := ctrl.requests.AddAcceptanceLog(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"), req.Coordinates, req.Platform)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"acceptance_log": entry,
			"distance":       distance,
		},
	})
}

// ClearPastRequests handles POST /api/v1/requests/clear-past - removes
// completed and canceled requests from the live view
func (ctrl *RequestController) ClearPastRequests(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	removed, err := ctrl.requests.ClearPastRequests(c.Request.Context(), caller, requestScope(c, caller))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"removed": removed,
		},
	})
}

// DeleteRequest handles DELETE /api/v1/requests/:id - hard-removes from the live list
func (ctrl *RequestController) DeleteRequest(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	if err := ctrl.requests.Delete(c.Request.Context(), caller, requestScope(c, caller), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Request deleted",
	})
}

// GetInvoice handles GET /api/v1/requests/:id/invoice - builds the
// payload for the external invoicing collaborator
func (ctrl *RequestController) GetInvoice(c *gin.Context) {
	caller, ok := resolveCaller(c, ctrl.identity)
	if !ok {
		return
	}

	request, err := ctrl.requests.Get(c.Request.Context(), caller, requestScope(c, caller), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	invoice, err := services.BuildInvoice(request)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    invoice,
	})
}
