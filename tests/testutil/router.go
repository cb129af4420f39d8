package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/roadcall/roadcall-api/controllers"
	"github.com/roadcall/roadcall-api/middleware"
	"github.com/roadcall/roadcall-api/services"
)

// JWTSecret signs tokens in acceptance tests.
const JWTSecret = "acceptance-test-secret"

// NewRouter builds a gin router with the same route table as the server,
// wired against the test engine.
func NewRouter(e *Engine) *gin.Engine {
	gin.SetMode(gin.TestMode)

	// Photos stay inline without S3, same as the server default.
	services.InitPhotoService(nil)

	authController := controllers.NewAuthController(e.Identity, JWTSecret)
	userController := controllers.NewUserController(e.Identity, e.Audit)
	tenantController := controllers.NewTenantController(e.Identity, e.Tenants)
	requestController := controllers.NewRequestController(e.Identity, e.Requests, e.Tenants)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.POST("/requests", requestController.CreateRequest)
		v1.POST("/auth/login", authController.Login)

		authed := v1.Group("", middleware.EnsureValidToken(JWTSecret))
		{
			authed.POST("/auth/logout", authController.Logout)

			authed.POST("/users", userController.CreateUser)
			authed.GET("/users", userController.ListUsers)
			authed.PUT("/users/:id", userController.UpdateUser)
			authed.GET("/credential-logs", userController.GetCredentialLogs)
			authed.GET("/audit-logs", userController.GetAuditLogs)

			authed.POST("/tenants", tenantController.CreateTenant)
			authed.GET("/tenants", tenantController.ListTenants)
			authed.GET("/tenants/:id", tenantController.GetTenant)
			authed.PUT("/tenants/:id", tenantController.UpdateTenant)

			authed.GET("/requests", requestController.ListRequests)
			authed.GET("/requests/archived", requestController.ListArchivedRequests)
			authed.POST("/requests/clear-past", requestController.ClearPastRequests)
			authed.GET("/requests/:id", requestController.GetRequest)
			authed.DELETE("/requests/:id", requestController.DeleteRequest)
			authed.PATCH("/requests/:id/status", requestController.UpdateStatus)
			authed.PATCH("/requests/:id/reason", requestController.UpdateReason)
			authed.POST("/requests/:id/messages", requestController.AddMessage)
			authed.POST("/requests/:id/photos", requestController.AddPhoto)
			authed.DELETE("/requests/:id/photos/:index", requestController.RemovePhoto)
			authed.PATCH("/requests/:id/note", requestController.UpdateNote)
			authed.PATCH("/requests/:id/address", requestController.UpdateAddress)
			authed.PUT("/requests/:id/staff", requestController.UpdateAssignedStaff)
			authed.POST("/requests/:id/accept", requestController.AcceptJob)
			authed.GET("/requests/:id/invoice", requestController.GetInvoice)
		}
	}
	return router
}

// DoJSON performs a JSON request against the router and returns the
// recorded response. An empty token leaves the request unauthenticated.
func DoJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// DecodeResponse unmarshals a recorded JSON response body into dest.
func DecodeResponse(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

// LoginToken logs in through the API and returns the issued token.
func LoginToken(t *testing.T, router *gin.Engine, username, password, subdomain string) string {
	t.Helper()

	w := DoJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username":  username,
		"password":  password,
		"subdomain": subdomain,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Login for %q failed with status %d: %s", username, w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	DecodeResponse(t, w, &resp)
	if resp.Data.Token == "" {
		t.Fatalf("Login for %q returned no token", username)
	}
	return resp.Data.Token
}
