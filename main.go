package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/roadcall/roadcall-api/config"
	"github.com/roadcall/roadcall-api/controllers"
	"github.com/roadcall/roadcall-api/jobs"
	"github.com/roadcall/roadcall-api/logging"
	"github.com/roadcall/roadcall-api/middleware"
	"github.com/roadcall/roadcall-api/services"
	"github.com/roadcall/roadcall-api/store"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.GoEnv)
	logger.Info().Str("backend", cfg.StoreBackend).Msg("Starting Roadcall API server")

	// Select the key-value store backing
	kv, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open store")
	}

	// Photo offload is optional; without an S3 bucket photos stay inline
	var s3Service services.S3Interface
	if cfg.AWSS3Bucket != "" {
		s3Service, err = services.InitS3Service()
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize S3 service")
		}
	}
	services.InitPhotoService(s3Service)

	// Wire the engine
	locks := store.NewKeyLocker()
	auditService := services.NewAuditService(kv, locks, logger)
	tenantService := services.NewTenantService(kv, locks, logger)
	identityService := services.NewIdentityService(kv, locks, auditService, tenantService, services.RootCredentials{
		Username: cfg.RootAdminUsername,
		Password: cfg.RootAdminPassword,
	}, logger)
	notifier := services.NewLogNotifier(logger)
	requestService := services.NewRequestService(kv, locks, tenantService, notifier, logger)

	authController := controllers.NewAuthController(identityService, cfg.JWTSecret)
	userController := controllers.NewUserController(identityService, auditService)
	tenantController := controllers.NewTenantController(identityService, tenantService)
	requestController := controllers.NewRequestController(identityService, requestService, tenantService)

	// Initialize Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(cors.Default())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Store status endpoint
		v1.GET("/store/status", storeStatus(cfg, kv))

		// Public intake and login
		v1.POST("/requests", requestController.CreateRequest)
		v1.POST("/auth/login", authController.Login)

		// Everything below requires a valid token
		authed := v1.Group("", middleware.EnsureValidToken(cfg.JWTSecret))
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

	// Start the recurring jobs
	scheduler := jobs.NewScheduler(tenantService, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer scheduler.Stop()

	// Start server
	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("Server is running")
	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// openStore selects the configured key-value backing.
func openStore(cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "redis":
		return store.NewRedisStore(context.Background(), store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
	case "database":
		if err := config.ConnectDatabase(cfg); err != nil {
			return nil, err
		}
		return store.NewGormStore(config.GetDB(), logger)
	default:
		return store.NewMemoryStore(logger), nil
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Roadcall API is running",
	})
}

// storeStatus reports the store backend kind and reachability
func storeStatus(cfg *config.Config, kv store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// A probe read verifies the backing is reachable
		var probe []string
		if _, err := kv.Get(c.Request.Context(), store.KeyTenants, &probe); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STORE_ERROR",
					"message": "Store is unreachable",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Store connected",
			"backend": cfg.StoreBackend,
		})
	}
}
