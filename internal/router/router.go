package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"coverscan/internal/domain"
	"coverscan/internal/handler"
	"coverscan/internal/middleware"
	"coverscan/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	fileH *handler.FileHandler,
	submissionH *handler.SubmissionHandler,
	statsH *handler.StatsHandler,
	referenceH *handler.ReferenceHandler,
	tenantH *handler.TenantHandler,
	userH *handler.UserHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation (generated by swag)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT with tenant context
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))
	protected.Use(middleware.TenantGuard())

	protected.GET("/auth/me", authH.Me)

	// File routes
	files := protected.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)
	files.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), fileH.Delete)

	// Submission lifecycle
	subs := protected.Group("/submissions")
	subs.POST("", submissionH.Create)
	subs.GET("", submissionH.List)
	subs.GET("/export/csv", submissionH.ExportCSV)
	subs.GET("/:id", submissionH.GetByID)
	subs.POST("/:id/retry", submissionH.Retry)
	subs.PUT("/:id/record", submissionH.UpdateRecord)
	subs.POST("/:id/entities", submissionH.AddEntity)
	subs.PATCH("/:id/entities/:collection/:entityID", submissionH.EditEntity)
	subs.DELETE("/:id/entities/:collection/:entityID", submissionH.RemoveEntity)
	subs.POST("/:id/entities/:collection/:entityID/duplicate", submissionH.DuplicateEntity)
	subs.GET("/:id/entities/:collection/:entityID/dependencies", submissionH.GetDependencies)
	subs.GET("/:id/consistency", submissionH.CheckConsistency)
	subs.POST("/:id/review", submissionH.UpdateReview)
	subs.POST("/:id/submit", submissionH.Submit)
	subs.GET("/:id/audit", submissionH.ListAudit)

	// Aggregate counts
	protected.GET("/stats", statsH.GetStats)

	// Reference data for the record editor
	protected.GET("/reference/vehicle-makes", referenceH.SearchVehicleMakes)

	// User management (tenant-scoped)
	users := protected.Group("/users")
	users.POST("", middleware.RequireRole(domain.RoleAdmin), userH.Create)
	users.GET("", middleware.RequireRole(domain.RoleAdmin), userH.List)
	users.GET("/:id", userH.GetByID)
	users.PUT("/:id", userH.Update)
	users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), userH.Delete)

	// Admin routes - tenant management
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authSvc))
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/tenants", tenantH.Create)
	admin.GET("/tenants", tenantH.List)
	admin.GET("/tenants/:id", tenantH.GetByID)
	admin.PUT("/tenants/:id", tenantH.Update)
	admin.DELETE("/tenants/:id", tenantH.Delete)

	return r
}
