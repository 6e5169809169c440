package router

import (
	"log/slog"
	"net/http"
	"time"

	"rentexpress/internal/access"
	"rentexpress/internal/config"
	"rentexpress/internal/handler"
	"rentexpress/internal/middleware"
	"rentexpress/internal/models"
	"rentexpress/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the REST API over the given services. Every protected
// route resolves its actor through verifier.
func SetupRouter(cfg *config.Config, svc *service.Services, verifier access.Verifier, logger *slog.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipQueryString: true}), gin.Recovery())

	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authHandler := handler.NewAuthHandler(svc.Accounts, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL(), cfg.JWT.CookieSecure)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/check-username", authHandler.CheckUsername)
	api.GET("/auth/me", middleware.OptionalActor(verifier), authHandler.Me)

	protected := api.Group("")
	protected.Use(
		middleware.RequireActor(verifier),
		middleware.Audit(svc.Admin, logger),
	)
	// Download links may carry the token in the query string.
	downloads := api.Group("")
	downloads.Use(
		middleware.RequireActorWithQueryToken(verifier),
		middleware.Audit(svc.Admin, logger),
	)

	landlord := middleware.RequireRole(models.RoleLandlord)
	tenant := middleware.RequireRole(models.RoleTenant)
	member := middleware.RequireRole(models.RoleLandlord, models.RoleTenant)
	admin := middleware.RequireRole(models.RoleAdmin)

	profileHandler := handler.NewProfileHandler(svc.Accounts)
	protected.GET("/profile", profileHandler.Get)
	protected.PATCH("/profile", profileHandler.Update)
	protected.POST("/profile/password", profileHandler.ChangePassword)

	propertyHandler := handler.NewPropertyHandler(svc.Properties)
	properties := protected.Group("/properties", landlord)
	properties.GET("", propertyHandler.List)
	properties.POST("", propertyHandler.Create)
	properties.GET("/:id", propertyHandler.Get)
	properties.PATCH("/:id", propertyHandler.Update)
	properties.DELETE("/:id", propertyHandler.Delete)

	leaseHandler := handler.NewLeaseHandler(svc.Leases)
	leases := protected.Group("/leases")
	leases.GET("", member, leaseHandler.List)
	leases.POST("", landlord, leaseHandler.Create)
	leases.PATCH("/autopay", tenant, leaseHandler.SetAutopay)
	leases.GET("/:id", member, leaseHandler.Get)
	leases.PATCH("/:id/status", landlord, leaseHandler.UpdateStatus)

	paymentHandler := handler.NewPaymentHandler(svc.Payments)
	payments := protected.Group("/payments")
	payments.GET("", member, paymentHandler.List)
	payments.POST("", tenant, paymentHandler.Create)
	payments.GET("/:id", member, paymentHandler.Get)
	payments.GET("/:id/receipt", tenant, paymentHandler.Receipt)

	maintenanceHandler := handler.NewMaintenanceHandler(svc.Maintenance)
	maintenance := protected.Group("/maintenance")
	maintenance.GET("", member, maintenanceHandler.List)
	maintenance.POST("", tenant, maintenanceHandler.Create)
	maintenance.PATCH("/:id/status", landlord, maintenanceHandler.UpdateStatus)

	documentHandler := handler.NewDocumentHandler(svc.Documents)
	documents := protected.Group("/documents", tenant)
	documents.GET("", documentHandler.List)
	documents.POST("", documentHandler.Create)
	downloads.GET("/documents/:id/download", tenant, documentHandler.Download)

	chargeHandler := handler.NewChargeHandler(svc.Charges)
	charges := protected.Group("/charges")
	charges.GET("", member, chargeHandler.List)
	charges.POST("", landlord, chargeHandler.Create)
	charges.GET("/:id", member, chargeHandler.Get)
	charges.PATCH("/:id", landlord, chargeHandler.Update)
	charges.DELETE("/:id", landlord, chargeHandler.Delete)
	charges.POST("/:id/send-notification", landlord, chargeHandler.SendNotification)

	exportHandler := handler.NewExportHandler(svc.Exports)
	exports := protected.Group("/exports", landlord)
	exports.GET("/ledger.csv", exportHandler.ExportCSV)
	exports.GET("/ledger.xlsx", exportHandler.ExportXLSX)

	adminGroup := protected.Group("/admin", admin)
	userHandler := handler.NewUserHandler(svc.Admin)
	adminGroup.GET("/users", userHandler.ListUsers)
	logHandler := handler.NewAuditLogHandler(svc.Admin)
	adminGroup.GET("/audit-logs", logHandler.ListLogs)

	backupHandler := handler.NewBackupHandler(svc.Admin)
	adminGroup.POST("/backups", backupHandler.CreateBackup)
	adminGroup.GET("/backups", backupHandler.ListBackups)
	downloads.GET("/admin/backups/:id/download", admin, backupHandler.DownloadBackup)
	adminGroup.GET("/backups/:id/verify", backupHandler.VerifyBackup)
	adminGroup.DELETE("/backups/:id", backupHandler.DeleteBackup)

	return r
}
