package router

import (
	"github.com/gin-gonic/gin"

	"freightsnap/internal/config"
	"freightsnap/internal/handler"
	"freightsnap/internal/middleware"
	"freightsnap/internal/session"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	manager *session.Manager,
	sessionH *handler.SessionHandler,
	fileH *handler.FileHandler,
	exportH *handler.ExportHandler,
	licenseH *handler.LicenseHandler,
	usageH *handler.UsageHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Session creation is the only unauthenticated data-plane route.
	v1.POST("/session", sessionH.Create)

	// Everything else requires a live session.
	sess := v1.Group("")
	sess.Use(middleware.Session(manager))

	sess.GET("/session/data", sessionH.Data)
	sess.PATCH("/session/rows/:index", sessionH.EditRow)
	sess.DELETE("/session/rows/:index", sessionH.DeleteRow)
	sess.POST("/session/clear", sessionH.Clear)
	sess.DELETE("/session", sessionH.End)
	sess.GET("/session/export", exportH.Export)

	sess.POST("/files/upload", fileH.Upload)
	sess.DELETE("/files/:id", fileH.Delete)

	sess.POST("/license/activate", licenseH.Activate)
	sess.GET("/usage", usageH.Usage)

	return r
}
