package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HapoSeiz/AlertShip/internal/models"
	"github.com/HapoSeiz/AlertShip/pkg/config"
	"github.com/HapoSeiz/AlertShip/pkg/logger"
	"github.com/HapoSeiz/AlertShip/pkg/middleware"
)

// idempotencyTTL covers the double-submit window on report creation.
const idempotencyTTL = 2 * time.Minute

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(middleware.InjectDB(h.db))

	// Browser pages; locale-prefixed forms resolve through the NoRoute
	// rewrite.
	h.registerPageRoutes(engine)

	r := engine.Group(config.GlobalConfig.APIPrefix)

	h.registerSystemRoutes(r)
	h.registerAuthRoutes(r)
	h.registerReportRoutes(r)
	h.registerLocationRoutes(r)
	h.registerDashboardRoutes(r)
}

func (h *Handlers) registerPageRoutes(engine *gin.Engine) {
	engine.GET("/", h.handleHomePage)
	engine.GET("/dashboard", h.requirePageLogin, h.handleDashboardPage)
	engine.GET("/report", h.requirePageLogin, h.handleReportPage)
}

func (h *Handlers) registerAuthRoutes(r *gin.RouterGroup) {
	auth := r.Group(config.GlobalConfig.AuthPrefix)
	{
		auth.POST("/signup", h.handleSignup)

		auth.POST("/login", h.handleLogin)

		auth.POST("/google", h.handleGoogleLogin)

		auth.GET("/verify", h.handleVerifyEmail)

		auth.POST("/resend-verification", h.handleResendVerification)

		auth.POST("/password-reset", h.handlePasswordResetRequest)

		auth.POST("/password-reset/confirm", h.handlePasswordResetConfirm)

		auth.GET("/logout", models.AuthRequired, h.handleLogout)

		auth.GET("/info", models.AuthRequired, h.handleUserInfo)

		auth.PUT("/update", models.AuthRequired, h.handleUserUpdate)
	}
}

func (h *Handlers) registerReportRoutes(r *gin.RouterGroup) {
	r.POST("/outageReports", middleware.Idempotency(idempotencyTTL), h.handleCreateReport)

	r.GET("/outageReports", h.handleListReports)

	r.GET("/latest-reports", h.handleLatestReports)

	r.GET("/events", h.handleEvents)
}

func (h *Handlers) registerLocationRoutes(r *gin.RouterGroup) {
	location := r.Group("location")

	// The places provider bills per call; throttle per client IP.
	if limit, err := middleware.RateLimit(config.GlobalConfig.PlacesRate); err == nil {
		location.Use(limit)
	} else {
		logger.Warn("places rate limit disabled", zap.Error(err))
	}
	{
		location.POST("/drafts", h.handleNewDraft)

		location.GET("/drafts/:id", h.handleGetDraft)

		location.POST("/drafts/:id/search", h.handleDraftSearch)

		location.POST("/drafts/:id/select", h.handleDraftSelect)

		location.POST("/drafts/:id/browser", h.handleDraftBrowserLocation)

		location.POST("/drafts/:id/clear", h.handleDraftClear)

		location.DELETE("/drafts/:id", h.handleDraftDiscard)
	}
}

func (h *Handlers) registerDashboardRoutes(r *gin.RouterGroup) {
	dashboard := r.Group("dashboard")
	dashboard.Use(models.AuthRequired)
	{
		dashboard.GET("/locations", h.handleListSavedLocations)

		dashboard.POST("/locations", h.handleCreateSavedLocation)

		dashboard.DELETE("/locations/:id", h.handleDeleteSavedLocation)

		dashboard.GET("/subscriptions", h.handleListSubscriptions)

		dashboard.POST("/subscriptions", h.handleCreateSubscription)

		dashboard.DELETE("/subscriptions/:id", h.handleDeleteSubscription)
	}
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.handleHealthCheck)
	}
}
