package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aman-gurjar-dev/TechnoHack/internal/app/controllers"
	"github.com/aman-gurjar-dev/TechnoHack/internal/app/models"
	"github.com/aman-gurjar-dev/TechnoHack/internal/middleware"
)

// Handlers bundles what the route table dispatches to.
type Handlers struct {
	Auth         *controllers.AuthController
	Club         *controllers.ClubController
	Event        *controllers.EventController
	Announcement *controllers.AnnouncementController
	Health       *controllers.HealthController

	AuthMiddleware *middleware.AuthMiddleware
	// AuthLimiter throttles login and registration per client IP. Nil disables it.
	AuthLimiter *middleware.IPRateLimiter
	// MaxBodyBytes caps club and event create/update bodies. Zero disables it.
	MaxBodyBytes int64
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers) {
	router.GET("/ping", h.Health.Ping)
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.NoRoute(middleware.NoRoute)

	// API version group
	v1 := router.Group("/api/v1")

	authenticate := h.AuthMiddleware.Authenticate()
	adminOnly := h.AuthMiddleware.RequireRole(models.RoleAdmin)

	uploads := []gin.HandlerFunc{authenticate, adminOnly}
	if h.MaxBodyBytes > 0 {
		uploads = append(uploads, middleware.LimitBody(h.MaxBodyBytes))
	}

	// --- Auth routes ---
	auth := v1.Group("/auth")
	{
		credentials := auth.Group("")
		if h.AuthLimiter != nil {
			credentials.Use(middleware.RateLimit(h.AuthLimiter))
		}
		credentials.POST("/register", h.Auth.Register)
		credentials.POST("/login", h.Auth.Login)

		auth.GET("/logout", h.Auth.Logout)
		auth.GET("/me", authenticate, h.Auth.Me)
		auth.PUT("/me", authenticate, h.Auth.UpdateMe)
	}

	// --- Club routes ---
	clubs := v1.Group("/clubs")
	{
		clubs.GET("", h.Club.ListClubs)
		clubs.GET("/:id", h.Club.GetClub)

		members := clubs.Group("", authenticate)
		members.POST("/:id/join", h.Club.JoinClub)
		members.POST("/:id/leave", h.Club.LeaveClub)

		admin := clubs.Group("", authenticate, adminOnly)
		admin.DELETE("/:id", h.Club.DeleteClub)

		upload := clubs.Group("", uploads...)
		upload.POST("", h.Club.CreateClub)
		upload.PUT("/:id", h.Club.UpdateClub)
	}

	// --- Event routes ---
	events := v1.Group("/events")
	{
		events.GET("", h.Event.ListEvents)
		events.GET("/:id", h.Event.GetEvent)

		events.POST("/:id/register", authenticate, h.Event.RegisterForEvent)

		admin := events.Group("", authenticate, adminOnly)
		admin.DELETE("/:id", h.Event.DeleteEvent)
		admin.GET("/:id/registrations", h.Event.ListRegistrations)

		upload := events.Group("", uploads...)
		upload.POST("", h.Event.CreateEvent)
		upload.PUT("/:id", h.Event.UpdateEvent)
	}

	// --- Announcement routes ---
	announcements := v1.Group("/announcements")
	{
		optional := announcements.Group("", h.AuthMiddleware.OptionalAuth())
		optional.GET("", h.Announcement.ListAnnouncements)
		optional.GET("/:id", h.Announcement.GetAnnouncement)

		// Ownership is checked by the service, so these only need identity.
		owned := announcements.Group("", authenticate)
		owned.PUT("/:id", h.Announcement.UpdateAnnouncement)
		owned.DELETE("/:id", h.Announcement.DeleteAnnouncement)

		admin := announcements.Group("", authenticate, adminOnly)
		admin.POST("", h.Announcement.CreateAnnouncement)
		admin.POST("/archive-expired", h.Announcement.ArchiveExpired)
		admin.PATCH("/:id/archive", h.Announcement.ArchiveAnnouncement)
		admin.PATCH("/:id/publish", h.Announcement.PublishAnnouncement)
	}
}
