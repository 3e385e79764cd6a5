package main

import (
	"database/sql"
	"net/http"
	"time"

	"photohire-backend/internal/auth"
	"photohire-backend/internal/dashboard"
	"photohire-backend/internal/httpapi"
	"photohire-backend/internal/realtime"
	"photohire-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	handlers    httpapi.Handlers
	db          *sql.DB
	authMW      gin.HandlerFunc
	rateLimitMW gin.HandlerFunc
	realtimeWS  *realtime.Handler
	dashboardWS *dashboard.Handler
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	h := deps.handlers

	// public
	r.GET("/healthz", func(c *gin.Context) {
		if err := utils.HealthCheck(c.Request.Context(), deps.db, 2*time.Second); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/google", h.GoogleLogin)
		authGroup.POST("/refresh", h.Refresh)
	}

	// Websockets. The realtime socket authenticates in-band via
	// register_user; the dashboard socket is reached through internal
	// tooling only.
	r.GET("/ws/realtime", deps.realtimeWS.Serve)
	r.GET("/ws/dashboard/:client_type", deps.dashboardWS.Serve)

	// protected API group. Policy order matters: active (400) before
	// admin (403) before rate limit (429).
	v1 := r.Group("/v1")
	v1.Use(deps.authMW, auth.RequireActiveAccount())
	{
		api := v1.Group("")
		api.Use(deps.rateLimitMW)
		{
			api.GET("/me", h.Me)

			api.GET("/photographers", h.ListPhotographers)
			api.GET("/photographers/:id", h.GetPhotographer)
			api.POST("/location/update", h.UpdateLocation)

			api.POST("/bookings", h.CreateBooking)
			api.GET("/bookings/:id", h.GetBooking)
			api.PATCH("/bookings/:id/status", h.UpdateBookingStatus)

			api.POST("/chat/send", h.SendMessage)
			api.GET("/chat/:peer_id", h.ChatHistory)
		}

		// ADMIN routes
		admin := v1.Group("/dashboard")
		admin.Use(auth.RequireAdmin(), deps.rateLimitMW)
		{
			admin.GET("/stats", h.DashboardStats)
			admin.GET("/bookings/metrics", h.BookingMetrics)
			admin.GET("/photographers/metrics", h.PhotographerMetrics)
			admin.GET("/users/activity", h.UserActivity)
			admin.GET("/revenue/chart", h.RevenueChart)
		}
	}
}
