package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/erinpaul2002/careops-backend/handlers"
	"github.com/erinpaul2002/careops-backend/middleware"
)

// RegisterServiceRoutes registers service administration plus the per-service
// slot and rule queries.
func RegisterServiceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", hb.Admin.CreateServiceHandler)
		api.GET("", hb.Admin.ListServicesHandler)
		api.PATCH("/:id/active", hb.Admin.SetServiceActiveHandler)
		api.DELETE("/:id", hb.Admin.DeleteServiceHandler)
		api.GET("/:id/slots", hb.Availability.GetSlotsHandler)
		api.GET("/:id/rules", hb.Availability.ListRulesHandler)
	}
}

// RegisterAvailabilityRoutes registers rule management endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability/rules")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", hb.Availability.AddRuleHandler)
		api.PUT("/:id", hb.Availability.UpdateRuleHandler)
		api.DELETE("/:id", hb.Availability.DeleteRuleHandler)
	}
}

// RegisterBookingRoutes sets up the staff-facing booking endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", hb.Booking.CreateBookingHandler)
		api.GET("/:id", hb.Booking.GetBookingHandler)
		api.PATCH("/:id/reschedule", hb.Booking.RescheduleHandler)
		api.PATCH("/:id/status", hb.Booking.TransitionHandler)
		api.DELETE("/:id", hb.Booking.CancelBookingHandler)
	}
}

// RegisterPublicRoutes sets up the unauthenticated endpoints used by booking
// pages and form links. Both writes sit behind the idempotency middleware so
// retried submissions replay the stored response.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/public")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("/bookings", middleware.IdempotencyMiddleware(hb.Ledger), hb.Booking.CreateBookingHandler)
		api.POST("/forms/:id/submit", middleware.IdempotencyMiddleware(hb.Ledger), hb.Forms.SubmitFormHandler)
		api.GET("/forms/:id", hb.Forms.GetFormHandler)
	}
}

// RegisterWorkspaceRoutes sets up contact, inventory and event log endpoints.
func RegisterWorkspaceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("/contacts", hb.Admin.CreateContactHandler)
		api.POST("/inventory/items", hb.Admin.UpsertInventoryItemHandler)
		api.GET("/events", hb.Admin.ListEventsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.TenantHeader, middleware.IdempotencyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterServiceRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterPublicRoutes(r, hb)
	RegisterWorkspaceRoutes(r, hb)
}
