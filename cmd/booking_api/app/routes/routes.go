package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kedar94c/whatsapp-crm-backend/cmd/booking_api/app/internal/handler"
	"github.com/kedar94c/whatsapp-crm-backend/middlewares"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/booking"
	"github.com/kedar94c/whatsapp-crm-backend/pkg/delivery"
)

// Businesses wires registration (public) and the profile/settings routes
// (authenticated, settings owner-only).
func Businesses(public, authed *gin.RouterGroup, db *gorm.DB, rdb *redis.Client, log *zap.Logger) {
	h := handler.NewBusinessHandler(db, rdb)

	public.POST("/businesses", h.Register)
	authed.GET("/business", h.GetProfile)
	authed.PUT("/business/settings", middlewares.RequireOwner(), h.UpdateSettings)
}

func Catalog(authed *gin.RouterGroup, db *gorm.DB, log *zap.Logger) {
	h := handler.NewCatalogHandler(db)

	services := authed.Group("/services")
	services.GET("", h.ListServices)
	services.POST("", middlewares.RequireOwner(), h.CreateService)
	services.PUT("/:id", middlewares.RequireOwner(), h.UpdateService)
	services.DELETE("/:id", middlewares.RequireOwner(), h.DeactivateService)

	combos := authed.Group("/combos")
	combos.GET("", h.ListCombos)
	combos.POST("", middlewares.RequireOwner(), h.CreateCombo)
	combos.DELETE("/:id", middlewares.RequireOwner(), h.DeactivateCombo)
}

func Customers(authed *gin.RouterGroup, db *gorm.DB, dispatcher *delivery.Dispatcher, log *zap.Logger) {
	h := handler.NewCustomerHandler(db, dispatcher)

	customers := authed.Group("/customers")
	customers.GET("", h.List)
	customers.GET("/:id", h.Get)
	customers.GET("/:id/messages", h.ListMessages)
	customers.POST("/:id/messages", h.SendMessage)
}

func Appointments(authed *gin.RouterGroup, svc *booking.Service, log *zap.Logger, tracer trace.Tracer) {
	h := handler.NewAppointmentHandler(svc, log, tracer)

	appts := authed.Group("/appointments")
	appts.POST("", h.Book)
	appts.GET("", h.ListUpcoming)
	appts.GET("/history", h.History)
	appts.GET("/availability", h.Availability)
	appts.GET("/:id", h.Get)
	appts.PUT("/:id", h.Reschedule)
	appts.PATCH("/:id/status", h.UpdateStatus)
	appts.DELETE("/:id", h.Cancel)
}

// Webhook registers the provider callback outside the authenticated group;
// Twilio cannot send an API key.
func Webhook(router *gin.Engine, db *gorm.DB, dispatcher *delivery.Dispatcher, limiter *middlewares.RateLimiter, log *zap.Logger) {
	h := handler.NewWebhookHandler(db, dispatcher, log)
	router.POST("/webhook/whatsapp", limiter.WebhookMiddleware(), h.Receive)
}
