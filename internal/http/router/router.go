package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/hebammen-backend/internal/config"
	"github.com/ignatzorin/hebammen-backend/internal/domain/valueobject"
	"github.com/ignatzorin/hebammen-backend/internal/http/middleware"
	"github.com/ignatzorin/hebammen-backend/internal/interface/http/handler"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth         *handler.AuthHandler
	Booking      *handler.BookingHandler
	Dispute      *handler.DisputeHandler
	Profile      *handler.ProfileHandler
	Midwife      *handler.MidwifeHandler
	Availability *handler.AvailabilityHandler
	Billing      *handler.BillingHandler
	Webhook      *handler.WebhookHandler
	Calendar     *handler.CalendarHandler
	Notification *handler.NotificationHandler
	Admin        *handler.AdminHandler
	WS           *handler.WSHandler
	Health       *handler.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.AccessTokenParser) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	// Webhook и календарь доступны без JWT: подпись и токен проверяются в обработчиках.
	api.POST("/webhooks/stripe", h.Webhook.Stripe)
	api.GET("/calendar/:token", h.Calendar.Feed)

	api.POST("/internal/update-plan", middleware.InternalSecret(cfg.InternalAPISecret), h.Billing.UpdatePlan)

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	midwives := api.Group("/midwives")
	{
		midwives.GET("/search", h.Midwife.Search)
		midwives.GET("/:id", middleware.UUIDValidator("id"), h.Midwife.Get)
		midwives.GET("/:id/availability", middleware.UUIDValidator("id"), h.Availability.ListForMidwife)
	}

	api.GET("/ws", h.WS.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	{
		protected.GET("/auth/sessions", h.Auth.ListSessions)
		protected.DELETE("/auth/sessions/:id", middleware.UUIDValidator("id"), h.Auth.DeleteSession)

		bookings := protected.Group("/bookings")
		{
			bookings.POST("", middleware.UserRateLimitMiddleware(cfg.BookingRateLimit, cfg.RateLimitPeriod), h.Booking.CreateBooking)
			bookings.GET("", h.Booking.ListBookings)
			bookings.GET("/stats", h.Booking.Stats)
			bookings.GET("/:id", middleware.UUIDValidator("id"), h.Booking.GetBooking)
			bookings.PATCH("/:id/status", middleware.UUIDValidator("id"), h.Booking.UpdateStatus)
			bookings.GET("/:id/contact", middleware.UUIDValidator("id"), h.Booking.Contact)
			bookings.POST("/:id/checkout", middleware.UUIDValidator("id"), h.Booking.Checkout)
			bookings.POST("/:id/disputes", middleware.UUIDValidator("id"), h.Dispute.Open)
		}

		protected.GET("/disputes", h.Dispute.ListMine)

		profileGroup := protected.Group("/profile")
		{
			profileGroup.GET("", h.Profile.GetMe)
			profileGroup.PUT("", h.Profile.UpdateMe)
			profileGroup.GET("/completion", h.Profile.Completion)
			profileGroup.POST("/photo", middleware.RequireRole(valueobject.RoleMidwife), h.Profile.UploadPhoto)
			profileGroup.POST("/calendar-token", middleware.RequireRole(valueobject.RoleMidwife), h.Profile.RotateCalendarToken)
		}

		availability := protected.Group("/availability")
		availability.Use(middleware.RequireRole(valueobject.RoleMidwife))
		{
			availability.GET("", h.Availability.ListMine)
			availability.POST("", h.Availability.Add)
			availability.DELETE("/:id", middleware.UUIDValidator("id"), h.Availability.Delete)
		}

		billing := protected.Group("/billing")
		{
			billing.POST("/subscribe", middleware.RequireRole(valueobject.RoleMidwife), h.Billing.Subscribe)
			billing.POST("/portal", h.Billing.Portal)
			billing.GET("/subscription", h.Billing.Subscription)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.GET("/unread/count", h.Notification.CountUnread)
			notifications.PUT("/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
			notifications.PUT("/read-all", h.Notification.MarkAllAsRead)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRole(valueobject.RoleAdmin))
		{
			admin.GET("/overview", h.Admin.Overview)
			admin.GET("/disputes", h.Dispute.ListAll)
			admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), h.Dispute.Resolve)
			admin.PUT("/profiles/:id/verification", middleware.UUIDValidator("id"), h.Midwife.SetVerification)
		}
	}

	return r
}
