package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/paperdesk-backend/internal/config"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/http/middleware"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/handler"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
)

// Handlers - все обработчики API.
type Handlers struct {
	Health       *handler.HealthHandler
	Profile      *handler.ProfileHandler
	Order        *handler.OrderHandler
	Bid          *handler.BidHandler
	Work         *handler.WorkHandler
	Payment      *handler.PaymentHandler
	Message      *handler.MessageHandler
	Dispute      *handler.DisputeHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
}

func SetupRouter(
	cfg *config.Config,
	h Handlers,
	tokenManager *service.TokenManager,
	profiles middleware.ProfileFinder,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")

	public := api.Group("")
	public.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		public.GET("/pricing/quote", h.Order.Quote)
		public.GET("/payments/rails", h.Payment.ListRails)
	}

	// WebSocket авторизуется токеном из query.
	api.GET("/ws", h.WS.Handle)

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(tokenManager))
	authed.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))

	// Профиль создаётся до того, как его можно загрузить.
	authed.POST("/profile", h.Profile.EnsureProfile)

	protected := authed.Group("")
	protected.Use(middleware.RequireProfile(profiles))
	{
		protected.GET("/profile", h.Profile.GetMe)
		protected.PUT("/profile", h.Profile.UpdateMe)
		protected.GET("/writers", h.Profile.ListWriters)

		orders := protected.Group("/orders")
		{
			orders.GET("", h.Order.ListOrders)
			orders.GET("/:id", middleware.UUIDValidator("id"), h.Order.GetOrder)
			orders.GET("/:id/history", middleware.UUIDValidator("id"), h.Order.GetHistory)
			orders.POST("/:id/cancel", middleware.UUIDValidator("id"), h.Order.CancelOrder)
			orders.GET("/:id/files", middleware.UUIDValidator("id"), h.Order.DownloadFile)
			orders.GET("/:id/submissions", middleware.UUIDValidator("id"), h.Work.ListSubmissions)
			orders.GET("/:id/messages", middleware.UUIDValidator("id"), h.Message.ListMessages)
			orders.POST("/:id/messages", middleware.UUIDValidator("id"), h.Message.SendMessage)
			orders.POST("/:id/disputes", middleware.UUIDValidator("id"), h.Dispute.OpenDispute)
		}

		bids := protected.Group("/bids")
		{
			bids.GET("", h.Bid.ListBids)
			bids.POST("/:id/accept", middleware.UUIDValidator("id"), h.Bid.AcceptBid)
			bids.POST("/:id/reject", middleware.UUIDValidator("id"), h.Bid.RejectBid)
		}

		protected.POST("/submissions/:id/review", middleware.UUIDValidator("id"), h.Work.ReviewSubmission)
		protected.GET("/invoices", h.Payment.ListInvoices)

		messages := protected.Group("/messages")
		{
			messages.GET("/unread-count", h.Message.UnreadCount)
			messages.POST("/:id/read", middleware.UUIDValidator("id"), h.Message.MarkRead)
		}

		disputes := protected.Group("/disputes")
		{
			disputes.GET("", h.Dispute.ListDisputes)
			disputes.POST("/:id/close", middleware.UUIDValidator("id"), h.Dispute.CloseDispute)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", h.Notification.ListNotifications)
			notifications.GET("/unread-count", h.Notification.UnreadCount)
			notifications.POST("/read-all", h.Notification.MarkAllAsRead)
			notifications.POST("/:id/read", middleware.UUIDValidator("id"), h.Notification.MarkAsRead)
		}
	}

	client := protected.Group("/client")
	client.Use(middleware.RequireRole(valueobject.RoleClient))
	{
		client.POST("/orders", h.Order.CreateOrder)
		client.POST("/orders/:id/attachments", middleware.UUIDValidator("id"), h.Order.AddAttachments)
		client.POST("/orders/:id/payments", middleware.UUIDValidator("id"), h.Payment.SubmitPayment)
	}

	writer := protected.Group("/writer")
	writer.Use(middleware.RequireRole(valueobject.RoleWriter))
	{
		writer.PUT("/profile", h.Profile.UpsertWriterProfile)
		writer.POST("/orders/:id/bids", middleware.UUIDValidator("id"), h.Bid.CreateBid)
		writer.POST("/bids/:id/withdraw", middleware.UUIDValidator("id"), h.Bid.WithdrawBid)
		writer.GET("/assignments", h.Work.ListMyAssignments)
		writer.POST("/assignments/:id/start", middleware.UUIDValidator("id"), h.Work.StartWork)
		writer.POST("/assignments/:id/submissions", middleware.UUIDValidator("id"), h.Work.SubmitWork)
	}

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(valueobject.RoleAdmin))
	{
		admin.GET("/profiles", h.Profile.ListProfiles)
		admin.PUT("/profiles/:id/status", middleware.UUIDValidator("id"), h.Profile.SetProfileStatus)
		admin.PUT("/writers/:id/verification", middleware.UUIDValidator("id"), h.Profile.VerifyWriter)
		admin.POST("/orders/:id/status", middleware.UUIDValidator("id"), h.Order.OverrideStatus)
		admin.POST("/invoices/:id/confirm", middleware.UUIDValidator("id"), h.Payment.ConfirmInvoice)
		admin.POST("/invoices/:id/cancel", middleware.UUIDValidator("id"), h.Payment.CancelInvoice)
		admin.POST("/invoices/:id/refund", middleware.UUIDValidator("id"), h.Payment.RefundInvoice)
		admin.POST("/disputes/:id/review", middleware.UUIDValidator("id"), h.Dispute.ReviewDispute)
		admin.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), h.Dispute.ResolveDispute)
	}

	return r
}
