// internal/app/router.go
package app

import (
	authHandler "cobramax-service/internal/handlers/auth"
	chatbotHandler "cobramax-service/internal/handlers/chatbot"
	notifyHandler "cobramax-service/internal/handlers/notification"
	paymentHandler "cobramax-service/internal/handlers/payment"
	ticketHandler "cobramax-service/internal/handlers/ticket"
	"cobramax-service/internal/middleware"
	"cobramax-service/internal/pkg/authz"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	ChatbotHandler *chatbotHandler.ChatbotHandler
	PaymentHandler *paymentHandler.PaymentHandler
	TicketHandler  *ticketHandler.TicketHandler
	NotifHandler   *notifyHandler.NotificationHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Chatbot ====================
	chatbot := api.Group("/chatbot")
	chatbot.Use(h.AuthMiddleware.Auth())
	{
		chatbot.POST("/send", h.AuthMiddleware.RequireAction(authz.ActionChatSend), h.ChatbotHandler.SendMessage)
		chatbot.GET("/history", h.AuthMiddleware.RequireAction(authz.ActionChatHistory), h.ChatbotHandler.GetHistory)
		chatbot.GET("/conversations/:id/messages", h.AuthMiddleware.RequireAction(authz.ActionChatHistory), h.ChatbotHandler.ConversationMessages)
		chatbot.POST("/tickets", h.AuthMiddleware.RequireAction(authz.ActionChatTicket), h.ChatbotHandler.CreateTicket)
		chatbot.POST("/search", h.AuthMiddleware.RequireAction(authz.ActionChatSearch), h.ChatbotHandler.Search)
		chatbot.GET("/faqs/popular", h.AuthMiddleware.RequireAction(authz.ActionChatSearch), h.ChatbotHandler.PopularFAQs)
	}

	// ==================== Customer Self Service ====================
	account := api.Group("/account")
	account.Use(h.AuthMiddleware.Auth())
	{
		account.GET("", h.AuthMiddleware.RequireAction(authz.ActionAccountView), h.PaymentHandler.Account)
	}

	// ==================== Payments ====================
	payments := api.Group("/payments")
	payments.Use(h.AuthMiddleware.Auth())
	{
		payments.POST("", h.AuthMiddleware.RequireAction(authz.ActionPaymentCreate), h.PaymentHandler.Create)
		payments.GET("/:id", h.AuthMiddleware.RequireAction(authz.ActionPaymentCreate), h.PaymentHandler.Get)
		payments.PUT("/:id/complete", h.AuthMiddleware.RequireAction(authz.ActionPaymentValidate), h.PaymentHandler.Complete)
		payments.PUT("/:id/reject", h.AuthMiddleware.RequireAction(authz.ActionPaymentValidate), h.PaymentHandler.Reject)
		payments.PUT("/:id/revert", h.AuthMiddleware.RequireAction(authz.ActionPaymentRevert), h.PaymentHandler.Revert)
	}

	// ==================== Customers ====================
	customers := api.Group("/customers")
	customers.Use(h.AuthMiddleware.Auth())
	{
		customers.GET("/:id/events", h.AuthMiddleware.RequireAction(authz.ActionEventsView), h.PaymentHandler.Events)
		customers.GET("/:id/payments", h.AuthMiddleware.RequireAction(authz.ActionPaymentCreate), h.PaymentHandler.ListByCustomer)
		customers.GET("/:id/notifications", h.AuthMiddleware.RequireAction(authz.ActionNotifyDispatch), h.NotifHandler.ListByCustomer)
	}

	// ==================== Tickets ====================
	tickets := api.Group("/tickets")
	tickets.Use(h.AuthMiddleware.Auth())
	{
		tickets.GET("", h.AuthMiddleware.RequireAction(authz.ActionTicketManage), h.TicketHandler.List)
		tickets.PUT("/:id/status", h.AuthMiddleware.RequireAction(authz.ActionTicketManage), h.TicketHandler.UpdateStatus)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.POST("/flush", h.AuthMiddleware.RequireAction(authz.ActionNotifyDispatch), h.NotifHandler.Flush)
	}
}
