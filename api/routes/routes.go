package routes

import (
	"net/http"

	"geminibot/api/handlers"
	"geminibot/api/middleware"
	"geminibot/internal/chatbot"
	"geminibot/internal/conversation"
	"geminibot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers every endpoint. An empty webhookSecret leaves the
// webhook unrouted and a nil metricsHandler leaves /metrics unrouted.
func SetupRoutes(router *gin.Engine, logger *logger.Logger, chatbotService chatbot.ChatbotService, conversations conversation.ConversationService, webhookSecret string, metricsHandler http.Handler) {
	router.Use(middleware.RequestLogging(logger))
	router.Use(gin.Recovery())

	healthHandler := handlers.NewHealthHandler(chatbotService, conversations, logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Check)
		if webhookSecret != "" {
			webhookHandler := handlers.NewWebhookHandler(chatbotService, webhookSecret, logger)
			v1.POST("/telegram/webhook/:secret", webhookHandler.HandleTelegramWebhook)
		}
	}

	router.GET("/health", healthHandler.Check)

	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}
}
