package handlers

import (
	"net/http"
	"time"

	"geminibot/internal/chatbot"
	"geminibot/internal/conversation"
	"geminibot/pkg/logger"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	chatbotService chatbot.ChatbotService
	conversations  conversation.ConversationService
	logger         *logger.Logger
}

func NewHealthHandler(chatbotService chatbot.ChatbotService, conversations conversation.ConversationService, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		chatbotService: chatbotService,
		conversations:  conversations,
		logger:         logger,
	}
}

// Check reports liveness. Sessions live in memory, so their count is the
// only state worth showing.
func (h *HealthHandler) Check(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "geminibot",
	}
	if h.chatbotService != nil {
		response["bot"] = h.chatbotService.BotUsername()
	}
	if h.conversations != nil {
		response["sessions"] = h.conversations.Count()
		response["default_model"] = h.conversations.DefaultModel()
	}

	c.JSON(http.StatusOK, response)
}
