package handlers

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"

	"geminibot/internal/chatbot"
	"geminibot/pkg/logger"

	"github.com/gin-gonic/gin"
)

// maxWebhookBody caps what is read from a single update.
const maxWebhookBody = 1 << 20

// WebhookHandler handles Telegram webhook requests
type WebhookHandler struct {
	chatbotService chatbot.ChatbotService
	secret         string
	logger         *logger.Logger
}

// NewWebhookHandler creates a new WebhookHandler instance. Requests must carry
// secret in the :secret path parameter; an empty secret rejects everything.
func NewWebhookHandler(chatbotService chatbot.ChatbotService, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		chatbotService: chatbotService,
		secret:         secret,
		logger:         logger,
	}
}

// HandleTelegramWebhook processes one update. Telegram redelivers anything
// that does not get a 200, so every outcome past authentication answers 200.
func (h *WebhookHandler) HandleTelegramWebhook(c *gin.Context) {
	requestID := c.GetString("request_id")

	if !h.authorized(c.Param("secret")) {
		h.logger.Warnw("Rejected webhook with a wrong secret",
			"request_id", requestID,
			"client_ip", c.ClientIP())
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.logger.Errorw("Failed to read webhook body",
			"request_id", requestID,
			"error", err)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if len(body) == 0 {
		h.logger.Warnw("Received empty webhook body", "request_id", requestID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	// Telegram may hang up while the model is still answering; the reply
	// goes out through the Bot API either way.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.chatbotService.HandleWebhook(ctx, body); err != nil {
		h.logger.Errorw("Failed to process webhook",
			"request_id", requestID,
			"error", err,
			"body_size", len(body))
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	h.logger.Debugw("Webhook processed successfully",
		"request_id", requestID,
		"body_size", len(body))

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *WebhookHandler) authorized(secret string) bool {
	if h.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) == 1
}
