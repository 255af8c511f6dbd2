package chatbot

import (
	"encoding/json"
	"fmt"
	"time"

	"geminibot/internal/common"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookParser provides utilities for parsing Telegram updates
type WebhookParser struct{}

// NewWebhookParser creates a new WebhookParser instance
func NewWebhookParser() *WebhookParser {
	return &WebhookParser{}
}

// ParseUpdate unmarshals webhook data into a Telegram Update struct
func (p *WebhookParser) ParseUpdate(updateData []byte) (*tgbotapi.Update, error) {
	if len(updateData) == 0 {
		return nil, WrapParsingError(fmt.Errorf("empty update data"), "telegram_update")
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(updateData, &update); err != nil {
		return nil, WrapParsingError(err, "telegram_update")
	}

	if update.UpdateID == 0 {
		return nil, WrapParsingError(fmt.Errorf("missing update ID"), "telegram_update")
	}

	return &update, nil
}

// ExtractMessage converts an update into a domain Message. Updates without
// a text message yield ErrNotTextMessage.
func (p *WebhookParser) ExtractMessage(update *tgbotapi.Update) (*Message, error) {
	if update == nil || update.Message == nil {
		return nil, ErrNotTextMessage
	}

	msg := update.Message
	if msg.Chat == nil {
		return nil, WrapParsingError(fmt.Errorf("message does not contain chat information"), "message")
	}
	if msg.Text == "" {
		return nil, ErrNotTextMessage
	}

	message := &Message{
		ChatID:      common.ChatID(msg.Chat.ID),
		MessageID:   common.MessageID(msg.MessageID),
		Text:        msg.Text,
		Timestamp:   time.Unix(int64(msg.Date), 0),
		MessageType: p.DetermineMessageType(update),
	}
	if msg.From != nil {
		message.UserID = common.UserID(msg.From.ID)
		message.Username = msg.From.UserName
	}

	return message, nil
}

// DetermineMessageType classifies the message type
func (p *WebhookParser) DetermineMessageType(update *tgbotapi.Update) MessageType {
	if update == nil || update.Message == nil || update.Message.Text == "" {
		return MessageTypeOther
	}
	if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
		return MessageTypeCommand
	}
	return MessageTypeText
}

// BuildCorrelationID generates a correlation ID for tracking one update through the logs
func (p *WebhookParser) BuildCorrelationID(update *tgbotapi.Update) string {
	if update == nil {
		return common.NewCorrelationID()
	}

	if update.Message != nil {
		return fmt.Sprintf("msg_%d_%d", update.UpdateID, update.Message.MessageID)
	}

	return fmt.Sprintf("upd_%d", update.UpdateID)
}
