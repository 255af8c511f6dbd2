package chatbot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramProvider defines the contract for Telegram API operations
type TelegramProvider interface {
	// SendMessage sends text to the chat. Formatting and reply target come from opts.
	SendMessage(chatID int64, text string, opts SendOptions) error

	// SendChatAction shows a transient status such as "typing"
	SendChatAction(chatID int64, action string) error

	// SetWebhook configures the webhook URL for receiving updates
	SetWebhook(webhookURL string) error

	// DeleteWebhook removes the configured webhook
	DeleteWebhook() error

	// GetMe returns information about the bot
	GetMe() (*tgbotapi.User, error)

	// GetUpdatesChan starts long polling and streams updates until StopReceivingUpdates
	GetUpdatesChan(timeoutSeconds int) tgbotapi.UpdatesChannel

	// StopReceivingUpdates stops long polling
	StopReceivingUpdates()
}
