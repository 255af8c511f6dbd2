package chatbot

import (
	"context"
	"fmt"
	"time"

	"geminibot/internal/config"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// telegramProvider implements the TelegramProvider interface using the telegram-bot-api library
type telegramProvider struct {
	bot    *tgbotapi.BotAPI
	logger *zap.Logger
	config config.ChatbotConfig
}

// newStartupBackOff is the retry policy for validating the token at startup.
var newStartupBackOff = func() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = time.Minute
	return policy
}

// NewTelegramProvider connects to the Bot API and validates the token with
// getMe. Transient failures are retried; a rejected token fails at once.
func NewTelegramProvider(ctx context.Context, cfg config.ChatbotConfig, logger *zap.Logger) (TelegramProvider, error) {
	if cfg.Token == "" {
		return nil, NewConfigurationError("token", "telegram bot token is required", "")
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	var bot *tgbotapi.BotAPI
	attempt := 0
	operation := func() error {
		attempt++
		b, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, endpoint)
		if err != nil {
			wrapped := WrapTelegramError(err, "get_me")
			if !IsTemporaryError(wrapped) {
				return backoff.Permanent(wrapped)
			}
			logger.Warn("Telegram token validation failed, retrying",
				zap.Int("attempt", attempt),
				zap.Error(err))
			return wrapped
		}
		bot = b
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(newStartupBackOff(), uint64(cfg.StartupRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("failed to validate bot token: %w", err)
	}

	logger.Info("Telegram bot initialized successfully", zap.String("username", bot.Self.UserName))

	return &telegramProvider{
		bot:    bot,
		logger: logger,
		config: cfg,
	}, nil
}

// SendMessage sends text to the specified chat
func (p *telegramProvider) SendMessage(chatID int64, text string, opts SendOptions) error {
	p.logger.Debug("Sending message",
		zap.Int64("chat_id", chatID),
		zap.Int("reply_to", opts.ReplyToMessageID),
		zap.String("parse_mode", opts.ParseMode),
		zap.Int("text_length", len(text)))

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = opts.ParseMode
	msg.ReplyToMessageID = opts.ReplyToMessageID
	if opts.ReplyMarkup != nil {
		msg.ReplyMarkup = opts.ReplyMarkup
	}

	if _, err := p.bot.Send(msg); err != nil {
		p.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return WrapTelegramError(err, "send_message")
	}

	return nil
}

// SendChatAction shows a chat action such as typing
func (p *telegramProvider) SendChatAction(chatID int64, action string) error {
	if _, err := p.bot.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		return WrapTelegramError(err, "send_chat_action")
	}
	return nil
}

// SetWebhook configures the webhook URL for receiving updates. The URL holds
// the webhook secret, so only its host is logged.
func (p *telegramProvider) SetWebhook(webhookURL string) error {
	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return NewConfigurationError("webhook_url", "not a valid URL", "")
	}
	host := webhookConfig.URL.Host

	p.logger.Info("Setting webhook", zap.String("webhook_host", host))

	if _, err := p.bot.Request(webhookConfig); err != nil {
		p.logger.Error("Failed to set webhook",
			zap.String("webhook_host", host),
			zap.Error(err))
		return WrapTelegramError(err, "set_webhook")
	}

	p.logger.Info("Webhook set successfully", zap.String("webhook_host", host))
	return nil
}

// DeleteWebhook removes the configured webhook
func (p *telegramProvider) DeleteWebhook() error {
	p.logger.Info("Deleting webhook")

	if _, err := p.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		p.logger.Error("Failed to delete webhook", zap.Error(err))
		return WrapTelegramError(err, "delete_webhook")
	}

	return nil
}

// GetMe returns the bot account validated at startup
func (p *telegramProvider) GetMe() (*tgbotapi.User, error) {
	self := p.bot.Self
	return &self, nil
}

// GetUpdatesChan starts long polling
func (p *telegramProvider) GetUpdatesChan(timeoutSeconds int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSeconds
	return p.bot.GetUpdatesChan(u)
}

// StopReceivingUpdates stops long polling
func (p *telegramProvider) StopReceivingUpdates() {
	p.bot.StopReceivingUpdates()
}
