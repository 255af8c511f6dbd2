package chatbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"geminibot/internal/common"
	"geminibot/internal/config"
	"geminibot/internal/conversation"
	"geminibot/internal/events"
	"geminibot/internal/markdown"
	"geminibot/internal/reply"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// ChatbotService defines the interface for chatbot operations
type ChatbotService interface {
	// HandleUpdate processes one update. Failures answering a message are
	// reported to the chat and logged, not returned.
	HandleUpdate(ctx context.Context, update *tgbotapi.Update) error
	// HandleWebhook parses raw update JSON and processes it.
	HandleWebhook(ctx context.Context, webhookData []byte) error
	// BotUsername is the bot's @username without the @.
	BotUsername() string
}

// chatbotService implements the ChatbotService interface
type chatbotService struct {
	provider         TelegramProvider
	conversations    conversation.ConversationService
	formatter        reply.Formatter
	parser           *WebhookParser
	commandProcessor *CommandProcessor
	publisher        *common.EventPublisher
	logger           *zap.Logger
	config           config.ChatbotConfig
	botUsername      string
}

// NewChatbotService creates a new instance of ChatbotService
func NewChatbotService(eventBus events.EventBus, logger *zap.Logger, provider TelegramProvider, conversations conversation.ConversationService, cfg config.ChatbotConfig) (ChatbotService, error) {
	if provider == nil {
		return nil, NewConfigurationError("provider", "telegram provider is required", "")
	}

	me, err := provider.GetMe()
	if err != nil {
		return nil, fmt.Errorf("failed to get bot information: %w", err)
	}

	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = reply.DefaultLimit
	}

	return &chatbotService{
		provider:         provider,
		conversations:    conversations,
		formatter:        markdown.NewConverter(),
		parser:           NewWebhookParser(),
		commandProcessor: NewCommandProcessor(conversations, NewKeyboardBuilder(), logger),
		publisher:        common.NewEventPublisher(eventBus, logger),
		logger:           logger,
		config:           cfg,
		botUsername:      me.UserName,
	}, nil
}

func (s *chatbotService) BotUsername() string {
	return s.botUsername
}

// HandleWebhook processes incoming webhook data from Telegram
func (s *chatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	update, err := s.parser.ParseUpdate(webhookData)
	if err != nil {
		s.logger.Warn("Failed to parse webhook update",
			zap.Int("data_size", len(webhookData)),
			zap.Error(err))
		return err
	}
	return s.HandleUpdate(ctx, update)
}

// HandleUpdate routes one update to the command or text path
func (s *chatbotService) HandleUpdate(ctx context.Context, update *tgbotapi.Update) error {
	correlationID := s.parser.BuildCorrelationID(update)

	msg, err := s.parser.ExtractMessage(update)
	if errors.Is(err, ErrNotTextMessage) {
		s.logger.Debug("Ignoring update without text", zap.String("correlation_id", correlationID))
		return nil
	}
	if err != nil {
		return err
	}

	logger := s.logger.With(
		zap.String("correlation_id", correlationID),
		zap.Int64("chat_id", msg.ChatID.Int64()))

	s.publisher.Publish(events.TopicMessageReceived, events.MessageReceived{
		Event:     events.NewEventWithCorrelation(correlationID),
		ChatID:    msg.ChatID.Int64(),
		UserID:    int64(msg.UserID),
		MessageID: int(msg.MessageID),
		Text:      msg.Text,
		IsCommand: msg.MessageType == MessageTypeCommand,
	})

	if msg.MessageType == MessageTypeCommand {
		s.handleCommand(msg, correlationID, logger)
		return nil
	}

	s.handleText(ctx, msg, correlationID, logger)
	return nil
}

func (s *chatbotService) handleCommand(msg *Message, correlationID string, logger *zap.Logger) {
	cmd, _ := ParseCommand(msg.Text, s.botUsername)

	out, err := s.commandProcessor.Process(msg, cmd)
	if err != nil {
		s.fail(msg, correlationID, err, logger)
		return
	}
	if out == nil {
		logger.Debug("Ignoring unknown command", zap.String("text", msg.Text))
		return
	}

	opts := SendOptions{ParseMode: out.ParseMode, ReplyMarkup: out.Keyboard}
	if err := s.provider.SendMessage(msg.ChatID.Int64(), out.Text, opts); err != nil {
		logger.Error("Failed to send command reply", zap.String("command", cmd.Name), zap.Error(err))
	}
}

func (s *chatbotService) handleText(ctx context.Context, msg *Message, correlationID string, logger *zap.Logger) {
	stopTyping := startTyping(ctx, s.provider, msg.ChatID.Int64(), s.typingInterval(), logger)
	defer stopTyping()

	answer, err := s.conversations.Ask(ctx, msg.ChatID, msg.Text)
	if err != nil {
		s.fail(msg, correlationID, err, logger)
		return
	}

	parts := reply.Prepare(answer.Text, s.config.ChunkLimit, s.formatter)
	for i, part := range parts {
		opts := SendOptions{
			ReplyToMessageID: int(msg.MessageID),
			ParseMode:        tgbotapi.ModeMarkdownV2,
		}
		if err := s.provider.SendMessage(msg.ChatID.Int64(), part, opts); err != nil {
			logger.Warn("Stopped sending answer",
				zap.Int("chunk", i+1),
				zap.Int("chunks", len(parts)))
			s.fail(msg, correlationID, err, logger)
			return
		}
	}

	logger.Info("Answer delivered",
		zap.String("model", answer.Model),
		zap.Int("chunks", len(parts)),
		zap.Int("answer_length", reply.TextLength(answer.Text)),
		zap.Duration("duration", answer.Duration))

	s.publisher.Publish(events.TopicAnswerDelivered, events.AnswerDelivered{
		Event:        events.NewEventWithCorrelation(correlationID),
		ChatID:       msg.ChatID.Int64(),
		Model:        answer.Model,
		Chunks:       len(parts),
		AnswerLength: reply.TextLength(answer.Text),
		TotalTokens:  answer.TotalTokens,
		Duration:     answer.Duration,
	})
}

// fail reports err to the chat as plain text. Cancellation means the process
// is shutting down, so nothing is sent.
func (s *chatbotService) fail(msg *Message, correlationID string, err error, logger *zap.Logger) {
	if errors.Is(err, context.Canceled) {
		logger.Info("Dropped reply during shutdown", zap.Error(err))
		return
	}

	code := errorCode(err)
	logger.Error("Failed to answer message",
		zap.String("code", code),
		zap.Error(err))

	model, _ := s.conversations.Model(msg.ChatID)
	s.publisher.Publish(events.TopicReplyFailed, events.ReplyFailed{
		Event:  events.NewEventWithCorrelation(correlationID),
		ChatID: msg.ChatID.Int64(),
		Model:  model,
		Code:   code,
		Error:  err.Error(),
	})

	opts := SendOptions{ReplyToMessageID: int(msg.MessageID)}
	if sendErr := s.provider.SendMessage(msg.ChatID.Int64(), err.Error(), opts); sendErr != nil {
		logger.Error("Failed to send error reply", zap.Error(sendErr))
	}
}

func (s *chatbotService) typingInterval() time.Duration {
	if s.config.TypingIntervalMS <= 0 {
		return DefaultTypingInterval
	}
	return time.Duration(s.config.TypingIntervalMS) * time.Millisecond
}

func errorCode(err error) string {
	var chatbotErr ChatbotError
	if errors.As(err, &chatbotErr) {
		return chatbotErr.Code()
	}
	return conversation.ErrorCode(err)
}
