package conversation

import (
	"context"
	"strings"
	"time"

	"geminibot/internal/common"
	"geminibot/internal/events"
	"geminibot/internal/llm"

	"go.uber.org/zap"
)

// ConversationService keeps one conversation per chat and talks to the model
type ConversationService interface {
	// Start opens a fresh conversation on the default model.
	Start(chatID common.ChatID) SessionInfo
	// Reset discards history. An empty model keeps the current one, or the default.
	Reset(chatID common.ChatID, model string) (SessionInfo, error)
	// Model reports the chat's model, or the default and false without a session.
	Model(chatID common.ChatID) (string, bool)
	// Ask sends text with the chat's history and records both turns on success.
	Ask(ctx context.Context, chatID common.ChatID, text string) (*Answer, error)
	// Count is the number of live sessions.
	Count() int
	// DefaultModel is the model new sessions start on.
	DefaultModel() string
}

// SessionInfo is a snapshot of a session's identity
type SessionInfo struct {
	ChatID    common.ChatID
	Model     string
	CreatedAt time.Time
}

// Answer is the model's reply to one prompt
type Answer struct {
	Text        string
	Model       string
	TotalTokens int
	Duration    time.Duration
}

type conversationService struct {
	provider     llm.LLMProvider
	store        *Store
	publisher    *common.EventPublisher
	logger       *zap.Logger
	clock        common.Clock
	defaultModel string
}

// NewConversationService creates a new instance of ConversationService
func NewConversationService(provider llm.LLMProvider, eventBus events.EventBus, logger *zap.Logger, defaultModel string, clock common.Clock) ConversationService {
	if clock == nil {
		clock = common.NewRealClock()
	}
	if !llm.IsAllowed(defaultModel) {
		defaultModel = llm.DefaultModel()
	}

	return &conversationService{
		provider:     provider,
		store:        NewStore(clock),
		publisher:    common.NewEventPublisher(eventBus, logger),
		logger:       logger,
		clock:        clock,
		defaultModel: llm.DisplayName(defaultModel),
	}
}

func (s *conversationService) DefaultModel() string {
	return s.defaultModel
}

func (s *conversationService) Start(chatID common.ChatID) SessionInfo {
	session := s.store.Replace(chatID, s.defaultModel)
	s.sessionStarted(session, events.ReasonStart)
	return info(session)
}

func (s *conversationService) Reset(chatID common.ChatID, model string) (SessionInfo, error) {
	if model == "" {
		model, _ = s.Model(chatID)
	} else {
		resolved, ok := llm.ResolveModel(model)
		if !ok {
			return SessionInfo{}, UnknownModelError{Model: model, Allowed: llm.Models()}
		}
		model = resolved
	}

	session := s.store.Replace(chatID, model)
	s.sessionStarted(session, events.ReasonReset)
	return info(session), nil
}

func (s *conversationService) Model(chatID common.ChatID) (string, bool) {
	if session, ok := s.store.Get(chatID); ok {
		return llm.DisplayName(session.Model), true
	}
	return s.defaultModel, false
}

func (s *conversationService) Ask(ctx context.Context, chatID common.ChatID, text string) (*Answer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyPrompt
	}

	session, created := s.store.GetOrCreate(chatID, s.defaultModel)
	if created {
		s.sessionStarted(session, events.ReasonImplicit)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	start := s.clock.Now()
	resp, err := s.provider.Generate(ctx, llm.GenerateRequest{
		Model:   session.Model,
		History: append([]llm.Message(nil), session.history...),
		Prompt:  text,
	})
	if err != nil {
		return nil, GenerationError{ChatID: chatID, Model: session.Model, Cause: err}
	}

	session.history = append(session.history,
		llm.Message{Role: llm.RoleUser, Text: text},
		llm.Message{Role: llm.RoleModel, Text: resp.Text},
	)
	session.lastActivity = s.clock.Now()

	s.logger.Debug("Conversation advanced",
		zap.Int64("chat_id", chatID.Int64()),
		zap.String("model", session.Model),
		zap.Int("history_turns", len(session.history)))

	return &Answer{
		Text:        resp.Text,
		Model:       session.Model,
		TotalTokens: resp.TotalTokens,
		Duration:    session.lastActivity.Sub(start),
	}, nil
}

func (s *conversationService) Count() int {
	return s.store.Len()
}

func (s *conversationService) sessionStarted(session *Session, reason string) {
	s.logger.Info("Session started",
		zap.Int64("chat_id", session.ChatID.Int64()),
		zap.String("model", session.Model),
		zap.String("reason", reason))

	s.publisher.Publish(events.TopicSessionStarted, events.SessionStarted{
		Event:  events.NewEvent(),
		ChatID: session.ChatID.Int64(),
		Model:  session.Model,
		Reason: reason,
	})
}

func info(session *Session) SessionInfo {
	return SessionInfo{
		ChatID:    session.ChatID,
		Model:     session.Model,
		CreatedAt: session.CreatedAt,
	}
}
