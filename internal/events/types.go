package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event represents the base event structure with common fields
type Event struct {
	CorrelationID string    `json:"correlation_id" validate:"required"`
	Timestamp     time.Time `json:"timestamp" validate:"required"`
}

// NewEvent creates a new base event with generated correlation ID
func NewEvent() Event {
	return NewEventWithCorrelation(uuid.New().String())
}

// NewEventWithCorrelation ties an event to the update that caused it.
func NewEventWithCorrelation(correlationID string) Event {
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return Event{
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// Why a session was (re)created
const (
	ReasonStart    = "start"
	ReasonReset    = "reset"
	ReasonImplicit = "implicit"
)

// MessageReceived is published for every inbound text message, commands included
type MessageReceived struct {
	Event
	ChatID    int64  `json:"chat_id" validate:"required"`
	UserID    int64  `json:"user_id"`
	MessageID int    `json:"message_id"`
	Text      string `json:"text" validate:"required"`
	IsCommand bool   `json:"is_command"`
}

// SessionStarted is published whenever a chat gets a fresh conversation
type SessionStarted struct {
	Event
	ChatID int64  `json:"chat_id" validate:"required"`
	Model  string `json:"model" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

// AnswerDelivered is published after every chunk of an answer was sent
type AnswerDelivered struct {
	Event
	ChatID       int64         `json:"chat_id" validate:"required"`
	Model        string        `json:"model" validate:"required"`
	Chunks       int           `json:"chunks"`
	AnswerLength int           `json:"answer_length"`
	TotalTokens  int           `json:"total_tokens"`
	Duration     time.Duration `json:"duration"`
}

// ReplyFailed is published when a message could not be answered
type ReplyFailed struct {
	Event
	ChatID int64  `json:"chat_id" validate:"required"`
	Model  string `json:"model"`
	Code   string `json:"code" validate:"required"`
	Error  string `json:"error"`
}

func (e MessageReceived) Validate() error {
	if e.ChatID == 0 {
		return fmt.Errorf("MessageReceived: ChatID is required")
	}
	if e.Text == "" {
		return fmt.Errorf("MessageReceived: Text is required")
	}
	return nil
}

func (e SessionStarted) Validate() error {
	if e.ChatID == 0 {
		return fmt.Errorf("SessionStarted: ChatID is required")
	}
	if e.Model == "" {
		return fmt.Errorf("SessionStarted: Model is required")
	}
	switch e.Reason {
	case ReasonStart, ReasonReset, ReasonImplicit:
	default:
		return fmt.Errorf("SessionStarted: unknown reason %q", e.Reason)
	}
	return nil
}

func (e AnswerDelivered) Validate() error {
	if e.ChatID == 0 {
		return fmt.Errorf("AnswerDelivered: ChatID is required")
	}
	if e.Model == "" {
		return fmt.Errorf("AnswerDelivered: Model is required")
	}
	if e.Chunks < 0 {
		return fmt.Errorf("AnswerDelivered: Chunks must not be negative")
	}
	return nil
}

func (e ReplyFailed) Validate() error {
	if e.ChatID == 0 {
		return fmt.Errorf("ReplyFailed: ChatID is required")
	}
	if e.Code == "" {
		return fmt.Errorf("ReplyFailed: Code is required")
	}
	return nil
}

// Event topics constants
const (
	TopicMessageReceived = "message.received"
	TopicSessionStarted  = "session.started"
	TopicAnswerDelivered = "answer.delivered"
	TopicReplyFailed     = "reply.failed"
)
