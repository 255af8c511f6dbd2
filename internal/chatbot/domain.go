package chatbot

import (
	"time"

	"geminibot/internal/common"
)

// MessageType represents the type of message received
type MessageType string

const (
	MessageTypeCommand MessageType = "command"
	MessageTypeText    MessageType = "text"
	MessageTypeOther   MessageType = "other"
)

// Message is an inbound text message stripped down to what the bot uses
type Message struct {
	ChatID      common.ChatID    `json:"chat_id" validate:"required"`
	MessageID   common.MessageID `json:"message_id" validate:"required"`
	UserID      common.UserID    `json:"user_id"`
	Username    string           `json:"username,omitempty"`
	Text        string           `json:"text" validate:"required"`
	Timestamp   time.Time        `json:"timestamp"`
	MessageType MessageType      `json:"message_type"`
}

// Command names understood by the bot
const (
	CommandStart = "start"
	CommandReset = "reset"
	CommandModel = "model"
	CommandHelp  = "help"
)

// Command is a parsed bot command. Arg carries the model token of /reset_<token>.
type Command struct {
	Name string
	Arg  string
}

// Reply is what a handler wants sent back to the chat
type Reply struct {
	Text      string
	ParseMode string
	Keyboard  interface{}
}

// SendOptions controls how a single outbound message is delivered
type SendOptions struct {
	ReplyToMessageID int
	ParseMode        string
	ReplyMarkup      interface{}
}

// IsValid checks if the message type is valid
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeCommand, MessageTypeText, MessageTypeOther:
		return true
	default:
		return false
	}
}
