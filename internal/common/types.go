package common

import (
	"strconv"

	"github.com/google/uuid"
)

// ChatID identifies a Telegram chat. Group chats are negative.
type ChatID int64

// MessageID identifies a message inside one chat.
type MessageID int

// UserID identifies the Telegram user that sent a message.
type UserID int64

func (id ChatID) Int64() int64 {
	return int64(id)
}

func (id ChatID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseChatID parses the decimal form produced by ChatID.String.
func ParseChatID(s string) (ChatID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, ValidationError{Field: "chat_id", Message: err.Error()}
	}
	return ChatID(v), nil
}

// NewCorrelationID returns a random id used to follow one update through the logs.
func NewCorrelationID() string {
	return uuid.New().String()
}

// IsCorrelationID reports whether s was produced by NewCorrelationID.
func IsCorrelationID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return "validation error for field '" + e.Field + "': " + e.Message
}
