package conversation

import (
	"errors"
	"fmt"
	"strings"

	"geminibot/internal/common"
	"geminibot/internal/llm"
)

// Error codes for conversation module
const (
	ErrCodeUnknownModel   = "UNKNOWN_MODEL"
	ErrCodeEmptyPrompt    = "EMPTY_PROMPT"
	ErrCodeGenerationFail = "GENERATION_FAILED"
)

// ConversationError interface for conversation-specific errors
type ConversationError interface {
	error
	Code() string
	Message() string
	Temporary() bool
}

// UnknownModelError is returned when a reset names a model outside the allow-list
type UnknownModelError struct {
	Model   string
	Allowed []string
}

func (e UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model %q, choose one of: %s", e.Model, strings.Join(e.Allowed, ", "))
}

func (e UnknownModelError) Code() string {
	return ErrCodeUnknownModel
}

func (e UnknownModelError) Message() string {
	return e.Error()
}

func (e UnknownModelError) Temporary() bool {
	return false
}

// GenerationError wraps a failed model call with the chat it belonged to
type GenerationError struct {
	ChatID common.ChatID
	Model  string
	Cause  error
}

func (e GenerationError) Error() string {
	return fmt.Sprintf("model %s failed to answer: %v", e.Model, e.Cause)
}

// Code returns the underlying model error code when there is one.
func (e GenerationError) Code() string {
	var llmErr llm.LLMError
	if errors.As(e.Cause, &llmErr) {
		return llmErr.Code()
	}
	return ErrCodeGenerationFail
}

func (e GenerationError) Message() string {
	var llmErr llm.LLMError
	if errors.As(e.Cause, &llmErr) {
		return llmErr.Message()
	}
	return e.Cause.Error()
}

func (e GenerationError) Temporary() bool {
	return llm.IsTemporary(e.Cause)
}

func (e GenerationError) Unwrap() error {
	return e.Cause
}

// ErrEmptyPrompt is returned by Ask for whitespace-only text.
var ErrEmptyPrompt = errors.New("prompt is empty")

// IsUnknownModelError checks if an error is an UnknownModelError
func IsUnknownModelError(err error) bool {
	var target UnknownModelError
	return errors.As(err, &target)
}

// IsGenerationError checks if an error is a GenerationError
func IsGenerationError(err error) bool {
	var target GenerationError
	return errors.As(err, &target)
}

// ErrorCode returns the code of any ConversationError or llm error in err's chain.
func ErrorCode(err error) string {
	if errors.Is(err, ErrEmptyPrompt) {
		return ErrCodeEmptyPrompt
	}
	var convErr ConversationError
	if errors.As(err, &convErr) {
		return convErr.Code()
	}
	return llm.ErrorCode(err)
}
