package llm

import (
	"strings"
)

// models is the compiled-in allow-list. The first entry is the default.
var models = []string{
	"gemini-2.5-flash",
	"gemini-2.5-flash-lite",
	"gemini-2.5-pro",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
}

// Models returns a copy of the allow-list in display order.
func Models() []string {
	out := make([]string, len(models))
	copy(out, models)
	return out
}

// DefaultModel is the first allow-list entry.
func DefaultModel() string {
	return models[0]
}

// IsAllowed reports whether name, with or without the "models/" prefix, is on the allow-list.
func IsAllowed(name string) bool {
	name = DisplayName(name)
	for _, m := range models {
		if m == name {
			return true
		}
	}
	return false
}

// DisplayName strips the API resource prefix from a model name.
func DisplayName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "models/")
}

// CommandToken turns a model name into something Telegram accepts inside a
// bot command, which only allows letters, digits and underscores.
func CommandToken(name string) string {
	return strings.NewReplacer("-", "_", ".", "_").Replace(DisplayName(name))
}

// ResolveModel finds the allow-list entry for a command token or raw model name.
func ResolveModel(token string) (string, bool) {
	token = strings.ToLower(DisplayName(token))
	if token == "" {
		return "", false
	}
	for _, m := range models {
		if m == token || CommandToken(m) == token {
			return m, true
		}
	}
	return "", false
}

// Role marks who produced a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one turn of a conversation.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// GenerateRequest asks the model to continue a conversation.
type GenerateRequest struct {
	Model   string    `json:"model" validate:"required"`
	History []Message `json:"history"`
	Prompt  string    `json:"prompt" validate:"required"`
}

// GenerateResponse is the complete answer for one request.
type GenerateResponse struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
	TotalTokens  int    `json:"total_tokens,omitempty"`
}
