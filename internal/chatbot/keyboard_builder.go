package chatbot

import (
	"geminibot/internal/llm"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// KeyboardBuilder creates the reply keyboards the bot offers
type KeyboardBuilder struct {
	models []string
}

// NewKeyboardBuilder creates a new KeyboardBuilder over the model allow-list
func NewKeyboardBuilder() *KeyboardBuilder {
	return &KeyboardBuilder{models: llm.Models()}
}

// ResetCommandFor is the command that starts a new conversation on model.
func ResetCommandFor(model string) string {
	return "/" + CommandReset + "_" + llm.CommandToken(model)
}

// BuildModelKeyboard offers one /reset_<token> button per allowed model.
// Pressing a button sends the command, so no callback handling is needed.
func (kb *KeyboardBuilder) BuildModelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(kb.models))
	for _, model := range kb.models {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ResetCommandFor(model)),
		))
	}

	keyboard := tgbotapi.NewReplyKeyboard(rows...)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	return keyboard
}

// BuildRemoveKeyboard hides a previously offered keyboard
func (kb *KeyboardBuilder) BuildRemoveKeyboard() tgbotapi.ReplyKeyboardRemove {
	return tgbotapi.NewRemoveKeyboard(true)
}
