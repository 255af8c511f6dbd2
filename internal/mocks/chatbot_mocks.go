package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"geminibot/internal/chatbot"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/mock"
)

// MockTelegramProvider implements the TelegramProvider interface for testing
type MockTelegramProvider struct {
	mutex           sync.RWMutex
	sentMessages    []MockMessage
	chatActions     []MockChatAction
	webhookURL      string
	botInfo         *tgbotapi.User
	sendErrors      map[int]error
	sendMessageErr  error
	setWebhookError error
	getMeError      error
	updates         chan tgbotapi.Update
	stopped         bool
	callCounts      map[string]int
}

// MockMessage represents a sent message for testing verification
type MockMessage struct {
	ChatID    int64
	Text      string
	Options   chatbot.SendOptions
	Timestamp time.Time
}

// MockChatAction represents a sent chat action
type MockChatAction struct {
	ChatID    int64
	Action    string
	Timestamp time.Time
}

// NewMockTelegramProvider creates a new mock Telegram provider
func NewMockTelegramProvider() *MockTelegramProvider {
	return &MockTelegramProvider{
		botInfo: &tgbotapi.User{
			ID:        123456789,
			UserName:  "mock_bot",
			FirstName: "Mock Bot",
			IsBot:     true,
		},
		sendErrors: make(map[int]error),
		updates:    make(chan tgbotapi.Update, 16),
		callCounts: make(map[string]int),
	}
}

// SendMessage implements the TelegramProvider interface
func (m *MockTelegramProvider) SendMessage(chatID int64, text string, opts chatbot.SendOptions) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["SendMessage"]++
	if err, ok := m.sendErrors[m.callCounts["SendMessage"]]; ok {
		return err
	}
	if m.sendMessageErr != nil {
		return m.sendMessageErr
	}

	m.sentMessages = append(m.sentMessages, MockMessage{
		ChatID:    chatID,
		Text:      text,
		Options:   opts,
		Timestamp: time.Now(),
	})
	return nil
}

// SendChatAction implements the TelegramProvider interface
func (m *MockTelegramProvider) SendChatAction(chatID int64, action string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["SendChatAction"]++
	m.chatActions = append(m.chatActions, MockChatAction{ChatID: chatID, Action: action, Timestamp: time.Now()})
	return nil
}

// SetWebhook implements the TelegramProvider interface
func (m *MockTelegramProvider) SetWebhook(webhookURL string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["SetWebhook"]++
	if m.setWebhookError != nil {
		return m.setWebhookError
	}
	m.webhookURL = webhookURL
	return nil
}

// DeleteWebhook implements the TelegramProvider interface
func (m *MockTelegramProvider) DeleteWebhook() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["DeleteWebhook"]++
	m.webhookURL = ""
	return nil
}

// GetMe implements the TelegramProvider interface
func (m *MockTelegramProvider) GetMe() (*tgbotapi.User, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["GetMe"]++
	if m.getMeError != nil {
		return nil, m.getMeError
	}
	user := *m.botInfo
	return &user, nil
}

// GetUpdatesChan implements the TelegramProvider interface
func (m *MockTelegramProvider) GetUpdatesChan(timeoutSeconds int) tgbotapi.UpdatesChannel {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["GetUpdatesChan"]++
	return m.updates
}

// StopReceivingUpdates implements the TelegramProvider interface
func (m *MockTelegramProvider) StopReceivingUpdates() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.callCounts["StopReceivingUpdates"]++
	m.stopped = true
}

// PushUpdate queues an update for GetUpdatesChan consumers.
func (m *MockTelegramProvider) PushUpdate(update tgbotapi.Update) {
	m.updates <- update
}

// CloseUpdates closes the update channel, as the library does when polling ends.
func (m *MockTelegramProvider) CloseUpdates() {
	close(m.updates)
}

// GetSentMessages returns a copy of all sent messages
func (m *MockTelegramProvider) GetSentMessages() []MockMessage {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]MockMessage, len(m.sentMessages))
	copy(result, m.sentMessages)
	return result
}

// GetLastMessage returns the most recent message, or nil
func (m *MockTelegramProvider) GetLastMessage() *MockMessage {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if len(m.sentMessages) == 0 {
		return nil
	}
	last := m.sentMessages[len(m.sentMessages)-1]
	return &last
}

// GetChatActions returns a copy of all chat actions
func (m *MockTelegramProvider) GetChatActions() []MockChatAction {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]MockChatAction, len(m.chatActions))
	copy(result, m.chatActions)
	return result
}

// GetWebhookURL returns the configured webhook URL
func (m *MockTelegramProvider) GetWebhookURL() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.webhookURL
}

// GetCallCount returns how often method was called
func (m *MockTelegramProvider) GetCallCount(method string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.callCounts[method]
}

// Stopped reports whether StopReceivingUpdates was called
func (m *MockTelegramProvider) Stopped() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.stopped
}

// SetSendMessageError makes every SendMessage call fail
func (m *MockTelegramProvider) SetSendMessageError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sendMessageErr = err
}

// FailSendNumber makes only the nth SendMessage call (1-based) fail
func (m *MockTelegramProvider) FailSendNumber(n int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sendErrors[n] = err
}

// SetWebhookError makes SetWebhook fail
func (m *MockTelegramProvider) SetWebhookError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.setWebhookError = err
}

// SetGetMeError makes GetMe fail
func (m *MockTelegramProvider) SetGetMeError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.getMeError = err
}

// SetBotInfo replaces the account returned by GetMe
func (m *MockTelegramProvider) SetBotInfo(botInfo *tgbotapi.User) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.botInfo = botInfo
}

// ClearHistory forgets sent messages and chat actions
func (m *MockTelegramProvider) ClearHistory() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sentMessages = nil
	m.chatActions = nil
}

// MockChatbotService is a testify mock of chatbot.ChatbotService
type MockChatbotService struct {
	mock.Mock
}

// HandleUpdate implements the ChatbotService interface
func (m *MockChatbotService) HandleUpdate(ctx context.Context, update *tgbotapi.Update) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

// HandleWebhook implements the ChatbotService interface
func (m *MockChatbotService) HandleWebhook(ctx context.Context, webhookData []byte) error {
	args := m.Called(ctx, webhookData)
	return args.Error(0)
}

// BotUsername implements the ChatbotService interface
func (m *MockChatbotService) BotUsername() string {
	args := m.Called()
	return args.String(0)
}

// NewTextUpdate builds an update carrying a text message
func NewTextUpdate(updateID int, userID, chatID int64, messageID int, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: updateID,
		Message: &tgbotapi.Message{
			MessageID: messageID,
			From: &tgbotapi.User{
				ID:        userID,
				UserName:  fmt.Sprintf("user_%d", userID),
				FirstName: "Test User",
			},
			Chat: &tgbotapi.Chat{
				ID:   chatID,
				Type: "private",
			},
			Text: text,
			Date: int(time.Now().Unix()),
		},
	}
}

// SimulateWebhookUpdate creates webhook JSON for a text message
func SimulateWebhookUpdate(userID, chatID int64, text string) []byte {
	jsonData, _ := json.Marshal(NewTextUpdate(123456, userID, chatID, 1, text))
	return jsonData
}
