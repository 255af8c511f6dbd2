package mocks

import (
	"context"
	"errors"
	"testing"

	"geminibot/internal/chatbot"
	"geminibot/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMockTelegramProvider_RecordsMessages(t *testing.T) {
	provider := NewMockTelegramProvider()

	err := provider.SendMessage(42, "hello", chatbot.SendOptions{ReplyToMessageID: 7})
	require.NoError(t, err)

	last := provider.GetLastMessage()
	require.NotNil(t, last)
	assert.Equal(t, int64(42), last.ChatID)
	assert.Equal(t, 7, last.Options.ReplyToMessageID)
	assert.Equal(t, 1, provider.GetCallCount("SendMessage"))
}

func TestMockTelegramProvider_FailSendNumber(t *testing.T) {
	provider := NewMockTelegramProvider()
	provider.FailSendNumber(2, errors.New("boom"))

	assert.NoError(t, provider.SendMessage(1, "a", chatbot.SendOptions{}))
	assert.Error(t, provider.SendMessage(1, "b", chatbot.SendOptions{}))
	assert.NoError(t, provider.SendMessage(1, "c", chatbot.SendOptions{}))

	sent := provider.GetSentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, "c", sent[1].Text)
}

func TestMockTelegramProvider_GetMe(t *testing.T) {
	provider := NewMockTelegramProvider()

	me, err := provider.GetMe()
	require.NoError(t, err)
	assert.Equal(t, "mock_bot", me.UserName)

	provider.SetGetMeError(errors.New("unauthorized"))
	_, err = provider.GetMe()
	assert.Error(t, err)
}

func TestMockChatbotService(t *testing.T) {
	service := &MockChatbotService{}
	service.On("HandleWebhook", mock.Anything, mock.Anything).Return(nil)
	service.On("BotUsername").Return("mock_bot")

	assert.NoError(t, service.HandleWebhook(context.Background(), SimulateWebhookUpdate(1, 2, "hi")))
	assert.Equal(t, "mock_bot", service.BotUsername())
	service.AssertExpectations(t)
}

func TestMockLLMProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := NewMockLLMProvider(ctrl)

	provider.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&llm.GenerateResponse{Text: "hi"}, nil)

	resp, err := provider.Generate(context.Background(), llm.GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "hi", resp.Text)
}
