package chatbot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"geminibot/internal/config"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testToken = "123:abc"

const getMeOK = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Gemini","username":"gemini_test_bot"}}`

// fakeBotAPI answers Bot API methods from a table and records form posts.
type fakeBotAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	forms    map[string][]map[string]string
	handlers map[string]func(call int) string
}

func newFakeBotAPI(t *testing.T) (*fakeBotAPI, *httptest.Server) {
	api := &fakeBotAPI{
		calls: make(map[string]int),
		forms: make(map[string][]map[string]string),
		handlers: map[string]func(int) string{
			"getMe":          func(int) string { return getMeOK },
			"sendMessage":    func(int) string { return `{"ok":true,"result":{"message_id":5,"date":0,"chat":{"id":42,"type":"private"}}}` },
			"sendChatAction": func(int) string { return `{"ok":true,"result":true}` },
			"setWebhook":     func(int) string { return `{"ok":true,"result":true}` },
			"deleteWebhook":  func(int) string { return `{"ok":true,"result":true}` },
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := "/bot" + testToken + "/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.NotFound(w, r)
			return
		}
		method := strings.TrimPrefix(r.URL.Path, prefix)
		_ = r.ParseForm()

		api.mu.Lock()
		api.calls[method]++
		call := api.calls[method]
		form := make(map[string]string)
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		api.forms[method] = append(api.forms[method], form)
		handler, ok := api.handlers[method]
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
			return
		}
		fmt.Fprint(w, handler(call))
	}))
	t.Cleanup(server.Close)

	return api, server
}

func (a *fakeBotAPI) handle(method string, fn func(call int) string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers[method] = fn
}

func (a *fakeBotAPI) callCount(method string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[method]
}

func (a *fakeBotAPI) lastForm(method string) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	forms := a.forms[method]
	if len(forms) == 0 {
		return nil
	}
	return forms[len(forms)-1]
}

func testChatbotConfig(server *httptest.Server) config.ChatbotConfig {
	return config.ChatbotConfig{
		Token:          testToken,
		APIEndpoint:    server.URL + "/bot%s/%s",
		StartupRetries: 3,
	}
}

func withZeroBackOff(t *testing.T) {
	original := newStartupBackOff
	newStartupBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	t.Cleanup(func() { newStartupBackOff = original })
}

func TestNewTelegramProvider(t *testing.T) {
	_, server := newFakeBotAPI(t)

	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	me, err := provider.GetMe()
	require.NoError(t, err)
	assert.Equal(t, "gemini_test_bot", me.UserName)
}

func TestNewTelegramProvider_MissingToken(t *testing.T) {
	_, err := NewTelegramProvider(context.Background(), config.ChatbotConfig{}, zaptest.NewLogger(t))

	assert.True(t, IsConfigurationError(err))
}

func TestNewTelegramProvider_RejectedTokenIsNotRetried(t *testing.T) {
	withZeroBackOff(t)
	api, server := newFakeBotAPI(t)
	api.handle("getMe", func(int) string {
		return `{"ok":false,"error_code":401,"description":"Unauthorized"}`
	})

	_, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.Error(t, err)

	var apiErr TelegramAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code())
	assert.Equal(t, 1, api.callCount("getMe"))
}

func TestNewTelegramProvider_RetriesTransientFailures(t *testing.T) {
	withZeroBackOff(t)
	api, server := newFakeBotAPI(t)
	api.handle("getMe", func(call int) string {
		if call < 3 {
			return `{"ok":false,"error_code":502,"description":"Bad Gateway"}`
		}
		return getMeOK
	})

	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NotNil(t, provider)

	assert.Equal(t, 3, api.callCount("getMe"))
}

func TestNewTelegramProvider_GivesUpAfterRetries(t *testing.T) {
	withZeroBackOff(t)
	api, server := newFakeBotAPI(t)
	api.handle("getMe", func(int) string {
		return `{"ok":false,"error_code":500,"description":"Internal Server Error"}`
	})

	_, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))

	require.Error(t, err)
	assert.Equal(t, 4, api.callCount("getMe"))
}

func TestTelegramProvider_SendMessage(t *testing.T) {
	api, server := newFakeBotAPI(t)
	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	err = provider.SendMessage(42, `hi\!`, SendOptions{ReplyToMessageID: 7, ParseMode: tgbotapi.ModeMarkdownV2})
	require.NoError(t, err)

	form := api.lastForm("sendMessage")
	assert.Equal(t, "42", form["chat_id"])
	assert.Equal(t, `hi\!`, form["text"])
	assert.Equal(t, "7", form["reply_to_message_id"])
	assert.Equal(t, "MarkdownV2", form["parse_mode"])
}

func TestTelegramProvider_SendMessagePlain(t *testing.T) {
	api, server := newFakeBotAPI(t)
	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	keyboard := NewKeyboardBuilder().BuildModelKeyboard()
	require.NoError(t, provider.SendMessage(42, "pick one", SendOptions{ReplyMarkup: keyboard}))

	form := api.lastForm("sendMessage")
	assert.NotContains(t, form, "parse_mode")
	assert.NotContains(t, form, "reply_to_message_id")
	assert.Contains(t, form["reply_markup"], "/reset_gemini_2_5_flash")
}

func TestTelegramProvider_SendMessageFloodControl(t *testing.T) {
	api, server := newFakeBotAPI(t)
	api.handle("sendMessage", func(int) string {
		return `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 7","parameters":{"retry_after":7}}`
	})
	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	err = provider.SendMessage(42, "hello", SendOptions{})

	var apiErr TelegramAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 7, apiErr.RetryAfter)
	assert.True(t, IsTemporaryError(err))
}

func TestTelegramProvider_ChatActionAndWebhook(t *testing.T) {
	api, server := newFakeBotAPI(t)
	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, provider.SendChatAction(42, tgbotapi.ChatTyping))
	assert.Equal(t, "typing", api.lastForm("sendChatAction")["action"])

	require.NoError(t, provider.SetWebhook("https://bot.example.com/api/v1/telegram/webhook/0123456789abcdef"))
	assert.Equal(t, "https://bot.example.com/api/v1/telegram/webhook/0123456789abcdef", api.lastForm("setWebhook")["url"])

	require.NoError(t, provider.DeleteWebhook())
	assert.Equal(t, 1, api.callCount("deleteWebhook"))
}

func TestTelegramProvider_RequestCount(t *testing.T) {
	var requests atomic.Int32
	api, server := newFakeBotAPI(t)
	api.handle("sendChatAction", func(int) string {
		requests.Add(1)
		return `{"ok":true,"result":true}`
	})
	provider, err := NewTelegramProvider(context.Background(), testChatbotConfig(server), zaptest.NewLogger(t))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, provider.SendChatAction(42, tgbotapi.ChatTyping))
	}

	assert.Equal(t, int32(3), requests.Load())
	assert.Equal(t, 1, api.callCount("getMe"))
}
