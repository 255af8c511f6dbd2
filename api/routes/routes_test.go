package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"geminibot/internal/conversation"
	"geminibot/internal/events"
	"geminibot/internal/metrics"
	"geminibot/internal/mocks"
	"geminibot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testWebhookSecret = "routes-test-secret-01"

func createTestRouter(t *testing.T, withMetrics bool) (*gin.Engine, *mocks.MockChatbotService) {
	t.Helper()
	return createRouter(t, testWebhookSecret, withMetrics)
}

func createRouter(t *testing.T, webhookSecret string, withMetrics bool) (*gin.Engine, *mocks.MockChatbotService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := &mocks.MockChatbotService{}
	service.On("BotUsername").Return("mock_bot")
	service.On("HandleWebhook", mock.Anything, mock.Anything).Return(nil)

	bus := events.NewMockEventBus()
	conversations := conversation.NewConversationService(nil, bus, zap.NewNop(), "", nil)

	var metricsHandler http.Handler
	if withMetrics {
		collector := metrics.NewCollector()
		require.NoError(t, collector.Subscribe(bus))
		metricsHandler = collector.Handler()
	}

	router := gin.New()
	SetupRoutes(router, logger.New("error"), service, conversations, webhookSecret, metricsHandler)
	return router, service
}

func TestSetupRoutes_HealthEndpoints(t *testing.T) {
	router, _ := createTestRouter(t, false)

	for _, path := range []string{"/health", "/api/v1/health"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, "mock_bot", response["bot"])
		})
	}
}

func TestSetupRoutes_WebhookEndpoint(t *testing.T) {
	router, service := createTestRouter(t, false)

	body := mocks.SimulateWebhookUpdate(1, 2, "hello")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/telegram/webhook/"+testWebhookSecret, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	service.AssertCalled(t, "HandleWebhook", mock.Anything, body)
}

func TestSetupRoutes_WebhookNeedsSecret(t *testing.T) {
	tests := []struct {
		name          string
		webhookSecret string
		path          string
	}{
		{name: "wrong secret", webhookSecret: testWebhookSecret, path: "/api/v1/telegram/webhook/not-the-secret"},
		{name: "another route's secret", webhookSecret: testWebhookSecret, path: "/api/v1/telegram/webhook/" + testWebhookSecret[1:] + "0"},
		{name: "webhook not configured", webhookSecret: "", path: "/api/v1/telegram/webhook/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, service := createRouter(t, tt.webhookSecret, false)

			req := httptest.NewRequest(http.MethodPost, tt.path, bytes.NewReader(mocks.SimulateWebhookUpdate(1, 2, "hello")))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
			service.AssertNotCalled(t, "HandleWebhook", mock.Anything, mock.Anything)
		})
	}
}

func TestSetupRoutes_MetricsEndpoint(t *testing.T) {
	router, _ := createTestRouter(t, true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "geminibot_messages_received_total")
}

func TestSetupRoutes_MetricsDisabled(t *testing.T) {
	router, _ := createTestRouter(t, false)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRoutes_MethodAndPathMismatch(t *testing.T) {
	router, _ := createTestRouter(t, false)

	tests := []struct {
		method string
		path   string
	}{
		{method: http.MethodGet, path: "/api/v1/telegram/webhook/" + testWebhookSecret},
		{method: http.MethodGet, path: "/nonexistent"},
		{method: http.MethodPost, path: "/api/v1/telegram/setup-webhook"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}
