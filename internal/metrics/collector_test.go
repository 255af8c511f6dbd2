package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"geminibot/internal/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newSubscribedCollector(t *testing.T) (*Collector, *events.MockEventBus) {
	t.Helper()

	bus := events.NewMockEventBus()
	c := NewCollector()
	require.NoError(t, c.Subscribe(bus))
	return c, bus
}

func TestCollector_CountsEvents(t *testing.T) {
	c, bus := newSubscribedCollector(t)

	require.NoError(t, bus.Publish(events.TopicMessageReceived, events.MessageReceived{
		Event: events.NewEvent(), ChatID: 1, Text: "hi",
	}))
	require.NoError(t, bus.Publish(events.TopicMessageReceived, events.MessageReceived{
		Event: events.NewEvent(), ChatID: 1, Text: "/reset", IsCommand: true,
	}))
	require.NoError(t, bus.Publish(events.TopicSessionStarted, events.SessionStarted{
		Event: events.NewEvent(), ChatID: 1, Model: "gemini-2.5-flash", Reason: events.ReasonImplicit,
	}))
	require.NoError(t, bus.Publish(events.TopicAnswerDelivered, events.AnswerDelivered{
		Event: events.NewEvent(), ChatID: 1, Model: "gemini-2.5-flash", Chunks: 3, AnswerLength: 9000, Duration: 2 * time.Second,
	}))
	require.NoError(t, bus.Publish(events.TopicReplyFailed, events.ReplyFailed{
		Event: events.NewEvent(), ChatID: 1, Model: "gemini-2.5-flash", Code: "RATE_LIMIT_EXCEEDED", Error: "rate limit exceeded",
	}))

	assert.Empty(t, bus.Errors())
	assert.Equal(t, 2.0, testutil.ToFloat64(c.messagesReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sessionsStarted.WithLabelValues(events.ReasonImplicit, "gemini-2.5-flash")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.answersDelivered.WithLabelValues("gemini-2.5-flash")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.replyChunks))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.replyFailures.WithLabelValues("RATE_LIMIT_EXCEEDED")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.answerDuration))
}

func TestCollector_Handler(t *testing.T) {
	c, bus := newSubscribedCollector(t)
	require.NoError(t, bus.Publish(events.TopicMessageReceived, events.MessageReceived{
		Event: events.NewEvent(), ChatID: 1, Text: "hi",
	}))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "geminibot_messages_received_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestCollector_SubscribeOnClosedBus(t *testing.T) {
	bus := events.NewEventBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Close())

	err := NewCollector().Subscribe(bus)

	assert.ErrorIs(t, err, events.ErrBusClosed)
}
