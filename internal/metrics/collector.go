// Package metrics turns bot events into Prometheus series.
package metrics

import (
	"fmt"
	"net/http"

	"geminibot/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geminibot"

// Collector owns a private registry so tests and multiple instances never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	messagesReceived prometheus.Counter
	sessionsStarted  *prometheus.CounterVec
	answersDelivered *prometheus.CounterVec
	replyChunks      prometheus.Counter
	replyFailures    *prometheus.CounterVec
	answerDuration   prometheus.Histogram
}

// NewCollector creates the collector with Go runtime and process metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Inbound text messages, commands included.",
		}),
		sessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Conversations created, by reason and model.",
		}, []string{"reason", "model"}),
		answersDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_delivered_total",
			Help:      "Model answers fully delivered to a chat.",
		}, []string{"model"}),
		replyChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_chunks_total",
			Help:      "Chat messages sent to carry model answers.",
		}),
		replyFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reply_failures_total",
			Help:      "Messages answered with an error, by error code.",
		}, []string{"code"}),
		answerDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "Time the model took to answer.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 16, 32, 64},
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.messagesReceived,
		c.sessionsStarted,
		c.answersDelivered,
		c.replyChunks,
		c.replyFailures,
		c.answerDuration,
	)

	return c
}

// Subscribe attaches the collector to every topic it counts.
func (c *Collector) Subscribe(bus events.EventBus) error {
	subscriptions := map[string]interface{}{
		events.TopicMessageReceived: c.onMessageReceived,
		events.TopicSessionStarted:  c.onSessionStarted,
		events.TopicAnswerDelivered: c.onAnswerDelivered,
		events.TopicReplyFailed:     c.onReplyFailed,
	}
	for topic, handler := range subscriptions {
		if err := bus.Subscribe(topic, handler); err != nil {
			return fmt.Errorf("failed to subscribe metrics to %s: %w", topic, err)
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) onMessageReceived(events.MessageReceived) {
	c.messagesReceived.Inc()
}

func (c *Collector) onSessionStarted(e events.SessionStarted) {
	c.sessionsStarted.WithLabelValues(e.Reason, e.Model).Inc()
}

func (c *Collector) onAnswerDelivered(e events.AnswerDelivered) {
	c.answersDelivered.WithLabelValues(e.Model).Inc()
	c.replyChunks.Add(float64(e.Chunks))
	c.answerDuration.Observe(e.Duration.Seconds())
}

func (c *Collector) onReplyFailed(e events.ReplyFailed) {
	c.replyFailures.WithLabelValues(e.Code).Inc()
}
