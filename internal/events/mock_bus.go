package events

import (
	"fmt"
	"sync"
	"time"
)

// MockEventBus records published events and delivers them synchronously to
// handlers registered with Subscribe. It is meant for tests.
type MockEventBus struct {
	mutex           sync.RWMutex
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	publishErr      error
	errors          []error
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
	}
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// Unsubscribe implements the EventBus interface
func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handlers := m.subscriptions[topic]
	for i := len(handlers) - 1; i >= 0; i-- {
		if fmt.Sprintf("%p", handlers[i]) == fmt.Sprintf("%p", handler) {
			handlers = append(handlers[:i], handlers[i+1:]...)
		}
	}
	m.subscriptions[topic] = handlers
	return nil
}

// Publish implements the EventBus interface
func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mutex.Lock()
	if m.publishErr != nil {
		err := m.publishErr
		m.mutex.Unlock()
		return err
	}
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := make([]interface{}, len(m.subscriptions[topic]))
	copy(handlers, m.subscriptions[topic])
	m.mutex.Unlock()

	// Handlers run outside the lock so they may publish themselves.
	for _, handler := range handlers {
		m.invokeHandler(handler, event)
	}
	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions = make(map[string][]interface{})
	return nil
}

// FailPublish makes every later Publish return err. Pass nil to recover.
func (m *MockEventBus) FailPublish(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishErr = err
}

// GetPublishedEvents returns published events for a topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	result := make([]interface{}, len(m.publishedEvents[topic]))
	copy(result, m.publishedEvents[topic])
	return result
}

// GetSubscriberCount returns the number of subscribers for a topic
func (m *MockEventBus) GetSubscriberCount(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.subscriptions[topic])
}

// ClearEvents resets all published events
func (m *MockEventBus) ClearEvents() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishedEvents = make(map[string][]interface{})
}

// Errors returns handler panics and type mismatches seen so far.
func (m *MockEventBus) Errors() []error {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]error(nil), m.errors...)
}

// WaitForEvent waits for an event to be published on a topic
func (m *MockEventBus) WaitForEvent(topic string, timeout time.Duration) (interface{}, error) {
	deadline := time.Now().Add(timeout)
	for {
		if published := m.GetPublishedEvents(topic); len(published) > 0 {
			return published[len(published)-1], nil
		}
		if time.Now().After(deadline) {
			return nil, &TimeoutError{Topic: topic, Timeout: timeout}
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (m *MockEventBus) invokeHandler(handler interface{}, event interface{}) {
	defer func() {
		if r := recover(); r != nil {
			m.recordError(fmt.Errorf("handler panic: %v", r))
		}
	}()

	invoked := false
	switch h := handler.(type) {
	case func(MessageReceived):
		if e, ok := event.(MessageReceived); ok {
			h(e)
			invoked = true
		}
	case func(SessionStarted):
		if e, ok := event.(SessionStarted); ok {
			h(e)
			invoked = true
		}
	case func(AnswerDelivered):
		if e, ok := event.(AnswerDelivered); ok {
			h(e)
			invoked = true
		}
	case func(ReplyFailed):
		if e, ok := event.(ReplyFailed); ok {
			h(e)
			invoked = true
		}
	case func(interface{}):
		h(event)
		invoked = true
	}

	if !invoked {
		m.recordError(fmt.Errorf("type mismatch: handler %T does not accept %T", handler, event))
	}
}

func (m *MockEventBus) recordError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errors = append(m.errors, err)
}

// TimeoutError is returned by WaitForEvent when nothing arrives in time
type TimeoutError struct {
	Topic   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for event on topic %s after %v", e.Topic, e.Timeout)
}
