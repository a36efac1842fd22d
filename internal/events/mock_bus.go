package events

import (
	"fmt"
	"reflect"
	"sync"
)

// MockEventBus provides an in-memory implementation of EventBus for testing.
// Handlers are invoked synchronously on the publisher's goroutine.
type MockEventBus struct {
	mutex           sync.RWMutex
	subscriptions   map[string][]interface{}
	publishedEvents map[string][]interface{}
	failTopics      map[string]error
	closed          bool
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscriptions:   make(map[string][]interface{}),
		publishedEvents: make(map[string][]interface{}),
		failTopics:      make(map[string]error),
	}
}

// FailPublish makes every Publish on topic return err.
func (m *MockEventBus) FailPublish(topic string, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failTopics[topic] = err
}

func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	if reflect.TypeOf(handler) == nil || reflect.TypeOf(handler).Kind() != reflect.Func {
		return fmt.Errorf("%s is not of type reflect.Func", reflect.TypeOf(handler))
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

func (m *MockEventBus) SubscribeAsync(topic string, handler interface{}) error {
	return m.Subscribe(topic, handler)
}

func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	handlers := m.subscriptions[topic]
	target := reflect.ValueOf(handler).Pointer()
	for i, h := range handlers {
		if reflect.ValueOf(h).Pointer() == target {
			m.subscriptions[topic] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("topic %s doesn't exist", topic)
}

func (m *MockEventBus) Publish(topic string, event interface{}) error {
	m.mutex.Lock()
	if m.closed {
		m.mutex.Unlock()
		return fmt.Errorf("event bus is closed")
	}
	if err, ok := m.failTopics[topic]; ok {
		m.mutex.Unlock()
		return err
	}
	m.publishedEvents[topic] = append(m.publishedEvents[topic], event)
	handlers := append([]interface{}(nil), m.subscriptions[topic]...)
	m.mutex.Unlock()

	// Trigger handlers outside of the mutex to avoid deadlocks
	args := []reflect.Value{reflect.ValueOf(event)}
	for _, handler := range handlers {
		reflect.ValueOf(handler).Call(args)
	}
	return nil
}

func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}

// GetPublishedEvents returns published events for a topic
func (m *MockEventBus) GetPublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]interface{}(nil), m.publishedEvents[topic]...)
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
