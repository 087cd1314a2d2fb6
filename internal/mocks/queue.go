package mocks

import "sync"

// PublishedMessage records one Publish call.
type PublishedMessage struct {
	Subject string
	Data    []byte
}

// MockMessageQueue records published events so tests can assert on them.
type MockMessageQueue struct {
	mu        sync.Mutex
	Published []PublishedMessage

	PublishFunc func(subject string, data []byte) error
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{}
}

func (m *MockMessageQueue) Publish(subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(subject, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, PublishedMessage{Subject: subject, Data: data})
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(data []byte) error) error {
	return nil
}

func (m *MockMessageQueue) Close() error {
	return nil
}

// PublishedSubjects returns the subjects of every recorded publish, in order.
func (m *MockMessageQueue) PublishedSubjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	subjects := make([]string, 0, len(m.Published))
	for _, p := range m.Published {
		subjects = append(subjects, p.Subject)
	}
	return subjects
}
