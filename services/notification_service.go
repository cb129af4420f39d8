package services

import (
	"sync"

	"github.com/rs/zerolog"
)

// Notification is the tuple handed to the delivery collaborator when
// staff are assigned or messaged. Delivery is fire-and-forget; the
// engine never waits on it.
type Notification struct {
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	RelatedID string `json:"related_id"`
}

// NotifierInterface defines the interface for notification delivery
type NotifierInterface interface {
	Notify(n Notification)
}

// LogNotifier is the default delivery collaborator: it records the
// notification in the log. Real push delivery is wired in externally.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that writes to the application log.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(notification Notification) {
	n.log.Info().
		Str("user_id", notification.UserID).
		Str("type", notification.Type).
		Str("title", notification.Title).
		Str("related_id", notification.RelatedID).
		Msg("notification dispatched")
}

// MockNotifier records notifications for test assertions.
type MockNotifier struct {
	mu   sync.Mutex
	sent []Notification
}

// NewMockNotifier creates a recording notifier for tests.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Notify records the notification.
func (m *MockNotifier) Notify(n Notification) {
	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()
}

// Sent returns a copy of every recorded notification.
func (m *MockNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Clear removes all recorded notifications.
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
