package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fulluproar/backoffice/internal/domain/shared"
)

// RecordingEventHandler is a shared.EventHandler that keeps every event it
// is given and can be told to fail
type RecordingEventHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

// NewRecordingEventHandler creates a handler for eventTypes; none means all
func NewRecordingEventHandler(eventTypes ...string) *RecordingEventHandler {
	return &RecordingEventHandler{eventTypes: eventTypes}
}

// EventTypes returns the event types this handler subscribes to
func (h *RecordingEventHandler) EventTypes() []string {
	return h.eventTypes
}

// Handle records the event and returns the configured error
func (h *RecordingEventHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

// Handled returns a copy of the recorded events
func (h *RecordingEventHandler) Handled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.handled))
	copy(out, h.handled)
	return out
}

// HandledOfType returns the recorded events of one type
func (h *RecordingEventHandler) HandledOfType(eventType string) []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range h.handled {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// HandledCount returns the number of recorded events
func (h *RecordingEventHandler) HandledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

// SetError makes Handle return err
func (h *RecordingEventHandler) SetError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

// Reset drops the recorded events and clears the error
func (h *RecordingEventHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = nil
	h.err = nil
}

// WaitForEventCount waits until at least count events were recorded
func (h *RecordingEventHandler) WaitForEventCount(count int, timeout time.Duration) bool {
	return WaitForCondition(func() bool {
		return h.HandledCount() >= count
	}, timeout, 10*time.Millisecond)
}

// TestEvent is a bare domain event
type TestEvent struct {
	shared.BaseDomainEvent
}

// NewTestEvent creates a TestEvent raised by a card session
func NewTestEvent(eventType string, sessionID uuid.UUID) *TestEvent {
	return &TestEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        uuid.New(),
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     sessionID,
			AggType:   "CardSession",
		},
	}
}
