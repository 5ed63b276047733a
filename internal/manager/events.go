package manager

import (
	"time"

	"github.com/jmylchreest/popstack/internal/popup"
)

// EventType identifies a lifecycle event published by the manager.
type EventType int

const (
	// EventOpen is raised when a popup finishes opening.
	EventOpen EventType = iota
	// EventClose is raised when a popup leaves the stack.
	EventClose
	// EventAllClosed is raised when the stack and queue are both empty.
	EventAllClosed
	// EventOverlayClicked is raised when the overlay behind the top popup is clicked.
	EventOverlayClicked
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	switch t {
	case EventOpen:
		return "open"
	case EventClose:
		return "close"
	case EventAllClosed:
		return "all-closed"
	case EventOverlayClicked:
		return "overlay-clicked"
	default:
		return "unknown"
	}
}

// Event is a lifecycle notification. Popup is nil for EventAllClosed.
type Event struct {
	Type  EventType
	Popup popup.Popup
	Time  time.Time
}

// String returns a compact form such as "open:settings#9G5FAV".
func (e Event) String() string {
	if e.Popup == nil {
		return e.Type.String()
	}
	return e.Type.String() + ":" + string(e.Popup.Kind()) + "#" + popup.ShortID(e.Popup.ID())
}

// Subscribe returns a channel that receives lifecycle events.
// Delivery never blocks the manager: a subscriber whose buffer is full
// misses events. The channel is closed by Unsubscribe or Shutdown.
func (m *Manager) Subscribe() <-chan Event {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	ch := make(chan Event, m.eventBuffer)
	if m.closed {
		close(ch)
		return ch
	}
	m.subscribers = append(m.subscribers, ch)
	return ch
}

// Unsubscribe stops delivery to ch and closes it.
func (m *Manager) Unsubscribe(ch <-chan Event) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Shutdown closes every subscription. Later subscriptions are returned closed.
func (m *Manager) Shutdown() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
}

// publish delivers an event to all subscribers (non-blocking).
func (m *Manager) publish(t EventType, p popup.Popup) {
	ev := Event{Type: t, Popup: p, Time: m.now()}

	m.subMu.Lock()
	defer m.subMu.Unlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- ev:
		default:
			m.logger.Warn("event subscriber full, dropping event", "event", t.String())
		}
	}
}
