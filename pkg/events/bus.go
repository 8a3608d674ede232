package events

import (
	"sync"
)

// Event names fired by the cart subsystem.
const (
	CartUpdated = "cart_updated"
	CartExpired = "cart_expired"
)

// Event carries a cart change notification.
type Event struct {
	Name      string `json:"name"`
	SessionID string `json:"session_id"`
}

// Handler consumes published events.
type Handler func(Event)

// Bus is a small synchronous in-process publish/subscribe hub. Handlers run on
// the publisher's goroutine, so cart mutations observe their own notifications
// before returning.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every subsequent publish.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers the event to all registered handlers in subscription order.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(evt)
	}
}
