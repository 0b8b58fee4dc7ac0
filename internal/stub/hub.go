package stub

import (
	"sync"

	"github.com/mailpane/mailpane/internal/model"
)

// hubBuffer bounds undelivered events per subscriber before the hub
// starts dropping for that subscriber.
const hubBuffer = 16

// Hub fans push events out to all connected stream handlers. Slow
// subscribers lose events instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]chan model.Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan model.Event)}
}

// Subscribe registers a new subscriber. The returned cancel func
// unregisters it and closes the channel; it is safe to call once.
func (h *Hub) Subscribe() (<-chan model.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan model.Event, hubBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber. The
// subscriber set is snapshotted under the read lock so a subscriber
// cancelling mid-publish cannot deadlock the hub.
func (h *Hub) Publish(ev model.Event) {
	h.mu.RLock()
	targets := make([]chan model.Event, 0, len(h.subs))
	for _, ch := range h.subs {
		targets = append(targets, ch)
	}
	h.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len reports the current subscriber count.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
