package websocket

import (
	"sync"

	"github.com/stemsi/class-subjects/internal/model"
)

// subscriberBuffer is how many records a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 16

// Hub fans newly stored records out to live feed subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan model.SubjectsRecord]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan model.SubjectsRecord]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release it; the channel is closed afterwards.
func (h *Hub) Subscribe() (<-chan model.SubjectsRecord, func()) {
	ch := make(chan model.SubjectsRecord, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[ch]; ok {
				delete(h.subs, ch)
				close(ch)
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers rec to every subscriber without blocking. Returns the
// number of subscribers that received it.
func (h *Hub) Publish(rec model.SubjectsRecord) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for ch := range h.subs {
		select {
		case ch <- rec:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every subscriber. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
