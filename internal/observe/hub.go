// Package observe implements the messaging core's observability dashboard
// (spec.md §4.9, ambient): a Hub that fans out auditlog events to
// Server-Sent-Event subscribers, and an HTTP handler that streams them.
// This is pure observability — it never feeds back into wave semantics.
//
// Grounded on the teacher's internal/webui/sse.go and sse_broker.go: a
// register/unregister/broadcast channel loop guarding a client set, with a
// Emit method that drops on a full buffer rather than blocking the
// emitter that's feeding it.
package observe

import (
	"sync"

	"github.com/starlane-io/starlane/internal/auditlog"
)

// Hub manages SSE subscriber channels and fans out auditlog events to all
// of them. It implements auditlog.Emitter so it can sit directly in a
// star's emitter chain alongside the NDJSON file emitter.
type Hub struct {
	clients    map[chan auditlog.Event]struct{}
	register   chan chan auditlog.Event
	unregister chan chan auditlog.Event
	broadcast  chan auditlog.Event
	stop       chan struct{}
	mu         sync.RWMutex
}

// NewHub builds a Hub. Call Run in a goroutine before subscribing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[chan auditlog.Event]struct{}),
		register:   make(chan chan auditlog.Event),
		unregister: make(chan chan auditlog.Event),
		broadcast:  make(chan auditlog.Event, 256),
		stop:       make(chan struct{}),
	}
}

// Run drives the Hub's event loop until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client <- ev:
				default:
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			h.mu.Lock()
			for client := range h.clients {
				close(client)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the Hub's event loop down.
func (h *Hub) Stop() {
	select {
	case h.stop <- struct{}{}:
	default:
	}
}

// Subscribe registers a new subscriber and returns its event channel.
func (h *Hub) Subscribe() chan auditlog.Event {
	ch := make(chan auditlog.Event, 64)
	h.register <- ch
	return ch
}

// Unsubscribe removes a subscriber.
func (h *Hub) Unsubscribe(ch chan auditlog.Event) {
	h.unregister <- ch
}

// Emit implements auditlog.Emitter: it publishes ev to every subscriber,
// dropping it if a subscriber's buffer is full rather than blocking.
func (h *Hub) Emit(ev auditlog.Event) {
	select {
	case h.broadcast <- ev:
	default:
	}
}
