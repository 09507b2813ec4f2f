package live

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Hub fans poll-result updates out to the WebSocket clients watching each
// poll. One channel per poll.
type Hub struct {
	mu sync.RWMutex

	// watchers maps poll id to the set of connected clients
	watchers map[uuid.UUID]map[*Client]struct{}

	register   chan registration
	unregister chan registration
}

type registration struct {
	client *Client
	pollID uuid.UUID
}

// NewHub creates a hub. Call Run to start its event loop.
func NewHub() *Hub {
	return &Hub{
		watchers:   make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan registration, 256),
		unregister: make(chan registration, 256),
	}
}

// Run processes registrations until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reg := <-h.register:
			h.add(reg)
		case reg := <-h.unregister:
			h.remove(reg)
		}
	}
}

// Watch subscribes a client to a poll's result updates.
func (h *Hub) Watch(client *Client, pollID uuid.UUID) {
	h.register <- registration{client: client, pollID: pollID}
}

// Unwatch removes a client's subscription.
func (h *Hub) Unwatch(client *Client, pollID uuid.UUID) {
	h.unregister <- registration{client: client, pollID: pollID}
}

// Broadcast sends a payload to every client watching the poll.
func (h *Hub) Broadcast(pollID uuid.UUID, payload []byte) {
	h.mu.RLock()
	for c := range h.watchers[pollID] {
		c.SendMessage(payload)
	}
	h.mu.RUnlock()
}

// WatcherCount reports how many clients are watching a poll.
func (h *Hub) WatcherCount(pollID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[pollID])
}

func (h *Hub) add(reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[reg.pollID]
	if !ok {
		set = make(map[*Client]struct{})
		h.watchers[reg.pollID] = set
	}
	set[reg.client] = struct{}{}
}

func (h *Hub) remove(reg registration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.watchers[reg.pollID]
	if !ok {
		return
	}
	delete(set, reg.client)
	if len(set) == 0 {
		delete(h.watchers, reg.pollID)
	}
	reg.client.closeSend()
}
