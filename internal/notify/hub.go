package notify

import (
	"sync"

	"github.com/google/uuid"
	"github.com/intermeet/backend/internal/domain"
)

const subscriberBuffer = 16

// EventType tags what changed in a room's lobby.
type EventType string

const (
	// EventEntryRequested fires when someone new is waiting. Owner views
	// re-fetch the full waiting list rather than trusting the payload, to
	// tolerate missed or reordered events.
	EventEntryRequested EventType = "entry_requested"
	// EventDecision fires when the owner admits or rejects a waiting user.
	EventDecision EventType = "decision"
	// EventRoomEnded fires when the room is deactivated.
	EventRoomEnded EventType = "room_ended"
)

type Event struct {
	Type        EventType          `json:"type"`
	RoomID      uuid.UUID          `json:"room_id"`
	UserID      uuid.UUID          `json:"user_id,omitempty"`
	DisplayName string             `json:"display_name,omitempty"`
	Status      domain.LobbyStatus `json:"status,omitempty"`
}

type Subscriber struct {
	Events chan Event
}

// Hub fans lobby events out to per-room subscribers. Delivery is best effort:
// a subscriber that cannot keep up has events dropped, and clients fall back
// to polling.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(roomID uuid.UUID) *Subscriber {
	sub := &Subscriber{Events: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*Subscriber]struct{})
	}
	h.subs[roomID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(roomID uuid.UUID, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[roomID]; ok {
		if _, ok := subs[sub]; ok {
			delete(subs, sub)
			close(sub.Events)
		}
		if len(subs) == 0 {
			delete(h.subs, roomID)
		}
	}
}

func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// Sends stay under the read lock so Unsubscribe cannot close a channel
	// between the snapshot and the send. They are non-blocking, so the lock
	// is never held waiting on a slow subscriber.
	for sub := range h.subs[event.RoomID] {
		select {
		case sub.Events <- event:
		default:
		}
	}
}
