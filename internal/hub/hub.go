// Package hub fans live events out to subscribers of a conversation channel.
package hub

import (
	"sync"
	"time"
)

// Event kinds delivered to subscribers.
const (
	EventNewMessage    = "new-message"
	EventStatusUpdated = "message-status-updated"
)

// Event is one live update scoped to a conversation.
type Event struct {
	Kind           string      `json:"event"`
	ConversationID string      `json:"conversationId"`
	Payload        interface{} `json:"payload"`
}

// MessagePayload is the payload of a new-message event: the full message
// as the UI renders it.
type MessagePayload struct {
	ConversationID string    `json:"conversationId"`
	ExternalID     string    `json:"externalMessageId"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	Timestamp      time.Time `json:"timestamp"`
	ContentType    string    `json:"contentType"`
	Body           string    `json:"body"`
	Status         string    `json:"status"`
	SenderName     string    `json:"senderDisplayName"`
}

// StatusPayload is the payload of a message-status-updated event.
type StatusPayload struct {
	ExternalID string    `json:"externalMessageId"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"recordUpdatedAt"`
}

// Subscriber receives events for the conversations it joined. Deliver must
// not block; implementations buffer or drop.
type Subscriber interface {
	Deliver(ev Event)
}

// Publisher is the write side of the hub, all the pipeline needs.
type Publisher interface {
	Publish(conversationID string, ev Event)
}

// Hub groups subscribers by conversation ID. Delivery is best-effort and
// at-most-once: subscribers absent at publish time never see the event.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{rooms: make(map[string]map[Subscriber]struct{})}
}

// Subscribe joins a subscriber to a conversation channel. Idempotent.
func (h *Hub) Subscribe(conversationID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[Subscriber]struct{})
	}
	h.rooms[conversationID][s] = struct{}{}
}

// Unsubscribe removes a subscriber from a conversation channel. Idempotent;
// empty channels are dropped.
func (h *Hub) Unsubscribe(conversationID string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, conversationID)
	}
}

// Publish delivers the event to every current subscriber of the channel.
func (h *Hub) Publish(conversationID string, ev Event) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.rooms[conversationID]))
	for s := range h.rooms[conversationID] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		s.Deliver(ev)
	}
}

// SubscriberCount reports how many subscribers a channel currently has.
func (h *Hub) SubscriberCount(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

var _ Publisher = (*Hub)(nil)
