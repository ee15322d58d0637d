package app

import (
	"sync"

	"peer-challenge-service/internal/domain"
)

// EventType labels a lifecycle event.
type EventType string

const (
	EventInvited   EventType = "invited"
	EventResponded EventType = "responded"
	EventStarted   EventType = "started"
	EventSubmitted EventType = "submitted"
	EventCompleted EventType = "completed"
	EventExpired   EventType = "expired"
)

// Event is broadcast to subscribers and published to the notifier on
// every lifecycle transition. Challenge is a snapshot taken after the
// transition was persisted.
type Event struct {
	Type          EventType        `json:"type"`
	ChallengeCode string           `json:"challengeCode"`
	UserID        string           `json:"userId,omitempty"`
	Challenge     domain.Challenge `json:"challenge"`
}

// eventHub fans lifecycle events out to per-challenge subscribers.
type eventHub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

func (h *eventHub) subscribe(code string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[string]map[chan Event]struct{})
	}
	if h.subs[code] == nil {
		h.subs[code] = make(map[chan Event]struct{})
	}
	h.subs[code][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[code]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, code)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *eventHub) broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[event.ChallengeCode] {
		select {
		case ch <- event:
		default:
			// Drop the oldest pending event so slow consumers lag
			// instead of blocking the operation that triggered this.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
