package orders

import (
	"sync"
	"time"
)

// EventType identifies an orchestrator state transition.
type EventType string

const (
	EventBranchSelected    EventType = "branch_selected"
	EventViewRefreshed     EventType = "view_refreshed"
	EventMutationCommitted EventType = "mutation_committed"
	EventMutationFailed    EventType = "mutation_failed"
	EventOperationFailed   EventType = "operation_failed"
)

// Event is published to subscribers on every notable state transition, so the
// UI can follow the orchestrator instead of polling its snapshot.
type Event struct {
	Type     EventType `json:"type"`
	BranchID *int      `json:"branchId,omitempty"`
	ViewMode ViewMode  `json:"viewMode,omitempty"`
	OrderID  string    `json:"orderId,omitempty"`
	Action   string    `json:"action,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}

const subscriberBuffer = 16

// hub fans events out to subscribers. Sends never block: a subscriber that
// stops draining its channel loses events rather than stalling the
// orchestrator.
type hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newHub() *hub {
	return &hub{subs: make(map[int]chan Event)}
}

func (h *hub) subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

func (h *hub) publish(ev Event) {
	ev.At = time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
