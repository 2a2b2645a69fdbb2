package app

import (
	"sync"

	"hero-quiz-service/internal/domain"
)

// SummaryHub fans points summaries out to live subscribers, per user.
type SummaryHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.PointsSummary]struct{}
}

func NewSummaryHub() *SummaryHub {
	return &SummaryHub{subscribers: make(map[string]map[chan domain.PointsSummary]struct{})}
}

// Subscribe registers a listener for userID and queues initial as its first
// value. The caller must invoke the returned cancel function to avoid leaks.
func (h *SummaryHub) Subscribe(userID string, initial domain.PointsSummary) (<-chan domain.PointsSummary, func()) {
	ch := make(chan domain.PointsSummary, 8)

	h.mu.Lock()
	subs, ok := h.subscribers[userID]
	if !ok {
		subs = make(map[chan domain.PointsSummary]struct{})
		h.subscribers[userID] = subs
	}
	subs[ch] = struct{}{}
	ch <- initial
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[userID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.subscribers, userID)
		}
	}
	return ch, cancel
}

// Publish delivers summary to every subscriber of userID without blocking.
// A subscriber whose buffer is full loses its oldest pending value.
func (h *SummaryHub) Publish(userID string, summary domain.PointsSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[userID] {
		select {
		case ch <- summary:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- summary
		}
	}
}

// Subscribers reports how many listeners userID has.
func (h *SummaryHub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[userID])
}
