// Package recent keeps a bounded in-memory buffer of accepted events so
// operators can inspect what the gateway recently let through.
package recent

import (
	"sync"

	"event-ingress-service/internal/models"
)

// DefaultCapacity bounds the buffer when no capacity is given.
const DefaultCapacity = 100

// Buffer is a fixed-capacity ring of accepted events, newest first.
// Safe for concurrent use.
type Buffer struct {
	mu       sync.RWMutex
	capacity int
	events   []models.AcceptedEvent
}

// New creates a buffer holding at most capacity events.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{capacity: capacity}
}

// Add records an accepted event, evicting the oldest when full.
func (b *Buffer) Add(ev models.AcceptedEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	if len(b.events) > b.capacity {
		b.events = b.events[len(b.events)-b.capacity:]
	}
}

// Filter selects the recorded events to return.
type Filter struct {
	TenantID      string
	MinConfidence float64
	Limit         int
}

// List returns buffered events newest first, applying the filter.
// Confidence filtering inspects the original payload when it is an
// InteractionEvent.
func (b *Buffer) List(f Filter) []models.AcceptedEvent {
	b.mu.RLock()
	defer b.mu.RUnlock()

	limit := f.Limit
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}

	out := make([]models.AcceptedEvent, 0, limit)
	for i := len(b.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := b.events[i]
		if f.TenantID != "" && ev.TenantID != f.TenantID {
			continue
		}
		if f.MinConfidence > 0 {
			ie, ok := ev.Payload.(models.InteractionEvent)
			if !ok || ie.Confidence < f.MinConfidence {
				continue
			}
		}
		out = append(out, ev)
	}
	return out
}

// Len returns the number of buffered events.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}
