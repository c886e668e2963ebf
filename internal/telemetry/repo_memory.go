package telemetry

import (
	"sync"
	"time"
)

// MemoryRepository keeps the event journal in memory. It is intentionally
// not part of the durable store state; stats reset with the process.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []Event
	nextID int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Record(owner string, eventType EventType, taskID, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, Event{
		ID:        r.nextID,
		Owner:     owner,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		TaskID:    taskID,
		Count:     count,
	})
	r.nextID++
}

// EventsForOwner returns owner's events at or after since, in record order.
func (r *MemoryRepository) EventsForOwner(owner string, since time.Time) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0)
	for _, e := range r.events {
		if e.Owner == owner && !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out
}
