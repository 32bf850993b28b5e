package events

import (
	"context"
	"sync"
)

// Trail is an in-memory append-only sink. The engine always writes to one
// so a complete record of a run exists even when no external sink is
// configured.
type Trail struct {
	mu      sync.Mutex
	records []Event
}

// NewTrail returns an empty trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Emit appends the event. It never fails.
func (t *Trail) Emit(_ context.Context, e Event) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	t.records = append(t.records, e)
	t.mu.Unlock()
	return nil
}

// Records returns a copy of everything recorded so far.
func (t *Trail) Records() []Event {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.records))
	copy(out, t.records)
	return out
}
