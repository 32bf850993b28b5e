// Package events carries the replication trail: an append-only stream of
// step records the engine emits for every attempt, response and finding,
// dispatched to pluggable observability sinks.
package events

import (
	"context"
	"sync"
	"time"
)

// Step identifies which part of a replication run produced an event.
type Step string

const (
	StepCopy       Step = "copy"
	StepNormalize  Step = "normalize"
	StepRegister   Step = "register"
	StepReadBack   Step = "readback"
	StepVerify     Step = "verify"
	StepDiagnostic Step = "diagnostic"
	StepCheckpoint Step = "checkpoint"
)

// Event is one record of the replication trail.
type Event struct {
	Step    Step      `json:"step"`
	Subject string    `json:"subject,omitempty"`
	Version int       `json:"version,omitempty"`
	Outcome string    `json:"outcome"`
	Detail  string    `json:"detail,omitempty"`
	Time    time.Time `json:"time"`
}

// Sink publishes trail events to an external system.
type Sink interface {
	Emit(ctx context.Context, e Event) error
}

// Dispatcher broadcasts events to multiple sinks with bounded retries.
// Sink failures never propagate back into the engine.
type Dispatcher struct {
	sinks        []Sink
	maxAttempts  int
	initialDelay time.Duration
	inflight     sync.WaitGroup
}

// RetryConfig provides dispatcher retry settings.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// NewDispatcher creates a dispatcher from sinks and retry config.
func NewDispatcher(cfg Config, sinks ...Sink) *Dispatcher {
	d := &Dispatcher{maxAttempts: 3, initialDelay: time.Second}
	if cfg.Retry.MaxAttempts > 0 {
		d.maxAttempts = cfg.Retry.MaxAttempts
	}
	if cfg.Retry.InitialDelay > 0 {
		d.initialDelay = cfg.Retry.InitialDelay
	}
	d.sinks = append(d.sinks, sinks...)
	return d
}

// Emit implements Sink, so a Dispatcher can stand wherever a single sink
// is expected. Delivery to the underlying sinks is asynchronous.
func (d *Dispatcher) Emit(ctx context.Context, e Event) error {
	if d == nil {
		return nil
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, s := range d.sinks {
		sink := s
		d.inflight.Add(1)
		go d.retrySend(ctx, sink, e)
	}
	return nil
}

// Close blocks until every in-flight delivery has finished or the given
// context expires. Callers close the dispatcher before the process exits
// so short-lived commands do not drop their trailing events.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) retrySend(ctx context.Context, s Sink, e Event) {
	defer d.inflight.Done()
	delay := d.initialDelay
	for i := 1; i <= d.maxAttempts; i++ {
		if err := s.Emit(ctx, e); err == nil {
			return
		}
		if i == d.maxAttempts {
			return
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		delay *= 2
	}
}
