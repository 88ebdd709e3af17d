package job

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Common errors returned by the registry
var (
	ErrNotFound = errors.New("job not found")

	// ErrTerminal is returned on an attempt to transition a job that has
	// already reached Done or Error.
	ErrTerminal = errors.New("job already in a terminal state")
)

// Registry is a shared mapping from job id to lifecycle state, safe for
// concurrent use from job workers and the polling path.
type Registry interface {
	// Create inserts a new id in StatusPending. The entry must be visible
	// before the id is returned to the submitting client, so a poll issued
	// immediately after submission never reports not-found.
	Create(id string) error

	// Complete transitions id to StatusDone with the given payload.
	Complete(id string, result json.RawMessage) error

	// Fail transitions id to StatusError with a human-readable message.
	Fail(id string, message string) error

	// Get returns the current state of id.
	Get(id string) (State, bool)

	// Delete removes id regardless of state. Used to roll back a
	// provisional entry when submission is rejected, and by the reaper.
	Delete(id string)
}

// InMemoryRegistry is the default Registry. A single mutex guards the map;
// it is held only for the duration of a map operation, never across a
// backend call.
type InMemoryRegistry struct {
	mu     sync.Mutex
	jobs   map[string]State
	logger *slog.Logger

	stopReaper chan struct{}
	reaperOnce sync.Once
}

// NewInMemoryRegistry creates an empty registry.
func NewInMemoryRegistry(logger *slog.Logger) *InMemoryRegistry {
	return &InMemoryRegistry{
		jobs:       make(map[string]State),
		logger:     logger,
		stopReaper: make(chan struct{}),
	}
}

// Create inserts id as pending.
func (r *InMemoryRegistry) Create(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[id]; exists {
		return errors.New("job id already registered")
	}
	r.jobs[id] = State{Status: StatusPending}
	return nil
}

// Complete marks id done with the given result.
func (r *InMemoryRegistry) Complete(id string, result json.RawMessage) error {
	return r.transition(id, State{
		Status:     StatusDone,
		Result:     result,
		FinishedAt: time.Now(),
	})
}

// Fail marks id failed with the given message.
func (r *InMemoryRegistry) Fail(id string, message string) error {
	return r.transition(id, State{
		Status:     StatusError,
		Err:        message,
		FinishedAt: time.Now(),
	})
}

// transition enforces the terminal-once invariant: exactly one writer moves
// a given id away from pending.
func (r *InMemoryRegistry) transition(id string, next State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.jobs[id]
	if !exists {
		return ErrNotFound
	}
	if current.Status != StatusPending {
		return ErrTerminal
	}
	r.jobs[id] = next
	return nil
}

// Get returns the state of id.
func (r *InMemoryRegistry) Get(id string) (State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.jobs[id]
	return state, ok
}

// Delete removes id.
func (r *InMemoryRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.jobs, id)
}

// Len reports how many entries the registry currently holds.
func (r *InMemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.jobs)
}

// StartReaper begins periodically removing terminal entries older than
// retention. A zero retention disables reaping entirely and entries live for
// the lifetime of the process. Pending entries are never reaped.
func (r *InMemoryRegistry) StartReaper(retention, interval time.Duration) {
	if retention <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.stopReaper:
				return
			case <-ticker.C:
				r.reap(retention)
			}
		}
	}()
}

// StopReaper shuts the reaper goroutine down. Safe to call more than once.
func (r *InMemoryRegistry) StopReaper() {
	r.reaperOnce.Do(func() { close(r.stopReaper) })
}

func (r *InMemoryRegistry) reap(retention time.Duration) {
	cutoff := time.Now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	reaped := 0
	for id, state := range r.jobs {
		if state.Status != StatusPending && state.FinishedAt.Before(cutoff) {
			delete(r.jobs, id)
			reaped++
		}
	}
	if reaped > 0 {
		r.logger.Debug("reaped expired job results",
			"reaped", reaped,
			"remaining", len(r.jobs))
	}
}
