// Package job tracks the lifecycle of asynchronously executed work: an
// opaque identifier is handed to the client at submission time and polled
// until the job reaches a terminal state. The registry is the only shared
// mutable state in the server core.
package job

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

// Possible job status values
const (
	StatusPending Status = "pending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// State is the registry entry for one job. Result is set only for StatusDone,
// Err only for StatusError. Once a job is Done or Error it is terminal and
// never written again.
type State struct {
	Status Status

	// Result is the opaque success payload, already serialized so the poll
	// path can hand it to clients without re-encoding.
	Result json.RawMessage

	Err string

	// FinishedAt is when the job reached a terminal state; zero while pending.
	// Used by the retention reaper.
	FinishedAt time.Time
}

// IDGenerator produces opaque, globally unique job identifiers. Injectable so
// tests can substitute deterministic ids.
type IDGenerator interface {
	NewID() string
}

// SequenceIDGenerator derives ids from a monotonic counter plus a wall-clock
// timestamp, so ids sort roughly by submission time and stay traceable in
// logs. Ids are never reused.
type SequenceIDGenerator struct {
	counter atomic.Uint64
}

// NewSequenceIDGenerator creates the default id generator.
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

// NewID returns the next identifier.
func (g *SequenceIDGenerator) NewID() string {
	seq := g.counter.Add(1)
	return fmt.Sprintf("job-%d-%d", seq, time.Now().UnixNano())
}
