// Package task runs asynchronously submitted jobs on a bounded worker pool.
// Submissions that find the queue full are rejected at admission time rather
// than queued without bound, so backend slowness surfaces as backpressure
// instead of unbounded goroutine growth.
package task

import "context"

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the job identifier the task reports its result under.
	ID() string

	// Type returns the task type identifier, used in logs.
	Type() string

	// Execute runs the task logic. A nil return means the task has
	// recorded its own success state; a non-nil error is recorded as the
	// job's failure by the runner.
	Execute(ctx context.Context) error
}

// QueueReader provides read-only access to the task channel, allowing
// workers to consume tasks without the ability to enqueue.
type QueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// QueueWriter provides write access to the task queue, allowing the
// submission path to enqueue tasks for processing.
type QueueWriter interface {
	// Enqueue adds a task to the queue without blocking.
	// Returns an error if the queue is full or closed.
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}
