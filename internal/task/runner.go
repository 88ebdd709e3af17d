package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"tldrd/internal/job"
	"tldrd/internal/metrics"
)

// RunnerConfig holds configuration for the job runner.
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background job processing. Task failures, including
// panics, are converted into Error entries in the job registry; one task's
// failure never stops the pool.
type Runner struct {
	registry  job.Registry
	queue     *Queue
	wg        sync.WaitGroup
	config    RunnerConfig
	logger    *slog.Logger
	collector *metrics.Collector
	started   bool
}

// NewRunner creates a new Runner. collector may be nil.
func NewRunner(registry job.Registry, config RunnerConfig, collector *metrics.Collector, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}

	return &Runner{
		registry:  registry,
		queue:     NewQueue(config.QueueSize, logger),
		config:    config,
		logger:    logger,
		collector: collector,
	}
}

// Submit adds a new task to the queue. The task's registry entry must
// already exist (as Pending) before Submit is called; on a full queue the
// caller rolls that entry back.
func (r *Runner) Submit(task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}
	r.collector.RecordJobSubmitted()
	return nil
}

// Start launches the worker pool.
func (r *Runner) Start() {
	if r.started {
		return
	}
	r.started = true

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop closes the queue and waits for in-flight tasks to finish. Submitted
// jobs always run to completion; there is no cancellation of in-flight work.
func (r *Runner) Stop() {
	r.queue.Close()
	r.wg.Wait()
}

// worker processes tasks from the queue until the channel is closed.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting job worker", "worker_id", id)

	for task := range r.queue.GetChannel() {
		r.processTask(task, id)
	}

	r.logger.Debug("task channel closed, stopping job worker", "worker_id", id)
}

// processTask handles execution of a single task. The task records its own
// success state; the runner records failures, so for any given job id there
// is exactly one writer moving it out of Pending.
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"job_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("task panicked", "panic", rec)
			r.failJob(task, logger, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	logger.Info("processing job")

	if err := task.Execute(context.Background()); err != nil {
		logger.Error("job execution failed", "error", err)
		r.failJob(task, logger, err.Error())
		return
	}

	logger.Info("job completed successfully")
	r.collector.RecordJobCompleted()
}

func (r *Runner) failJob(task Task, logger *slog.Logger, message string) {
	r.collector.RecordJobFailed()
	if err := r.registry.Fail(task.ID(), message); err != nil {
		// Either the entry was reaped or the task already recorded a
		// terminal state before failing; nothing more to do.
		logger.Warn("failed to record job failure", "error", err)
	}
}
