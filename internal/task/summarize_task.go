package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"tldrd/internal/job"
	"tldrd/internal/service"
)

// Task type identifiers
const (
	TypeSummarize      = "summarize"
	TypeTranscriptOnly = "transcript_only"
)

// SummarizeTask executes one summarization request in the background and
// writes the outcome into the job registry.
type SummarizeTask struct {
	id       string
	request  service.SummarizeRequest
	service  SummarizeService
	registry job.Registry
	logger   *slog.Logger
}

// SummarizeService is the subset of the summary service a task needs.
type SummarizeService interface {
	Summarize(ctx context.Context, req service.SummarizeRequest) (*service.SummarizeResult, error)
}

// NewSummarizeTask creates a task reporting under the given job id.
func NewSummarizeTask(
	id string,
	request service.SummarizeRequest,
	svc SummarizeService,
	registry job.Registry,
	logger *slog.Logger,
) *SummarizeTask {
	return &SummarizeTask{
		id:       id,
		request:  request,
		service:  svc,
		registry: registry,
		logger:   logger,
	}
}

// ID returns the job identifier.
func (t *SummarizeTask) ID() string { return t.id }

// Type returns the task type identifier.
func (t *SummarizeTask) Type() string {
	if t.request.TranscriptOnly {
		return TypeTranscriptOnly
	}
	return TypeSummarize
}

// Execute runs the summarization and records the Done state on success.
// Failures are returned to the runner, which records the Error state.
func (t *SummarizeTask) Execute(ctx context.Context) error {
	result, err := t.service.Summarize(ctx, t.request)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode job result: %w", err)
	}

	if err := t.registry.Complete(t.id, payload); err != nil {
		return fmt.Errorf("failed to record job result: %w", err)
	}

	t.logger.Debug("job result recorded",
		"job_id", t.id,
		"video_name", result.VideoName,
		"summary_length", len(result.Summary))

	return nil
}
