// Package service orchestrates the collaborators behind a summarization
// request: transcript retrieval and multi-turn completion. Both the
// synchronous handler and the asynchronous job path go through the same
// service.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tldrd/internal/generation"
)

// SummarizeRequest is the deserialized body of a summarization call.
type SummarizeRequest struct {
	URL string `json:"url"`

	// APIKey is unused by the Ollama backend; kept for UI compatibility.
	APIKey string `json:"api_key,omitempty"`

	// Model overrides the configured default when non-empty.
	Model string `json:"model,omitempty"`

	// SystemPrompt overrides the built-in summarization prompt.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// DryRun returns a canned markdown payload without touching any
	// collaborator. Used by the UI to preview rendering.
	DryRun bool `json:"dry_run"`

	// TranscriptOnly skips generation and returns the raw transcript.
	TranscriptOnly bool `json:"transcript_only"`
}

// SummarizeResult is the success payload for a summarization call.
type SummarizeResult struct {
	Summary   string `json:"summary"`
	Subtitles string `json:"subtitles"`
	VideoName string `json:"video_name"`
}

// ErrMissingURL is returned when a request carries no video reference.
var ErrMissingURL = errors.New("url is required")

// SummaryService produces summaries for video references.
type SummaryService struct {
	transcripts  generation.TranscriptSource
	backend      generation.ChatClient
	summarizer   *generation.Summarizer
	defaultModel string
	language     string
	logger       *slog.Logger
}

// NewSummaryService wires the collaborators together.
func NewSummaryService(
	transcripts generation.TranscriptSource,
	backend generation.ChatClient,
	summarizer *generation.Summarizer,
	defaultModel string,
	language string,
	logger *slog.Logger,
) (*SummaryService, error) {
	if transcripts == nil {
		return nil, errors.New("transcript source cannot be nil")
	}
	if backend == nil {
		return nil, errors.New("chat client cannot be nil")
	}
	if summarizer == nil {
		return nil, errors.New("summarizer cannot be nil")
	}
	if defaultModel == "" {
		return nil, errors.New("default model cannot be empty")
	}

	return &SummaryService{
		transcripts:  transcripts,
		backend:      backend,
		summarizer:   summarizer,
		defaultModel: defaultModel,
		language:     language,
		logger:       logger,
	}, nil
}

// Summarize executes one summarization request end to end. It blocks for the
// full duration of transcript retrieval plus generation, which may be tens of
// seconds; callers decide whether that happens on a connection worker or a
// job worker.
func (s *SummaryService) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResult, error) {
	if req.DryRun {
		return &SummarizeResult{
			Summary:   dryRunMarkdown,
			Subtitles: dryRunMarkdown,
			VideoName: "Dry Run",
		}, nil
	}

	if strings.TrimSpace(req.URL) == "" {
		return nil, ErrMissingURL
	}

	transcript, title, err := s.transcripts.FetchTranscript(ctx, req.URL, s.language)
	if err != nil {
		return nil, fmt.Errorf("transcript error: %w", err)
	}

	if req.TranscriptOnly {
		return &SummarizeResult{
			Summary:   transcript,
			Subtitles: transcript,
			VideoName: title,
		}, nil
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaultModel
	}

	s.logger.Info("starting summarization",
		"video_name", title,
		"model", model,
		"transcript_length", len(transcript))

	summary, err := s.summarizer.Summarize(ctx, model, req.SystemPrompt, transcript)
	if err != nil {
		return nil, fmt.Errorf("generation error: %w", err)
	}

	return &SummarizeResult{
		Summary:   summary,
		Subtitles: transcript,
		VideoName: title,
	}, nil
}

// ListModels reports the backend's available models. Best-effort: failures
// yield an empty slice, never an error.
func (s *SummaryService) ListModels(ctx context.Context) []string {
	return s.backend.ListModels(ctx)
}
