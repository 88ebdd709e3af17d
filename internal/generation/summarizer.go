package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Summarizer produces generated text for a (system instruction, user content,
// model) triple, transparently resuming generation when the backend reports
// it stopped due to a length limit.
type Summarizer struct {
	client ChatClient
	opts   Options

	// maxContinuations bounds how many extra turns are taken after a
	// truncated one. The total number of backend calls is at most
	// maxContinuations+1.
	maxContinuations int

	logger *slog.Logger
}

// NewSummarizer creates a Summarizer over the given backend client.
func NewSummarizer(client ChatClient, opts Options, maxContinuations int, logger *slog.Logger) *Summarizer {
	if maxContinuations < 0 {
		maxContinuations = 0
	}
	return &Summarizer{
		client:           client,
		opts:             opts,
		maxContinuations: maxContinuations,
		logger:           logger,
	}
}

// Summarize runs the multi-turn completion loop and returns the generated
// text accumulated across all turns. An empty systemPrompt selects
// DefaultSystemPrompt.
//
// Every turn's output is kept, including a final truncated one: exhausting
// the continuation budget returns what was produced so far, not an error.
func (s *Summarizer) Summarize(ctx context.Context, model, systemPrompt, userContent string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	conversation := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: userContent},
	}

	var accumulated strings.Builder
	turns := 0

	for {
		text, truncated, err := s.client.Chat(ctx, model, conversation, s.opts)
		if err != nil {
			return "", fmt.Errorf("completion turn %d: %w", turns+1, err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("completion turn %d: %w", turns+1, ErrEmptyResponse)
		}

		accumulated.WriteString(text)
		turns++

		if !truncated {
			break
		}
		if turns > s.maxContinuations {
			s.logger.Warn("continuation budget exhausted, returning partial output",
				"model", model,
				"turns", turns,
				"accumulated_length", accumulated.Len())
			break
		}

		s.logger.Debug("output truncated, requesting continuation",
			"model", model,
			"turn", turns,
			"accumulated_length", accumulated.Len())

		conversation = append(conversation,
			Message{Role: RoleAssistant, Content: text},
			Message{Role: RoleUser, Content: continuationPrompt},
		)
	}

	s.logger.Info("summary generated",
		"model", model,
		"turns", turns,
		"length", accumulated.Len())

	return accumulated.String(), nil
}
