// Package gemini implements the completion backend contract using Google's
// Gemini API. It is selected by setting backend.provider to "gemini" and
// exists for deployments without a local Ollama server.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"tldrd/internal/config"
	"tldrd/internal/generation"
)

// Client is a generation.ChatClient backed by the Gemini API.
type Client struct {
	client *genai.Client
	logger *slog.Logger
}

// NewClient creates a Client from the backend configuration.
func NewClient(ctx context.Context, cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Client{client: client, logger: logger}, nil
}

// Chat sends the conversation to Gemini. The system message becomes the
// system instruction; assistant turns map to the "model" role. The truncated
// flag is set when the candidate finished on MAX_TOKENS.
//
// Gemini exposes no repeat-penalty or context-window knobs, so those options
// are ignored here.
func (c *Client) Chat(
	ctx context.Context,
	model string,
	messages []generation.Message,
	opts generation.Options,
) (string, bool, error) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case generation.RoleSystem:
			system = m.Content
		case generation.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens: int32(opts.MaxTokensPerTurn),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, genCfg)
	if err != nil {
		var apiErr *genai.APIError
		if errors.As(err, &apiErr) {
			return "", false, &generation.BackendError{
				Status: apiErr.Code,
				Body:   apiErr.Message,
			}
		}
		c.logger.Error("gemini call failed at transport level",
			"model", model,
			"error", err)
		return "", false, fmt.Errorf("%w: %v", generation.ErrBackendUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false, nil
	}

	candidate := resp.Candidates[0]
	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}

	truncated := candidate.FinishReason == genai.FinishReasonMaxTokens
	c.logger.Debug("gemini call completed",
		"model", model,
		"finish_reason", string(candidate.FinishReason),
		"truncated", truncated,
		"content_length", len(text))

	return text, truncated, nil
}

// ListModels returns the available Gemini model names. Best-effort: any
// failure yields an empty slice.
func (c *Client) ListModels(ctx context.Context) []string {
	page, err := c.client.Models.List(ctx, &genai.ListModelsConfig{})
	if err != nil {
		c.logger.Debug("gemini model listing failed", "error", err)
		return nil
	}

	names := make([]string, 0, len(page.Items))
	for _, m := range page.Items {
		if m != nil && m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}
