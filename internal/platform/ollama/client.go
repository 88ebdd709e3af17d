// Package ollama implements the completion backend contract against a local
// Ollama server's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tldrd/internal/config"
	"tldrd/internal/generation"
)

// listModelsTimeout bounds the best-effort /api/tags lookup, which must not
// inherit the (possibly unbounded) chat timeout.
const listModelsTimeout = 5 * time.Second

// Client is a generation.ChatClient speaking the Ollama chat API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the configured Ollama server. A zero
// cfg.Timeout leaves chat calls unbounded, matching a backend that may
// legitimately take minutes on large models.
func NewClient(cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", generation.ErrInvalidConfig)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatOptions struct {
	NumCtx        int     `json:"num_ctx,omitempty"`
	NumPredict    int     `json:"num_predict,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	DoneReason string `json:"done_reason"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Chat sends the conversation to /api/chat and returns the generated text.
// The truncated flag is set when Ollama reports it stopped on its token
// limit (done_reason "length").
func (c *Client) Chat(
	ctx context.Context,
	model string,
	messages []generation.Message,
	opts generation.Options,
) (string, bool, error) {
	reqBody := chatRequest{
		Model:    model,
		Messages: make([]chatMessage, 0, len(messages)),
		// Non-streaming keeps the framing trivial: one JSON object per call.
		Stream: false,
		Options: chatOptions{
			NumCtx:        opts.ContextWindow,
			NumPredict:    opts.MaxTokensPerTurn,
			Temperature:   opts.Temperature,
			RepeatPenalty: opts.RepeatPenalty,
		},
	}
	for _, m := range messages {
		reqBody.Messages = append(reqBody.Messages, chatMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode chat request: %w", err)
	}

	url := c.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("chat call failed at transport level",
			"model", model,
			"error", err)
		return "", false, fmt.Errorf("%w: %v", generation.ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("%w: reading response: %v", generation.ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", false, c.backendError(ctx, model, resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, &generation.BackendError{
			Status: resp.StatusCode,
			Body:   fmt.Sprintf("malformed chat response: %v", err),
		}
	}

	truncated := parsed.DoneReason == "length"
	c.logger.Debug("chat call completed",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"done_reason", parsed.DoneReason,
		"truncated", truncated,
		"content_length", len(parsed.Message.Content))

	return parsed.Message.Content, truncated, nil
}

// backendError builds the *BackendError for a non-2xx chat response. When the
// body suggests the requested model is absent, it makes one best-effort
// lookup of installed models to enrich the message; a failed lookup is
// swallowed and the original error text is returned.
func (c *Client) backendError(ctx context.Context, model string, status int, body string) error {
	if status != http.StatusNotFound && !strings.Contains(body, "not found") {
		return &generation.BackendError{Status: status, Body: body}
	}

	names := c.ListModels(ctx)
	suggestion := "No local models found. Pull one, e.g.: ollama pull llama3:8b"
	if len(names) > 0 {
		suggestion = "Installed models: " + strings.Join(names, ", ")
	}

	return &generation.BackendError{
		Status: status,
		Body: fmt.Sprintf("Model '%s' not found. Pull it with: ollama pull %s. %s",
			model, model, suggestion),
	}
}

// ListModels returns the names reported by /api/tags. Best-effort: any
// failure yields an empty slice.
func (c *Client) ListModels(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, listModelsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("model listing failed", "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}

	var parsed tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil
	}

	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return names
}
