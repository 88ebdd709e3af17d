package generation

import "context"

// Role tags a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in an accumulating conversation.
type Message struct {
	Role    Role
	Content string
}

// Options carries the per-turn generation tunables sent with every
// completion request.
type Options struct {
	// ContextWindow is the backend's token context size for the request.
	ContextWindow int

	// MaxTokensPerTurn caps how many tokens a single turn may generate.
	// Hitting this cap is what produces a truncated turn.
	MaxTokensPerTurn int

	Temperature   float64
	RepeatPenalty float64
}

// ChatClient is the boundary between the application core and an external
// completion backend.
type ChatClient interface {
	// Chat sends the full conversation to the backend and returns the
	// generated text plus a flag indicating the output was cut off by a
	// length limit. Errors are ErrBackendUnavailable for transport
	// failures and *BackendError for non-2xx responses.
	Chat(ctx context.Context, model string, messages []Message, opts Options) (text string, truncated bool, err error)

	// ListModels returns the backend's available model names. It is
	// best-effort: any failure yields an empty slice, never an error.
	ListModels(ctx context.Context) []string
}

// TranscriptSource retrieves the raw transcript and display title for a
// video reference. Implementations may take seconds and may fail with
// domain-specific errors (invalid reference, no captions, blocked).
type TranscriptSource interface {
	FetchTranscript(ctx context.Context, videoURL, language string) (transcript, title string, err error)
}
