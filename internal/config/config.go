package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  validate:"required"`
	Jobs    JobsConfig    `mapstructure:"jobs"    validate:"required"`
	Backend BackendConfig `mapstructure:"backend" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig contains the TCP listener and connection-processing settings.
type ServerConfig struct {
	Host     string `mapstructure:"host"      validate:"required"`
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// Workers is the number of connection-processing workers; QueueCapacity
	// bounds how many accepted connections may wait for one.
	Workers       int `mapstructure:"workers"        validate:"required,gt=0"`
	QueueCapacity int `mapstructure:"queue_capacity" validate:"required,gt=0"`

	MaxHeaderBytes int `mapstructure:"max_header_bytes" validate:"required,gt=0"`
	MaxBodyBytes   int `mapstructure:"max_body_bytes"   validate:"required,gt=0"`

	// ReadTimeout and WriteTimeout bound per-connection I/O, not backend
	// call duration.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  validate:"required"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required"`
}

// JobsConfig contains settings for the asynchronous job pool and registry.
type JobsConfig struct {
	Workers   int `mapstructure:"workers"    validate:"required,gt=0"`
	QueueSize int `mapstructure:"queue_size" validate:"required,gt=0"`

	// Retention is how long terminal job results are kept before being
	// reaped. Zero disables reaping; results are then kept for the lifetime
	// of the process.
	Retention time.Duration `mapstructure:"retention" validate:"min=0"`
}

// BackendConfig contains all completion-backend settings.
type BackendConfig struct {
	// Provider selects the completion backend implementation.
	Provider string `mapstructure:"provider" validate:"required,oneof=ollama gemini"`

	// BaseURL is the Ollama server address. Ignored by the gemini provider.
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// GeminiAPIKey is required only when Provider is "gemini".
	GeminiAPIKey string `mapstructure:"gemini_api_key"`

	DefaultModel string `mapstructure:"default_model" validate:"required"`

	// Timeout bounds a single backend call. Zero means unbounded.
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"`

	// Generation options sent with every completion turn.
	ContextWindow    int     `mapstructure:"context_window"      validate:"required,gt=0"`
	MaxTokensPerTurn int     `mapstructure:"max_tokens_per_turn" validate:"required,gt=0"`
	Temperature      float64 `mapstructure:"temperature"         validate:"min=0"`
	RepeatPenalty    float64 `mapstructure:"repeat_penalty"      validate:"min=0"`

	// MaxContinuations bounds how many extra turns are taken when the
	// backend reports truncation.
	MaxContinuations int `mapstructure:"max_continuations" validate:"min=0"`

	// TranscriptLanguage is the preferred caption language.
	TranscriptLanguage string `mapstructure:"transcript_language" validate:"required"`
}

// MetricsConfig contains settings for the operational HTTP listener.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}
