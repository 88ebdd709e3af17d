package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from an optional config file and from environment
// variables with the TLDR_ prefix. Environment variables take precedence over
// values from the config file; defaults cover every key so an empty
// environment yields a runnable configuration.
//
// configPath may be empty, in which case only defaults and environment
// variables are consulted.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("TLDR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.workers", 4)
	v.SetDefault("server.queue_capacity", 100)
	v.SetDefault("server.max_header_bytes", 8*1024)
	v.SetDefault("server.max_body_bytes", 10*1024*1024)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")

	v.SetDefault("jobs.workers", 2)
	v.SetDefault("jobs.queue_size", 100)
	v.SetDefault("jobs.retention", "1h")

	v.SetDefault("backend.provider", "ollama")
	v.SetDefault("backend.base_url", "http://127.0.0.1:11434")
	v.SetDefault("backend.default_model", "gpt-oss:20b")
	v.SetDefault("backend.timeout", "45s")
	v.SetDefault("backend.context_window", 8192)
	v.SetDefault("backend.max_tokens_per_turn", 2048)
	v.SetDefault("backend.temperature", 0.4)
	v.SetDefault("backend.repeat_penalty", 1.1)
	v.SetDefault("backend.max_continuations", 3)
	v.SetDefault("backend.transcript_language", "en")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.addr", "127.0.0.1:9091")
}

// validate checks the loaded configuration against struct tags plus the
// cross-field rules validator tags cannot express.
func validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Backend.Provider == "gemini" && cfg.Backend.GeminiAPIKey == "" {
		return errors.New("invalid configuration: backend.gemini_api_key is required when backend.provider is gemini")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		return errors.New("invalid configuration: metrics.addr is required when metrics.enabled is true")
	}

	return nil
}
