package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects the adapter: "openai", "anthropic", "gemini",
	// "openrouter" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Any OpenAI-compatible endpoint.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retries of transient failures. MaxAttempts of 1
// (the default) disables retrying: a failed call surfaces to the student,
// who retries by hand.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "openai/gpt-4o-mini",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from MATE_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	setEnv(&cfg.Provider, "MATE_LLM_PROVIDER")

	setEnv(&cfg.Anthropic.APIKey, "MATE_ANTHROPIC_API_KEY")
	setEnv(&cfg.Anthropic.Model, "MATE_ANTHROPIC_MODEL")
	setEnv(&cfg.Anthropic.BaseURL, "MATE_ANTHROPIC_BASE_URL")

	setEnv(&cfg.OpenAI.APIKey, "MATE_OPENAI_API_KEY")
	setEnv(&cfg.OpenAI.Model, "MATE_OPENAI_MODEL")
	setEnv(&cfg.OpenAI.BaseURL, "MATE_OPENAI_BASE_URL")

	setEnv(&cfg.Gemini.APIKey, "MATE_GEMINI_API_KEY")
	setEnv(&cfg.Gemini.Model, "MATE_GEMINI_MODEL")

	setEnv(&cfg.OpenRouter.APIKey, "MATE_OPENROUTER_API_KEY")
	setEnv(&cfg.OpenRouter.Model, "MATE_OPENROUTER_MODEL")

	if v := os.Getenv("MATE_LLM_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("MATE_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig probes the vendors' standard API key variables
// (OpenAI, Gemini, Anthropic, OpenRouter) and returns a Config for the
// first key found.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "MATE_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "MATE_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "MATE_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "MATE_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
