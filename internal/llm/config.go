package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also configures speech-to-text, which is only served by
// OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey          string
	Model           string
	BaseURL         string
	TranscribeModel string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model:           "gpt-4o-mini",
			TranscribeModel: "whisper-1",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 45 * time.Second,
	}
}

// ConfigFromEnv builds a Config from INTERVUE_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&cfg.Provider, "INTERVUE_LLM_PROVIDER")
	set(&cfg.Anthropic.APIKey, "INTERVUE_ANTHROPIC_API_KEY")
	set(&cfg.Anthropic.Model, "INTERVUE_ANTHROPIC_MODEL")
	set(&cfg.OpenAI.APIKey, "INTERVUE_OPENAI_API_KEY")
	set(&cfg.OpenAI.Model, "INTERVUE_OPENAI_MODEL")
	set(&cfg.OpenAI.BaseURL, "INTERVUE_OPENAI_BASE_URL")
	set(&cfg.OpenAI.TranscribeModel, "INTERVUE_TRANSCRIBE_MODEL")
	set(&cfg.Gemini.APIKey, "INTERVUE_GEMINI_API_KEY")
	set(&cfg.Gemini.Model, "INTERVUE_GEMINI_MODEL")
	set(&cfg.OpenRouter.APIKey, "INTERVUE_OPENROUTER_API_KEY")
	set(&cfg.OpenRouter.Model, "INTERVUE_OPENROUTER_MODEL")

	if v := os.Getenv("INTERVUE_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// DiscoverConfig probes the vendors' standard API key variables
// (Gemini, OpenAI, Anthropic, OpenRouter) and returns a Config for the
// first one found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
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

// Resolve returns ConfigFromEnv when its provider has a key, otherwise
// the first discovered vendor key.
func Resolve() (Config, error) {
	cfg := ConfigFromEnv()
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	err := cfg.Validate()
	if err == nil {
		return cfg, nil
	}
	if os.Getenv("INTERVUE_LLM_PROVIDER") != "" {
		return Config{}, err
	}

	found, ok := DiscoverConfig()
	if !ok {
		return Config{}, fmt.Errorf("no LLM configured: set INTERVUE_LLM_PROVIDER or a vendor API key")
	}
	found.OpenAI.TranscribeModel = cfg.OpenAI.TranscribeModel
	if found.OpenAI.APIKey == "" {
		found.OpenAI.APIKey = cfg.OpenAI.APIKey
	}
	return found, nil
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("INTERVUE_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("INTERVUE_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("INTERVUE_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("INTERVUE_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
