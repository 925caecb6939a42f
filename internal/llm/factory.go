package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/intervue/internal/store"
)

// ErrNoTranscriber is returned by NewTranscriber when no OpenAI key is
// configured.
var ErrNoTranscriber = errors.New("speech-to-text needs an OpenAI API key")

// NewProvider creates a Provider from configuration, wrapped as
// caller → retry → logging → vendor.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, eventRepo), cfg.Retry), nil
}

// NewTranscriber creates the speech-to-text client with event logging.
func NewTranscriber(cfg Config, eventRepo store.EventRepo) (Transcriber, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, ErrNoTranscriber
	}
	p, err := NewOpenAIProvider(cfg.OpenAI)
	if err != nil {
		return nil, fmt.Errorf("initializing transcriber: %w", err)
	}
	return WithTranscriptionLogging(speechModel{p}, "openai", eventRepo), nil
}

// speechModel reports the transcription model as its ModelID.
type speechModel struct {
	*OpenAIProvider
}

func (s speechModel) ModelID() string { return s.TranscribeModelID() }
