package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/store"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Err: &ErrRateLimit{}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(resp.Content))
	assert.Equal(t, 10, resp.Usage.InputTokens)

	_, err = mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl))

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavail), "drained queue")

	assert.Equal(t, 3, mock.CallCount())
	assert.Equal(t, "sys", mock.Calls[0].System)
}

func TestMockTranscriber(t *testing.T) {
	m := NewMockTranscriber("first answer")

	tr, err := m.Transcribe(context.Background(), []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "first answer", tr.Text)

	tr, err = m.Transcribe(context.Background(), []byte("b"))
	require.NoError(t, err)
	assert.Empty(t, tr.Text)
	assert.Len(t, m.Samples, 2)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, "question-gen", PurposeFrom(WithPurpose(ctx, "question-gen")))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"INTERVUE_LLM_PROVIDER", "INTERVUE_ANTHROPIC_API_KEY", "INTERVUE_OPENAI_API_KEY",
		"INTERVUE_GEMINI_API_KEY", "INTERVUE_OPENROUTER_API_KEY", "INTERVUE_TRANSCRIBE_MODEL",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestResolve(t *testing.T) {
	t.Run("explicit provider", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("INTERVUE_LLM_PROVIDER", "anthropic")
		t.Setenv("INTERVUE_ANTHROPIC_API_KEY", "sk-ant")
		t.Setenv("OPENAI_API_KEY", "sk-oai")

		cfg, err := Resolve()
		require.NoError(t, err)
		assert.Equal(t, "anthropic", cfg.Provider)
		assert.Equal(t, "sk-oai", cfg.OpenAI.APIKey, "OpenAI key kept for transcription")
	})

	t.Run("explicit provider missing key", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("INTERVUE_LLM_PROVIDER", "gemini")
		t.Setenv("OPENAI_API_KEY", "sk-oai")

		_, err := Resolve()
		assert.Error(t, err)
	})

	t.Run("discovered", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("GEMINI_API_KEY", "g")
		t.Setenv("INTERVUE_OPENAI_API_KEY", "sk-oai")

		cfg, err := Resolve()
		require.NoError(t, err)
		assert.Equal(t, "gemini", cfg.Provider)
		assert.Equal(t, "sk-oai", cfg.OpenAI.APIKey)
		assert.Equal(t, "whisper-1", cfg.OpenAI.TranscribeModel)
	})

	t.Run("nothing configured", func(t *testing.T) {
		clearLLMEnv(t)
		_, err := Resolve()
		assert.Error(t, err)
	})
}

type memEvents struct {
	store.EventRepo
	llm []store.LLMRequestEventData
}

func (m *memEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	m.llm = append(m.llm, data)
	return nil
}

func TestWithLogging(t *testing.T) {
	events := &memEvents{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 7, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, "mock", events)
	ctx := WithPurpose(context.Background(), "grading")

	_, err := p.Generate(ctx, Request{
		System:   "Grade.",
		Messages: []Message{{Role: RoleUser, Content: "answer"}},
		Schema:   testSchema(),
	})
	require.NoError(t, err)
	_, err = p.Generate(ctx, Request{})
	require.Error(t, err)

	require.Len(t, events.llm, 2)
	ok := events.llm[0]
	assert.True(t, ok.Success)
	assert.Equal(t, "grading", ok.Purpose)
	assert.Equal(t, 7, ok.InputTokens)
	assert.Equal(t, `{"ok":true}`, ok.ResponseBody)
	assert.True(t, strings.Contains(ok.RequestBody, "[schema: test-object]"))

	failed := events.llm[1]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.ErrorMessage, "down")
}

func TestWithTranscriptionLogging(t *testing.T) {
	events := &memEvents{}
	mock := NewMockTranscriber("hello")
	mock.Duration = 4.5
	tr := WithTranscriptionLogging(mock, "openai", events)

	got, err := tr.Transcribe(context.Background(), make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	require.Len(t, events.llm, 1)
	assert.Equal(t, PurposeTranscription, events.llm[0].Purpose)
	assert.Equal(t, "mock-whisper", events.llm[0].Model)
	assert.Equal(t, "[audio: 32 bytes]", events.llm[0].RequestBody)
	assert.Equal(t, int64(4500), events.llm[0].AudioMs)
}

func TestTranscriptionCost(t *testing.T) {
	assert.InDelta(t, 0.006, TranscriptionCost(60_000), 1e-9)
	assert.InDelta(t, 0.003, TranscriptionCost(30_000), 1e-9)
	assert.Zero(t, TranscriptionCost(0))
}

func TestNewTranscriber_NeedsKey(t *testing.T) {
	_, err := NewTranscriber(Config{}, nil)
	assert.ErrorIs(t, err, ErrNoTranscriber)

	tr, err := NewTranscriber(Config{OpenAI: OpenAIConfig{APIKey: "k"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "whisper-1", tr.ModelID())
}
