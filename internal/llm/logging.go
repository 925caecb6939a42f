package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/intervue/internal/store"
)

// PurposeTranscription labels speech-to-text events.
const PurposeTranscription = "transcription"

// LoggingProvider is a decorator that records every request as an event.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	provider  string
}

// WithLogging wraps a Provider with event logging. provider names the
// vendor in the recorded events.
func WithLogging(p Provider, provider string, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo, provider: provider}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	record(ctx, l.eventRepo, data)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// LoggingTranscriber records every transcription as an LLM event.
type LoggingTranscriber struct {
	inner     Transcriber
	eventRepo store.EventRepo
	provider  string
}

// WithTranscriptionLogging wraps a Transcriber with event logging.
func WithTranscriptionLogging(t Transcriber, provider string, repo store.EventRepo) Transcriber {
	return &LoggingTranscriber{inner: t, eventRepo: repo, provider: provider}
}

func (l *LoggingTranscriber) Transcribe(ctx context.Context, audio []byte) (*Transcript, error) {
	start := time.Now()
	tr, err := l.inner.Transcribe(ctx, audio)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeTranscription,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[audio: %d bytes]", len(audio)),
	}
	if tr != nil {
		data.ResponseBody = tr.Text
		data.AudioMs = int64(tr.Duration * 1000)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	record(ctx, l.eventRepo, data)
	return tr, err
}

func (l *LoggingTranscriber) ModelID() string {
	return l.inner.ModelID()
}

// record never fails the request.
func record(ctx context.Context, repo store.EventRepo, data store.LLMRequestEventData) {
	if repo == nil {
		return
	}
	if err := repo.AppendLLMRequest(context.WithoutCancel(ctx), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log LLM request event: %v\n", err)
	}
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
