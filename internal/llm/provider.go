// Package llm wraps the hosted model APIs used by offline interviews:
// question generation, answer grading and speech-to-text.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output from a prompt.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the Content is JSON validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	ModelID() string
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	// Transcribe converts one WAV recording. A silent recording yields an
	// empty Text and no error.
	Transcribe(ctx context.Context, audio []byte) (*Transcript, error)

	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, selects the provider's native structured output.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 means provider default
}

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is the JSON Schema a response must conform to.
type Schema struct {
	// Name is kebab-case, e.g. "interview-questions". It doubles as the
	// compiled schema cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Transcript is the text recognized in one recording.
type Transcript struct {
	Text     string
	Language string
	Duration float64 // seconds of audio, when reported
}
