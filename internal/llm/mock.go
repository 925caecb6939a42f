package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is a canned response for the MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider returns canned responses in FIFO order and records all
// requests. It backs the "mock" provider for demos without an API key.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider with the given canned responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate returns the next canned response or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.responses) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	resp := m.responses[0]
	m.responses = m.responses[1:]

	if resp.Err != nil {
		return nil, resp.Err
	}

	return &Response{
		Content:    resp.Content,
		Usage:      resp.Usage,
		Model:      "mock",
		StopReason: "end",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends a canned response to the queue.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockTranscriber returns canned transcripts in FIFO order. Once the queue
// is drained every call returns an empty transcript.
type MockTranscriber struct {
	mu       sync.Mutex
	texts    []string
	Err      error
	Duration float64 // reported for every transcript
	Samples  [][]byte
}

// NewMockTranscriber creates a MockTranscriber with the given transcripts.
func NewMockTranscriber(texts ...string) *MockTranscriber {
	return &MockTranscriber{texts: texts}
}

func (m *MockTranscriber) Transcribe(_ context.Context, audio []byte) (*Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Samples = append(m.Samples, audio)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.texts) == 0 {
		return &Transcript{}, nil
	}
	text := m.texts[0]
	m.texts = m.texts[1:]
	return &Transcript{Text: text, Duration: m.Duration}, nil
}

func (m *MockTranscriber) ModelID() string {
	return "mock-whisper"
}
