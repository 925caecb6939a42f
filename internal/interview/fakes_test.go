package interview

import (
	"context"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/store"
)

type fakeAPI struct {
	mu sync.Mutex

	fetch  func() (*api.QuestionResponse, error)
	submit func(req api.AnswerRequest) (*api.SubmitResponse, error)
	status func() (*api.SessionStatus, error)

	fetchCalls  int
	statusCalls int
	submitted   []api.AnswerRequest
}

func (f *fakeAPI) FetchQuestion(ctx context.Context, sessionID string) (*api.QuestionResponse, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetch == nil {
		return &api.QuestionResponse{Question: question(0, 120), TotalQuestions: 5}, nil
	}
	return f.fetch()
}

func (f *fakeAPI) SubmitAnswer(ctx context.Context, sessionID string, req api.AnswerRequest) (*api.SubmitResponse, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	if f.submit == nil {
		return &api.SubmitResponse{Progress: 20, NextQuestion: question(1, 120)}, nil
	}
	return f.submit(req)
}

func (f *fakeAPI) FetchSessionStatus(ctx context.Context, sessionID string) (*api.SessionStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	f.mu.Unlock()
	if f.status == nil {
		return &api.SessionStatus{Status: api.StatusActive}, nil
	}
	return f.status()
}

func (f *fakeAPI) submissions() []api.AnswerRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.AnswerRequest(nil), f.submitted...)
}

type fakeTranscriber struct {
	fn    func(ctx context.Context) (*api.TranscriptResponse, error)
	calls int
	audio []byte
}

func (f *fakeTranscriber) TranscribeAudio(ctx context.Context, sessionID string, audio []byte, stamp time.Time) (*api.TranscriptResponse, error) {
	f.calls++
	f.audio = audio
	return f.fn(ctx)
}

func transcriptOf(text string) *fakeTranscriber {
	return &fakeTranscriber{fn: func(context.Context) (*api.TranscriptResponse, error) {
		return &api.TranscriptResponse{Transcript: text, AudioRef: "uploads/answer.wav"}, nil
	}}
}

type fakeStream struct {
	data    []byte
	aborted bool
	stopped bool
}

func (s *fakeStream) Stop() ([]byte, error) {
	s.stopped = true
	return s.data, nil
}

func (s *fakeStream) Abort() { s.aborted = true }

type fakeDevice struct {
	err     error
	streams []*fakeStream
}

func (d *fakeDevice) Open(ctx context.Context, f capture.Format) (capture.Stream, error) {
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeStream{data: []byte("RIFF....WAVE")}
	d.streams = append(d.streams, s)
	return s, nil
}

type fakeEvents struct {
	answers  []store.AnswerEventData
	sessions []store.SessionEventData
}

func (f *fakeEvents) AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error {
	f.answers = append(f.answers, data)
	return nil
}

func (f *fakeEvents) AppendSessionEvent(ctx context.Context, data store.SessionEventData) error {
	f.sessions = append(f.sessions, data)
	return nil
}

type fakeForgetter struct {
	cleared []string
}

func (f *fakeForgetter) ClearActive(ctx context.Context, sessionID string) error {
	f.cleared = append(f.cleared, sessionID)
	return nil
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func question(index, limit int) *api.Question {
	return &api.Question{
		Text:      "Design a rate limiter.",
		Index:     index,
		Category:  "system-design",
		TimeLimit: limit,
	}
}

// run executes cmd synchronously and feeds its message back.
func run(c *Controller, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return c.Update(cmd())
}

// tick advances the controller n seconds and returns the last command.
func tick(c *Controller, clk *clock, n int) tea.Cmd {
	var last tea.Cmd
	for i := 0; i < n; i++ {
		if clk != nil {
			clk.Advance(time.Second)
		}
		if cmd := c.Update(TickMsg(time.Time{})); cmd != nil {
			last = cmd
		}
	}
	return last
}
