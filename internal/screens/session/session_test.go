package session

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/capture"
	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/router"
	"github.com/abhisek/intervue/internal/screens/summary"
)

type fakeAPI struct {
	mu        sync.Mutex
	submitted []api.AnswerRequest
	total     int
	fetchErr  error
	status    api.Status
}

func (f *fakeAPI) FetchQuestion(_ context.Context, _ string) (*api.QuestionResponse, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &api.QuestionResponse{
		Question:       &api.Question{Text: "Tell me about yourself.", Index: 0, Category: "behavioral", TimeLimit: 120},
		TotalQuestions: f.total,
	}, nil
}

func (f *fakeAPI) SubmitAnswer(_ context.Context, _ string, req api.AnswerRequest) (*api.SubmitResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	n := len(f.submitted)
	if n >= f.total {
		return &api.SubmitResponse{Progress: 100, Completed: true}, nil
	}
	return &api.SubmitResponse{
		Progress:     n * 100 / f.total,
		NextQuestion: &api.Question{Text: "Design a cache.", Index: n, Category: "system-design", TimeLimit: 180},
	}, nil
}

func (f *fakeAPI) FetchSessionStatus(_ context.Context, _ string) (*api.SessionStatus, error) {
	st := f.status
	if st == "" {
		st = api.StatusActive
	}
	return &api.SessionStatus{Status: st}, nil
}

type fakeStream struct{}

func (fakeStream) Stop() ([]byte, error) { return []byte("RIFF....WAVE"), nil }
func (fakeStream) Abort()                {}

type fakeDevice struct{}

func (fakeDevice) Open(context.Context, capture.Format) (capture.Stream, error) {
	return fakeStream{}, nil
}

type fakeTranscriber struct {
	text string
}

func (f fakeTranscriber) TranscribeAudio(context.Context, string, []byte, time.Time) (*api.TranscriptResponse, error) {
	return &api.TranscriptResponse{Transcript: f.text, AudioRef: "uploads/a.wav"}, nil
}

func newTestScreen(t *testing.T, a *fakeAPI) *SessionScreen {
	t.Helper()
	ctrl := interview.New(interview.NewSession("s-1", "Backend Engineer"), interview.Options{
		API:         a,
		Transcriber: fakeTranscriber{text: "I would use a hash map"},
		Device:      fakeDevice{},
	})
	s := New(ctrl, nil)
	exec(s, ctrl.Init())
	return s
}

// exec runs cmd synchronously, feeding results back into the screen.
// Navigation messages are returned instead of being fed back.
func exec(s *SessionScreen, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var nav []tea.Msg
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			nav = append(nav, exec(s, c)...)
		}
	case router.ReplaceScreenMsg, router.PushScreenMsg, tea.QuitMsg:
		nav = append(nav, msg)
	default:
		_, next := s.Update(msg)
		nav = append(nav, exec(s, next)...)
	}
	return nav
}

func press(s *SessionScreen, r rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	return cmd
}

func special(s *SessionScreen, code rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: code})
	return cmd
}

func ctrlKey(s *SessionScreen, r rune) tea.Cmd {
	_, cmd := s.Update(tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl})
	return cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestSessionScreen_ShowsQuestion(t *testing.T) {
	s := newTestScreen(t, &fakeAPI{total: 2})

	assert.Equal(t, interview.StateQuestionActive, s.ctrl.State())
	view := s.View(100, 30)
	assert.Contains(t, view, "Question 1 of 2")
	assert.Contains(t, view, "Tell me about yourself.")
	assert.Contains(t, view, "2:00")
	assert.Equal(t, "Backend Engineer", s.Role())
}

func TestSessionScreen_TypedAnswerSubmits(t *testing.T) {
	a := &fakeAPI{total: 2}
	s := newTestScreen(t, a)

	press(s, 'h')
	press(s, 'i')
	assert.Equal(t, "hi", s.ctrl.View().Answer)

	exec(s, special(s, tea.KeyEnter))

	require.Len(t, a.submitted, 1)
	assert.Equal(t, "hi", a.submitted[0].Answer)
	assert.False(t, a.submitted[0].IsVoiceAnswer)

	v := s.ctrl.View()
	assert.Equal(t, 1, v.Question.Index)
	assert.Equal(t, 50, v.Progress)
	assert.Empty(t, s.input.Value())
	assert.Contains(t, s.View(100, 30), interview.MsgAnswerSaved)
}

func TestSessionScreen_EmptyAnswerNeedsConfirmation(t *testing.T) {
	a := &fakeAPI{total: 2}
	s := newTestScreen(t, a)

	assert.Nil(t, special(s, tea.KeyEnter))
	assert.True(t, s.ctrl.View().ConfirmPending)
	assert.Equal(t, "Submit empty", s.KeyHints()[0].Description)
	assert.Contains(t, s.View(100, 30), interview.MsgConfirmEmpty)

	press(s, 'n')
	assert.False(t, s.ctrl.View().ConfirmPending)
	assert.Empty(t, a.submitted)

	special(s, tea.KeyEnter)
	exec(s, press(s, 'y'))
	require.Len(t, a.submitted, 1)
	assert.Equal(t, interview.NoAnswerText, a.submitted[0].Answer)
}

func TestSessionScreen_CompletionShowsSummary(t *testing.T) {
	a := &fakeAPI{total: 1}
	s := newTestScreen(t, a)

	press(s, 'x')
	nav := exec(s, special(s, tea.KeyEnter))

	assert.Equal(t, interview.StateCompleted, s.ctrl.State())
	require.Len(t, nav, 1)
	replace, ok := nav[0].(router.ReplaceScreenMsg)
	require.True(t, ok)
	_, ok = replace.Screen.(*summary.SummaryScreen)
	assert.True(t, ok)

	_, cmd := s.Update(timerTickMsg(time.Now()))
	assert.Nil(t, cmd, "tick chain stops after the interview ends")
}

func TestSessionScreen_TickCountsDown(t *testing.T) {
	s := newTestScreen(t, &fakeAPI{total: 2})

	_, cmd := s.Update(timerTickMsg(time.Now()))
	assert.NotNil(t, cmd)
	assert.Equal(t, 119, s.ctrl.Remaining())
}

func TestSessionScreen_Recording(t *testing.T) {
	a := &fakeAPI{total: 2}
	s := newTestScreen(t, a)

	exec(s, ctrlKey(s, 'r'))
	assert.Equal(t, interview.StateRecording, s.ctrl.State())
	assert.Contains(t, s.View(100, 30), "REC")
	assert.Equal(t, "Stop", s.KeyHints()[0].Description)

	exec(s, ctrlKey(s, 'r'))
	assert.Equal(t, interview.StateReviewReady, s.ctrl.State())
	assert.Equal(t, "I would use a hash map", s.input.Value())

	exec(s, special(s, tea.KeyEnter))
	require.Len(t, a.submitted, 1)
	assert.True(t, a.submitted[0].IsVoiceAnswer)
	assert.Equal(t, "uploads/a.wav", a.submitted[0].AudioRef)
}

func TestSessionScreen_ClearAnswer(t *testing.T) {
	s := newTestScreen(t, &fakeAPI{total: 2})

	exec(s, ctrlKey(s, 'r'))
	exec(s, ctrlKey(s, 'r'))
	require.NotEmpty(t, s.input.Value())

	ctrlKey(s, 'u')
	assert.Empty(t, s.input.Value())
	assert.Equal(t, interview.ProvenanceTyped, s.ctrl.View().Provenance)
}

func TestSessionScreen_Expired(t *testing.T) {
	a := &fakeAPI{total: 2, fetchErr: &api.NotActiveError{SessionID: "s-1"}, status: api.StatusExpired}
	s := newTestScreen(t, a)

	assert.Equal(t, interview.StateExpired, s.ctrl.State())
	assert.Contains(t, s.View(100, 30), interview.MsgSessionExpired)
	assert.True(t, isQuit(press(s, 'a')))
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	s := newTestScreen(t, &fakeAPI{total: 2})

	special(s, tea.KeyEscape)
	assert.Contains(t, s.View(100, 30), "Leave the interview?")

	press(s, 'n')
	assert.NotContains(t, s.View(100, 30), "Leave the interview?")

	special(s, tea.KeyEscape)
	assert.True(t, isQuit(press(s, 'y')))
}

func TestTimerWarning(t *testing.T) {
	tests := []struct {
		remaining int
		want      string
	}{
		{120, ""},
		{61, ""},
		{60, "Less than a minute left"},
		{31, "Less than a minute left"},
		{30, "30 seconds remaining"},
		{11, "30 seconds remaining"},
		{10, "Time almost up!"},
		{1, "Time almost up!"},
		{0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timerWarning(tt.remaining), "remaining=%d", tt.remaining)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "2:00", formatClock(120))
	assert.Equal(t, "0:09", formatClock(9))
	assert.Equal(t, "0:00", formatClock(-3))
}
