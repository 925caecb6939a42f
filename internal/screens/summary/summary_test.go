package summary

import (
	"context"
	"errors"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/api"
)

type fakeFetcher struct {
	summary *api.Summary
	err     error
	calls   int
}

func (f *fakeFetcher) FetchSummary(_ context.Context, _ string) (*api.Summary, error) {
	f.calls++
	return f.summary, f.err
}

func testSummary() *api.Summary {
	return &api.Summary{
		SessionID:         "s-1",
		Role:              "Backend Engineer",
		Status:            api.StatusCompleted,
		DurationMinutes:   14,
		QuestionsAnswered: 2,
		Performance: api.Performance{
			CompletionRate: 100,
			OverallScore:   6.5,
			CategoryScores: map[string]float64{"technical": 8, "behavioral": 5},
		},
		Feedback: api.Feedback{
			Strengths:       []string{"Clear structure"},
			Weaknesses:      []string{"Few metrics"},
			Recommendations: []string{"Quantify impact"},
		},
		Answers: []api.AnswerReview{
			{Question: "Tell me about yourself.", Answer: "I build APIs.", Score: 5, ResponseTime: 40},
			{Question: "Design a cache.", Answer: "LRU with TTL.", IsVoiceAnswer: true, Score: 8, ResponseTime: 95, Feedback: "Good tradeoffs"},
		},
	}
}

func loaded(t *testing.T, f *fakeFetcher) *SummaryScreen {
	t.Helper()
	s := New(f, "s-1", "Backend Engineer")
	cmd := s.Init()
	require.NotNil(t, cmd)
	s.Update(cmd())
	return s
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(nil, "s-1", "Backend Engineer")
	assert.Equal(t, "Interview Summary", s.Title())
	assert.Equal(t, "Backend Engineer", s.Role())
}

func TestSummaryScreen_LoadsAndRenders(t *testing.T) {
	f := &fakeFetcher{summary: testSummary()}
	s := loaded(t, f)

	assert.Equal(t, 1, f.calls)
	view := s.View(100, 200)
	for _, want := range []string{"Interview complete!", "6.5", "Clear structure", "Few metrics", "Quantify impact", "Design a cache.", "Good tradeoffs", "technical"} {
		assert.Contains(t, view, want)
	}
}

func TestSummaryScreen_LoadingView(t *testing.T) {
	s := New(&fakeFetcher{summary: testSummary()}, "s-1", "")
	_ = s.Init()
	assert.Contains(t, s.View(80, 24), "Grading your answers")
}

func TestSummaryScreen_ErrorAndRetry(t *testing.T) {
	f := &fakeFetcher{err: errors.New("boom")}
	s := loaded(t, f)
	assert.Contains(t, s.View(80, 24), "boom")
	assert.Equal(t, "Retry", s.KeyHints()[0].Description)

	f.err = nil
	f.summary = testSummary()
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	require.NotNil(t, cmd)
	s.Update(cmd())

	assert.Equal(t, 2, f.calls)
	assert.Contains(t, s.View(100, 200), "Clear structure")
}

func TestSummaryScreen_NilFetcher(t *testing.T) {
	s := New(nil, "s-1", "")
	assert.Nil(t, s.Init())
	assert.Contains(t, s.View(80, 24), "Interview complete!")
}

func TestSummaryScreen_Scroll(t *testing.T) {
	s := loaded(t, &fakeFetcher{summary: testSummary()})

	top := s.View(100, 5)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.NotEqual(t, top, s.View(100, 5))

	for i := 0; i < 500; i++ {
		s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	// Scrolling past the end clamps to the last page.
	assert.Contains(t, s.View(100, 5), "Good tradeoffs")
}

func TestSummaryScreen_EnterQuits(t *testing.T) {
	s := New(nil, "s-1", "")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
