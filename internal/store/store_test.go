package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_FileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "intervue.db")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv("INTERVUE_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("INTERVUE_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "intervue", "intervue.db"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestSequenceIsGlobal(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s1", Action: "start"}); err != nil {
		t.Fatalf("append session: %v", err)
	}
	if err := repo.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s1", QuestionIndex: 0, Answer: "a"}); err != nil {
		t.Fatalf("append answer: %v", err)
	}
	if err := repo.AppendLLMRequest(ctx, LLMRequestEventData{Purpose: "grading", Success: true}); err != nil {
		t.Fatalf("append llm: %v", err)
	}

	sessions, _ := repo.QuerySessionEvents(ctx, QueryOpts{})
	answers, _ := repo.QueryAnswerEvents(ctx, QueryOpts{})
	llms, _ := repo.QueryLLMEvents(ctx, QueryOpts{})
	if len(sessions) != 1 || len(answers) != 1 || len(llms) != 1 {
		t.Fatalf("got %d/%d/%d events, want 1 each", len(sessions), len(answers), len(llms))
	}
	if !(sessions[0].Sequence < answers[0].Sequence && answers[0].Sequence < llms[0].Sequence) {
		t.Errorf("sequences not increasing: %d, %d, %d",
			sessions[0].Sequence, answers[0].Sequence, llms[0].Sequence)
	}
}

func TestAnswerEvents_FilterBySession(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i, id := range []string{"a", "b", "a"} {
		err := repo.AppendAnswerEvent(ctx, AnswerEventData{
			SessionID:     id,
			QuestionIndex: i,
			Answer:        "No answer provided",
			Provenance:    "typed",
			Substituted:   true,
			AutoSubmitted: true,
			ResponseSecs:  120,
		})
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryAnswerEvents(ctx, QueryOpts{SessionID: "a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].QuestionIndex != 0 || got[1].QuestionIndex != 2 {
		t.Errorf("indexes = %d, %d; want 0, 2", got[0].QuestionIndex, got[1].QuestionIndex)
	}
	if !got[0].Substituted || !got[0].AutoSubmitted {
		t.Error("expected substituted and auto-submitted flags to round-trip")
	}
}

func TestLLMEvents_UsageAndLookup(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 100, Success: true},
		{Model: "gpt-4o-mini", Purpose: "grading", InputTokens: 200, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Model: "whisper-1", Purpose: "grading", LatencyMs: 100, AudioMs: 4500, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("by purpose: %v", err)
	}
	if len(byPurpose) != 2 || byPurpose[0].Purpose != "grading" || byPurpose[0].Calls != 2 {
		t.Fatalf("unexpected purpose usage: %+v", byPurpose)
	}
	if byPurpose[0].AvgLatencyMs != 200 {
		t.Errorf("avg latency = %d, want 200", byPurpose[0].AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("by model: %v", err)
	}
	if len(byModel) != 2 || byModel[0].InputTokens != 300 {
		t.Fatalf("unexpected model usage: %+v", byModel)
	}
	if byModel[1].AudioMs != 4500 {
		t.Errorf("whisper audio = %d ms, want 4500", byModel[1].AudioMs)
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	if err != nil || len(list) != 1 {
		t.Fatalf("query limit: %v, %d", err, len(list))
	}
	if list[0].Model != "whisper-1" {
		t.Errorf("newest model = %q, want whisper-1", list[0].Model)
	}

	e, err := repo.GetLLMEvent(ctx, list[0].ID)
	if err != nil || e == nil {
		t.Fatalf("get: %v, %v", e, err)
	}
	if e.ErrorMessage != "boom" || e.Success {
		t.Errorf("unexpected event: %+v", e)
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %v, %v; want nil, nil", missing, err)
	}
}

func TestActiveSession(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	got, err := repo.Active(ctx)
	if err != nil || got != nil {
		t.Fatalf("initial active = %v, %v; want nil", got, err)
	}

	started := time.Now().Truncate(time.Millisecond)
	if err := repo.SaveActive(ctx, ActiveSession{SessionID: "s1", Role: "SRE", Mode: "remote", StartedAt: started}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveActive(ctx, ActiveSession{SessionID: "s2", Role: "Backend", UseResume: true, Mode: "local", StartedAt: started}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err = repo.Active(ctx)
	if err != nil || got == nil {
		t.Fatalf("active: %v, %v", got, err)
	}
	if got.SessionID != "s2" || !got.UseResume || got.Mode != "local" || !got.StartedAt.Equal(started) {
		t.Errorf("unexpected active session: %+v", got)
	}

	// Clearing a different id keeps the current one.
	if err := repo.ClearActive(ctx, "s1"); err != nil {
		t.Fatalf("clear other: %v", err)
	}
	if got, _ = repo.Active(ctx); got == nil {
		t.Fatal("active session cleared by mismatched id")
	}

	if err := repo.ClearActive(ctx, "s2"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got, _ = repo.Active(ctx); got != nil {
		t.Errorf("expected no active session, got %+v", got)
	}
}

func TestInterviewRepo_Lifecycle(t *testing.T) {
	s := openTestStore(t)
	repo := s.InterviewRepo()
	ctx := context.Background()

	started := time.Now().Truncate(time.Millisecond)
	err := repo.CreateSession(ctx, &LocalSession{
		ID:        "local-1",
		Role:      "Data Engineer",
		Status:    "active",
		StartedAt: started,
		Questions: []LocalQuestion{
			{Index: 0, Text: "Q1", Category: "technical", TimeLimit: 120},
			{Index: 1, Text: "Q2", Category: "behavioral", TimeLimit: 90},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = repo.RecordAnswer(ctx, "local-1", LocalQuestion{Index: 0, Answer: "partition by day", IsVoice: true, AudioRef: "local-1/0.wav", ResponseTime: 42, Score: 7})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.RecordAnswer(ctx, "local-1", LocalQuestion{Index: 7}); !errors.Is(err, ErrNotFound) {
		t.Errorf("record unknown index err = %v, want ErrNotFound", err)
	}

	got, err := repo.GetSession(ctx, "local-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
	q := got.Questions[0]
	if !q.Answered || q.Answer != "partition by day" || !q.IsVoice || q.Score != 7 || q.AnsweredAt.IsZero() {
		t.Errorf("unexpected answered question: %+v", q)
	}
	if got.Questions[1].Answered {
		t.Error("second question should be unanswered")
	}

	ended := started.Add(10 * time.Minute)
	if err := repo.SetStatus(ctx, "local-1", "completed", ended); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if err := repo.SaveSummary(ctx, "local-1", `{"role":"Data Engineer"}`); err != nil {
		t.Fatalf("save summary: %v", err)
	}

	list, err := repo.ListSessions(ctx, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v, %d", err, len(list))
	}
	if list[0].Status != "completed" || !list[0].EndedAt.Equal(ended) || list[0].Summary == "" {
		t.Errorf("unexpected listed session: %+v", list[0])
	}

	if _, err := repo.GetSession(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing err = %v, want ErrNotFound", err)
	}
	if err := repo.SetStatus(ctx, "missing", "expired", ended); !errors.Is(err, ErrNotFound) {
		t.Errorf("set status missing err = %v, want ErrNotFound", err)
	}
}
