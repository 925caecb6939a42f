// Package local runs interviews entirely on this machine: questions and
// grading come from the configured LLM (or a built-in bank), answers are
// kept in SQLite and voice answers are transcribed with Whisper.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/store"
)

// ErrVoiceUnavailable is returned by TranscribeAudio when no
// speech-to-text backend is configured.
var ErrVoiceUnavailable = errors.New("voice answers need speech-to-text: set an OpenAI API key or type your answer")

// Config controls offline sessions.
type Config struct {
	QuestionCount int
	TimeLimit     int           // seconds, overrides generated limits when > 0
	SessionLimit  time.Duration // absolute bound; 0 disables
	DataDir       string        // recorded answers are kept here when set

	Now func() time.Time
}

// Service implements the session API in-process.
type Service struct {
	repo        store.InterviewRepo
	generator   *Generator
	grader      *Grader
	transcriber llm.Transcriber
	cfg         Config
}

// NewService creates a Service. provider and transcriber may be nil.
func NewService(repo store.InterviewRepo, provider llm.Provider, transcriber llm.Transcriber, cfg Config) *Service {
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = 5
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &Service{repo: repo, transcriber: transcriber, cfg: cfg}
	if provider != nil {
		s.generator = NewGenerator(provider)
		s.grader = NewGrader(provider)
	}
	return s
}

// StartSession creates a session and its questions.
func (s *Service) StartSession(ctx context.Context, req api.StartRequest) (*api.StartResponse, error) {
	role := strings.TrimSpace(req.Role)
	if role == "" {
		return nil, errors.New("role is required")
	}

	questions := s.questions(ctx, role, req.UseResume)
	if s.cfg.TimeLimit > 0 {
		for i := range questions {
			questions[i].TimeLimit = s.cfg.TimeLimit
		}
	}

	sess := &store.LocalSession{
		ID:        uuid.NewString(),
		Role:      role,
		UseResume: req.UseResume,
		Status:    string(api.StatusActive),
		StartedAt: s.cfg.Now(),
		Questions: questions,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &api.StartResponse{SessionID: sess.ID}, nil
}

func (s *Service) questions(ctx context.Context, role string, useResume bool) []store.LocalQuestion {
	if s.generator != nil {
		qs, err := s.generator.Generate(ctx, role, useResume, s.cfg.QuestionCount)
		if err == nil {
			return qs
		}
		fmt.Fprintf(os.Stderr, "warning: question generation failed, using built-in questions: %v\n", err)
	}
	seed := uint64(s.cfg.Now().UnixNano())
	return bankQuestions(role, s.cfg.QuestionCount, rand.New(rand.NewPCG(seed, seed>>1)))
}

// FetchQuestion returns the first unanswered question.
func (s *Service) FetchQuestion(ctx context.Context, sessionID string) (*api.QuestionResponse, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	total := len(sess.Questions)
	if sess.Status == string(api.StatusCompleted) {
		return &api.QuestionResponse{Progress: 100, TotalQuestions: total, Completed: true}, nil
	}
	if err := requireActive(sess); err != nil {
		return nil, err
	}

	q, answered := nextQuestion(sess)
	if q == nil {
		if err := s.complete(ctx, sess); err != nil {
			return nil, err
		}
		return &api.QuestionResponse{Progress: 100, TotalQuestions: total, Completed: true}, nil
	}
	return &api.QuestionResponse{
		Question:       toAPIQuestion(*q),
		Progress:       progress(answered, total),
		TotalQuestions: total,
	}, nil
}

// SubmitAnswer records the answer to the current question.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, req api.AnswerRequest) (*api.SubmitResponse, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(sess); err != nil {
		return nil, err
	}

	q, answered := nextQuestion(sess)
	if q == nil {
		return nil, &api.NotActiveError{SessionID: sessionID, Message: "all questions answered"}
	}

	q.Answered = true
	q.Answer = req.Answer
	q.IsVoice = req.IsVoiceAnswer
	q.AudioRef = req.AudioRef
	q.ResponseTime = req.ResponseTime
	q.AnsweredAt = s.cfg.Now()
	if err := s.repo.RecordAnswer(ctx, sessionID, *q); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	answered++

	total := len(sess.Questions)
	if answered >= total {
		if err := s.complete(ctx, sess); err != nil {
			return nil, err
		}
		return &api.SubmitResponse{Progress: 100, Completed: true}, nil
	}

	next, _ := nextQuestion(sess)
	return &api.SubmitResponse{
		Progress:     progress(answered, total),
		NextQuestion: toAPIQuestion(*next),
	}, nil
}

// FetchSessionStatus reports the session status, expiring it first when
// it has outlived the session limit.
func (s *Service) FetchSessionStatus(ctx context.Context, sessionID string) (*api.SessionStatus, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &api.SessionStatus{ID: sess.ID, Role: sess.Role, Status: api.Status(sess.Status)}, nil
}

// TranscribeAudio transcribes a voice answer, keeping the recording when
// a data directory is configured.
func (s *Service) TranscribeAudio(ctx context.Context, sessionID string, audio []byte, stamp time.Time) (*api.TranscriptResponse, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := requireActive(sess); err != nil {
		return nil, err
	}
	if s.transcriber == nil {
		return nil, ErrVoiceUnavailable
	}

	ref, err := s.saveAudio(sessionID, audio, stamp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to keep recording: %v\n", err)
	}

	tr, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return &api.TranscriptResponse{Transcript: tr.Text, AudioRef: ref}, nil
}

func (s *Service) saveAudio(sessionID string, audio []byte, stamp time.Time) (string, error) {
	if s.cfg.DataDir == "" {
		return "", nil
	}
	dir := filepath.Join(s.cfg.DataDir, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%d-%s.wav", stamp.UnixMilli(), uuid.NewString()[:8]))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// FetchSummary grades the session on first request and caches the result.
func (s *Service) FetchSummary(ctx context.Context, sessionID string) (*api.Summary, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == string(api.StatusActive) {
		return nil, fmt.Errorf("session %s is still in progress", sessionID)
	}

	if sess.Summary != "" {
		var cached api.Summary
		if err := json.Unmarshal([]byte(sess.Summary), &cached); err == nil {
			return &cached, nil
		}
	}

	grade := s.grade(ctx, sess)
	summary := buildSummary(sess, grade)

	for _, q := range sess.Questions {
		if !q.Answered {
			continue
		}
		q.Score = grade.Scores[q.Index]
		q.Feedback = grade.Feedback[q.Index]
		if err := s.repo.RecordAnswer(ctx, sess.ID, q); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to store score: %v\n", err)
		}
	}
	if data, err := json.Marshal(summary); err == nil {
		if err := s.repo.SaveSummary(ctx, sess.ID, string(data)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to cache summary: %v\n", err)
		}
	}
	return summary, nil
}

func (s *Service) grade(ctx context.Context, sess *store.LocalSession) *Grade {
	if s.grader != nil {
		g, err := s.grader.Grade(ctx, sess)
		if err == nil {
			return g
		}
		fmt.Fprintf(os.Stderr, "warning: grading failed, using offline scoring: %v\n", err)
	}
	return heuristicGrade(sess)
}

// load fetches a session and applies the session limit.
func (s *Service) load(ctx context.Context, sessionID string) (*store.LocalSession, error) {
	sess, err := s.repo.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &api.NotActiveError{SessionID: sessionID, Message: "session not found"}
	}
	if err != nil {
		return nil, err
	}

	if sess.Status == string(api.StatusActive) && s.cfg.SessionLimit > 0 {
		deadline := sess.StartedAt.Add(s.cfg.SessionLimit)
		if now := s.cfg.Now(); now.After(deadline) {
			if err := s.repo.SetStatus(ctx, sess.ID, string(api.StatusExpired), deadline); err != nil {
				return nil, fmt.Errorf("expire session: %w", err)
			}
			sess.Status = string(api.StatusExpired)
			sess.EndedAt = deadline
		}
	}
	return sess, nil
}

func (s *Service) complete(ctx context.Context, sess *store.LocalSession) error {
	now := s.cfg.Now()
	if err := s.repo.SetStatus(ctx, sess.ID, string(api.StatusCompleted), now); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	sess.Status = string(api.StatusCompleted)
	sess.EndedAt = now
	return nil
}

func requireActive(sess *store.LocalSession) error {
	if sess.Status != string(api.StatusActive) {
		return &api.NotActiveError{SessionID: sess.ID, Message: "session is " + sess.Status}
	}
	return nil
}

// nextQuestion returns a pointer into sess.Questions and the number of
// questions answered before it.
func nextQuestion(sess *store.LocalSession) (*store.LocalQuestion, int) {
	answered := 0
	var next *store.LocalQuestion
	for i := range sess.Questions {
		if sess.Questions[i].Answered {
			answered++
		} else if next == nil {
			next = &sess.Questions[i]
		}
	}
	return next, answered
}

func progress(answered, total int) int {
	if total == 0 {
		return 0
	}
	return answered * 100 / total
}

func toAPIQuestion(q store.LocalQuestion) *api.Question {
	return &api.Question{
		Text:       q.Text,
		Index:      q.Index,
		Difficulty: q.Difficulty,
		Category:   q.Category,
		TimeLimit:  q.TimeLimit,
	}
}

func buildSummary(sess *store.LocalSession, g *Grade) *api.Summary {
	sum := &api.Summary{
		SessionID: sess.ID,
		Role:      sess.Role,
		Status:    api.Status(sess.Status),
		Feedback: api.Feedback{
			OverallScore:    g.Overall,
			Strengths:       g.Strengths,
			Weaknesses:      g.Weaknesses,
			Recommendations: g.Recommendations,
		},
	}

	if !sess.EndedAt.IsZero() {
		sum.DurationMinutes = math.Round(sess.EndedAt.Sub(sess.StartedAt).Minutes()*10) / 10
	}

	catTotal := map[string]float64{}
	catCount := map[string]int{}
	for _, q := range sess.Questions {
		if !q.Answered {
			continue
		}
		sum.QuestionsAnswered++
		score := g.Scores[q.Index]
		if q.Category != "" {
			catTotal[q.Category] += score
			catCount[q.Category]++
		}
		sum.Answers = append(sum.Answers, api.AnswerReview{
			Question:      q.Text,
			Answer:        q.Answer,
			IsVoiceAnswer: q.IsVoice,
			ResponseTime:  q.ResponseTime,
			Score:         score,
			Feedback:      g.Feedback[q.Index],
		})
	}

	sum.Performance = api.Performance{
		OverallScore:   g.Overall,
		CategoryScores: map[string]float64{},
	}
	if n := len(sess.Questions); n > 0 {
		sum.Performance.CompletionRate = math.Round(float64(sum.QuestionsAnswered) / float64(n) * 100)
	}
	for cat, total := range catTotal {
		sum.Performance.CategoryScores[cat] = math.Round(total/float64(catCount[cat])*10) / 10
	}
	return sum
}
