package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	SessionID string    // restrict to one session ("" = all)
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
}

// AnswerEventData captures one acknowledged answer submission.
type AnswerEventData struct {
	SessionID     string
	QuestionIndex int
	QuestionText  string
	Answer        string
	Provenance    string // "typed" or "voice"
	Substituted   bool   // fallback text was sent for an empty answer
	AutoSubmitted bool   // submitted by timer expiry
	ResponseSecs  int
}

// AnswerEventRecord is a stored answer event.
type AnswerEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID         string
	Role              string
	Mode              string // "remote" or "local"
	Action            string // start, resume, complete, expire, abandon
	QuestionsAnswered int
	DurationSecs      int
	Detail            string
}

// SessionEventRecord is a stored session event.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	AudioMs      int64 // transcribed audio length, transcription calls only
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AudioMs      int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryAnswerEvents returns answer events in sequence order.
	QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error)

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns one LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// ActiveSession is the session the user last started and has not finished.
type ActiveSession struct {
	SessionID string
	Role      string
	UseResume bool
	Mode      string
	StartedAt time.Time
}

// SessionRepo remembers at most one active session between runs.
type SessionRepo interface {
	// SaveActive replaces the remembered session.
	SaveActive(ctx context.Context, s ActiveSession) error

	// Active returns the remembered session, or nil if there is none.
	Active(ctx context.Context) (*ActiveSession, error)

	// ClearActive forgets the remembered session if it matches sessionID.
	// An empty sessionID clears unconditionally.
	ClearActive(ctx context.Context, sessionID string) error
}

// LocalSession is an interview run entirely on this machine.
type LocalSession struct {
	ID        string
	Role      string
	UseResume bool
	Status    string
	StartedAt time.Time
	EndedAt   time.Time
	Summary   string // JSON-encoded graded summary, empty until graded
	Questions []LocalQuestion
}

// LocalQuestion is one question of a LocalSession and its answer.
type LocalQuestion struct {
	Index        int
	Text         string
	Difficulty   string
	Category     string
	TimeLimit    int
	Answered     bool
	Answer       string
	IsVoice      bool
	AudioRef     string
	ResponseTime int
	Score        float64
	Feedback     string
	AnsweredAt   time.Time
}

// InterviewRepo persists offline-mode interviews.
type InterviewRepo interface {
	// CreateSession inserts the session and its questions atomically.
	CreateSession(ctx context.Context, s *LocalSession) error

	// GetSession loads a session with its questions. Returns ErrNotFound
	// if it does not exist.
	GetSession(ctx context.Context, id string) (*LocalSession, error)

	// RecordAnswer stores the answer fields of q for its question index.
	RecordAnswer(ctx context.Context, sessionID string, q LocalQuestion) error

	// SetStatus updates the session status and end time.
	SetStatus(ctx context.Context, id, status string, endedAt time.Time) error

	// SaveSummary stores the encoded summary.
	SaveSummary(ctx context.Context, id, summary string) error

	// ListSessions returns sessions without questions, newest first.
	ListSessions(ctx context.Context, limit int) ([]LocalSession, error)
}
