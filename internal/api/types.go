package api

import "time"

// DefaultTimeLimit is the per-question time limit in seconds used when the
// server does not send one.
const DefaultTimeLimit = 120

// Status is the server-side lifecycle status of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// Question is a single interview question as delivered by the server.
// Questions are immutable once delivered.
type Question struct {
	Text       string `json:"text"`
	Index      int    `json:"index"` // 0-based position in the session
	Difficulty string `json:"difficulty,omitempty"`
	Category   string `json:"category,omitempty"`
	TimeLimit  int    `json:"timeLimit,omitempty"` // seconds
}

// TimeLimitSeconds returns the question's time limit, falling back to
// DefaultTimeLimit when absent or invalid.
func (q Question) TimeLimitSeconds() int {
	if q.TimeLimit <= 0 {
		return DefaultTimeLimit
	}
	return q.TimeLimit
}

// Number returns the 1-based question number for display.
func (q Question) Number() int {
	return q.Index + 1
}

// StartRequest is the body of a session start call.
type StartRequest struct {
	Role      string `json:"role"`
	UseResume bool   `json:"useResume"`
}

// StartResponse is returned when a session is created.
type StartResponse struct {
	SessionID string `json:"sessionId"`
}

// QuestionResponse is the result of fetching the current question.
// When Completed is true, Question is nil.
type QuestionResponse struct {
	Question       *Question `json:"question,omitempty"`
	Progress       int       `json:"progress"`
	TotalQuestions int       `json:"totalQuestions"`
	Completed      bool      `json:"completed"`
}

// AnswerRequest is the body of an answer submission.
type AnswerRequest struct {
	Answer        string `json:"answer"`
	IsVoiceAnswer bool   `json:"isVoiceAnswer"`
	AudioRef      string `json:"audioFilePath,omitempty"`
	ResponseTime  int    `json:"responseTime,omitempty"` // seconds spent on the question
}

// SubmitResponse is the server's acknowledgement of an answer.
type SubmitResponse struct {
	Progress     int       `json:"progress"`
	Completed    bool      `json:"completed"`
	NextQuestion *Question `json:"nextQuestion,omitempty"`
}

// TranscriptResponse is the result of a voice-answer upload. An empty
// Transcript is a valid result meaning no speech was detected.
type TranscriptResponse struct {
	Transcript string `json:"transcript"`
	AudioRef   string `json:"audioFilePath"`
}

// SessionStatus is the status snapshot of a session.
type SessionStatus struct {
	ID     string `json:"_id,omitempty"`
	Role   string `json:"role,omitempty"`
	Status Status `json:"status"`
}

// Summary is the graded result of a finished session.
type Summary struct {
	SessionID         string         `json:"sessionId"`
	Role              string         `json:"role"`
	Status            Status         `json:"status"`
	DurationMinutes   float64        `json:"duration"`
	QuestionsAnswered int            `json:"questionsAnswered"`
	Performance       Performance    `json:"performance"`
	Feedback          Feedback       `json:"summary"`
	Answers           []AnswerReview `json:"answers"`
}

// Performance holds the numeric scoring of a session.
type Performance struct {
	CompletionRate float64            `json:"completionRate"`
	OverallScore   float64            `json:"overallScore"`
	CategoryScores map[string]float64 `json:"categoryScores"`
}

// Feedback is the narrative part of a summary.
type Feedback struct {
	OverallScore    float64  `json:"overallScore"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// AnswerReview is one graded question/answer pair in a summary.
type AnswerReview struct {
	Question      string  `json:"question"`
	Answer        string  `json:"answer"`
	IsVoiceAnswer bool    `json:"isVoiceAnswer"`
	ResponseTime  int     `json:"responseTime"`
	Score         float64 `json:"score"`
	Feedback      string  `json:"feedback"`
}

// VersionInfo is returned by the version endpoint.
type VersionInfo struct {
	Version string    `json:"version"`
	Time    time.Time `json:"time,omitempty"`
}
