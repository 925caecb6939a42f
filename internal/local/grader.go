package local

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/store"
)

// Grade is the scoring of one session.
type Grade struct {
	Scores          map[int]float64 // by question index
	Feedback        map[int]string
	Overall         float64
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

// Grader scores answers with an LLM.
type Grader struct {
	provider llm.Provider
}

// NewGrader creates a Grader using provider.
func NewGrader(provider llm.Provider) *Grader {
	return &Grader{provider: provider}
}

type gradingOutput struct {
	Answers []struct {
		Index    int     `json:"index"`
		Score    float64 `json:"score"`
		Feedback string  `json:"feedback"`
	} `json:"answers"`
	OverallScore    float64  `json:"overall_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Grade scores every answered question of s. Questions the model skips
// fall back to the offline heuristic.
func (g *Grader) Grade(ctx context.Context, s *store.LocalSession) (*Grade, error) {
	ctx = llm.WithPurpose(ctx, "grading")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      gradingSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildGradingMessage(s)}},
		Schema:      GradingSchema,
		MaxTokens:   4096,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM grading failed: %w", err)
	}

	var raw gradingOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	grade := heuristicGrade(s)
	for _, a := range raw.Answers {
		if _, ok := grade.Scores[a.Index]; !ok {
			continue
		}
		grade.Scores[a.Index] = clampScore(a.Score)
		grade.Feedback[a.Index] = strings.TrimSpace(a.Feedback)
	}
	grade.Overall = clampScore(raw.OverallScore)
	grade.Strengths = raw.Strengths
	grade.Weaknesses = raw.Weaknesses
	grade.Recommendations = raw.Recommendations
	return grade, nil
}

// heuristicGrade scores by answer substance alone. It is used when no
// LLM is configured or grading fails.
func heuristicGrade(s *store.LocalSession) *Grade {
	g := &Grade{
		Scores:   map[int]float64{},
		Feedback: map[int]string{},
	}

	var sum float64
	var answered, empty, spoken int
	for _, q := range s.Questions {
		if !q.Answered {
			continue
		}
		answered++
		if q.IsVoice {
			spoken++
		}

		words := len(strings.Fields(q.Answer))
		switch {
		case q.Answer == interview.NoAnswerText || words == 0:
			empty++
			g.Scores[q.Index] = 0
			g.Feedback[q.Index] = "No answer was given. Even a partial answer that states your approach earns credit."
		case words < 25:
			g.Scores[q.Index] = 3
			g.Feedback[q.Index] = "Very brief. Expand with a concrete example and the outcome."
		case words < 80:
			g.Scores[q.Index] = 5
			g.Feedback[q.Index] = "A reasonable start. Structure it as situation, action and result."
		default:
			g.Scores[q.Index] = 7
			g.Feedback[q.Index] = "Detailed answer. Check that every part addresses the question asked."
		}
		sum += g.Scores[q.Index]
	}

	if answered > 0 {
		g.Overall = math.Round(sum/float64(answered)*10) / 10
	}

	if answered-empty > 0 {
		g.Strengths = append(g.Strengths, fmt.Sprintf("Answered %d of %d questions", answered-empty, len(s.Questions)))
	}
	if spoken > 0 {
		g.Strengths = append(g.Strengths, "Practised answering out loud")
	}
	if empty > 0 {
		g.Weaknesses = append(g.Weaknesses, fmt.Sprintf("%d question(s) left without an answer", empty))
	}
	if answered < len(s.Questions) {
		g.Weaknesses = append(g.Weaknesses, "Session ended before all questions were answered")
	}
	g.Recommendations = []string{
		"Configure an LLM provider for detailed, per-answer feedback",
		"Practise the STAR structure for behavioral questions",
	}
	return g
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}
