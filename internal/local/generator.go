package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/llm"
	"github.com/abhisek/intervue/internal/store"
)

// Generator writes interview questions with an LLM.
type Generator struct {
	provider    llm.Provider
	maxTokens   int
	temperature float64
}

// NewGenerator creates a Generator using provider.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider, maxTokens: 2048, temperature: 0.8}
}

type questionsOutput struct {
	Questions []struct {
		Text       string `json:"text"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
		TimeLimit  int    `json:"time_limit"`
	} `json:"questions"`
}

// Generate returns up to n questions for role, indexed from 0.
func (g *Generator) Generate(ctx context.Context, role string, useResume bool, n int) ([]store.LocalQuestion, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      questionSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildQuestionsMessage(role, useResume, n)}},
		Schema:      QuestionsSchema,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionsOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	var out []store.LocalQuestion
	for _, q := range raw.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		out = append(out, store.LocalQuestion{
			Index:      len(out),
			Text:       text,
			Category:   q.Category,
			Difficulty: q.Difficulty,
			TimeLimit:  clampTimeLimit(q.TimeLimit),
		})
		if len(out) == n {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("LLM returned no usable questions")
	}
	return out, nil
}

func clampTimeLimit(secs int) int {
	switch {
	case secs <= 0:
		return api.DefaultTimeLimit
	case secs < 60:
		return 60
	case secs > 300:
		return 300
	default:
		return secs
	}
}
