package local

import "github.com/abhisek/intervue/internal/llm"

var categories = []any{"behavioral", "technical", "system-design", "problem-solving", "communication"}

// QuestionsSchema is the structured output for question generation.
var QuestionsSchema = &llm.Schema{
	Name:        "interview-questions",
	Description: "An ordered list of mock interview questions for one role",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text": map[string]any{
							"type":        "string",
							"description": "The question as the interviewer would ask it, one or two sentences",
						},
						"category": map[string]any{
							"type": "string",
							"enum": categories,
						},
						"difficulty": map[string]any{
							"type": "string",
							"enum": []any{"easy", "medium", "hard"},
						},
						"time_limit": map[string]any{
							"type":        "integer",
							"minimum":     30,
							"maximum":     600,
							"description": "Seconds the candidate gets to answer",
						},
					},
					"required":             []any{"text", "category", "difficulty", "time_limit"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// GradingSchema is the structured output for grading a finished session.
var GradingSchema = &llm.Schema{
	Name:        "interview-grading",
	Description: "Scores and feedback for every answer of a mock interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index": map[string]any{
							"type":        "integer",
							"description": "The question index the score belongs to",
						},
						"score": map[string]any{
							"type":    "number",
							"minimum": 0,
							"maximum": 10,
						},
						"feedback": map[string]any{
							"type":        "string",
							"description": "Two or three sentences of specific, actionable feedback",
						},
					},
					"required":             []any{"index", "score", "feedback"},
					"additionalProperties": false,
				},
			},
			"overall_score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 10,
			},
			"strengths":       stringList,
			"weaknesses":      stringList,
			"recommendations": stringList,
		},
		"required":             []any{"answers", "overall_score", "strengths", "weaknesses", "recommendations"},
		"additionalProperties": false,
	},
}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}
