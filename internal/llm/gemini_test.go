package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_score": map[string]any{"type": "number"},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"level": map[string]any{"type": "string", "enum": []any{"junior", "mid", "senior"}},
			"answered": map[string]any{"type": "integer"},
		},
		"required": []any{"overall_score", "strengths"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["overall_score"].Type != genai.TypeNumber {
		t.Errorf("overall_score: got %s", schema.Properties["overall_score"].Type)
	}
	if schema.Properties["answered"].Type != genai.TypeInteger {
		t.Errorf("answered: got %s", schema.Properties["answered"].Type)
	}
	if got := schema.Properties["strengths"]; got.Type != genai.TypeArray || got.Items.Type != genai.TypeString {
		t.Errorf("strengths: got %s of %v", got.Type, got.Items)
	}
	if len(schema.Properties["level"].Enum) != 3 {
		t.Errorf("expected 3 enum values, got %d", len(schema.Properties["level"].Enum))
	}
	if len(schema.Required) != 2 {
		t.Errorf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}},
	}
	if got := mapGeminiStopReason(resp); got != "max_tokens" {
		t.Errorf("got %q, want max_tokens", got)
	}
	if got := mapGeminiStopReason(&genai.GenerateContentResponse{}); got != "end" {
		t.Errorf("got %q, want end", got)
	}
}
