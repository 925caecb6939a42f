package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_EditAfterTranscriptIsTyped(t *testing.T) {
	var b Buffer
	b.SetTranscript("I would use a hash map", "uploads/1.wav")
	assert.Equal(t, ProvenanceVoice, b.Provenance())

	b.Edit("I would use a hash map keyed by id")
	assert.Equal(t, ProvenanceTyped, b.Provenance())
	assert.Equal(t, "uploads/1.wav", b.AudioRef(), "audio reference survives edits")
}

func TestBuffer_Finalize(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		want        string
		substituted bool
	}{
		{"trims", "  queue it \n", "queue it", false},
		{"empty", "", NoAnswerText, true},
		{"whitespace", " \t\n", NoAnswerText, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Buffer
			b.Edit(tt.text)
			a := b.Finalize(12)
			assert.Equal(t, tt.want, a.Content)
			assert.Equal(t, tt.substituted, a.Substituted)
			assert.Equal(t, 12, a.ResponseTime)
		})
	}
}

func TestBuffer_Reset(t *testing.T) {
	var b Buffer
	b.SetTranscript("x", "ref")
	b.Reset()
	assert.True(t, b.Empty())
	assert.Equal(t, ProvenanceTyped, b.Provenance())
	assert.Empty(t, b.AudioRef())
}
