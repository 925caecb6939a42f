package interview

import "strings"

// NoAnswerText is submitted in place of an empty answer.
const NoAnswerText = "No answer provided"

// Provenance records where the answer text came from.
type Provenance int

const (
	ProvenanceTyped Provenance = iota
	ProvenanceVoice
)

func (p Provenance) String() string {
	if p == ProvenanceVoice {
		return "voice"
	}
	return "typed"
}

// Answer is a finalized answer ready for submission.
type Answer struct {
	Content      string
	Provenance   Provenance
	AudioRef     string
	ResponseTime int // seconds since the question was shown
	Substituted  bool
}

// Buffer holds the answer being composed for the current question.
// A transcription is a draft: any edit turns it back into a typed answer.
type Buffer struct {
	text       string
	provenance Provenance
	audioRef   string
}

// Edit replaces the text with user input.
func (b *Buffer) Edit(text string) {
	b.text = text
	b.provenance = ProvenanceTyped
}

// SetTranscript replaces the text with a transcription.
func (b *Buffer) SetTranscript(text, audioRef string) {
	b.text = text
	b.provenance = ProvenanceVoice
	b.audioRef = audioRef
}

// Reset clears the buffer for a new question.
func (b *Buffer) Reset() {
	*b = Buffer{}
}

// Text returns the current text as composed.
func (b *Buffer) Text() string { return b.text }

// Provenance returns where the current text came from.
func (b *Buffer) Provenance() Provenance { return b.provenance }

// AudioRef returns the reference to the last uploaded recording, if any.
func (b *Buffer) AudioRef() string { return b.audioRef }

// Empty reports whether the trimmed text is empty.
func (b *Buffer) Empty() bool {
	return strings.TrimSpace(b.text) == ""
}

// Finalize trims the text and substitutes NoAnswerText when it is empty.
func (b *Buffer) Finalize(responseTime int) Answer {
	a := Answer{
		Content:      strings.TrimSpace(b.text),
		Provenance:   b.provenance,
		AudioRef:     b.audioRef,
		ResponseTime: responseTime,
	}
	if a.Content == "" {
		a.Content = NoAnswerText
		a.Substituted = true
	}
	return a
}
