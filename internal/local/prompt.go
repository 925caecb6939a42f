package local

import (
	"fmt"
	"strings"

	"github.com/abhisek/intervue/internal/store"
)

const questionSystemPrompt = `You are an experienced hiring manager running a realistic mock interview. You ask clear, open-ended questions that a candidate can answer out loud in a few minutes.`

func buildQuestionsMessage(role string, useResume bool, n int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n", role)
	fmt.Fprintf(&b, "Number of questions: %d\n", n)
	if useResume {
		b.WriteString("The candidate asked for questions about their own experience. Ask them to walk through concrete past work.\n")
	}

	b.WriteString(`
Instructions:
1. Start with an easy behavioral question that lets the candidate settle in.
2. Mix categories: behavioral, technical, system-design, problem-solving, communication. Weight technical and system-design toward engineering roles.
3. Increase difficulty gradually. End with at most one hard question.
4. Give each question a time limit between 60 and 300 seconds that fits its depth.
5. Plain text only. No numbering or markdown in the question text.`)

	return b.String()
}

const gradingSystemPrompt = `You are a fair, specific interview coach. You grade each answer from 0 to 10 against what a strong candidate for the role would say, and you explain the score in terms the candidate can act on.`

func buildGradingMessage(s *store.LocalSession) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Role: %s\n\n", s.Role)
	for _, q := range s.Questions {
		if !q.Answered {
			continue
		}
		fmt.Fprintf(&b, "Question %d [%s, %s]: %s\n", q.Index, q.Category, q.Difficulty, q.Text)
		fmt.Fprintf(&b, "Answer (%s, %ds): %s\n\n", answerMode(q), q.ResponseTime, q.Answer)
	}

	b.WriteString(`Instructions:
- Return one entry in "answers" per question above, using its index.
- An answer of "No answer provided" scores 0.
- Spoken answers are transcripts; do not penalize filler words or punctuation.
- overall_score is your holistic judgement, not a plain average.
- List two or three strengths, weaknesses and recommendations each.`)

	return b.String()
}

func answerMode(q store.LocalQuestion) string {
	if q.IsVoice {
		return "spoken"
	}
	return "typed"
}
