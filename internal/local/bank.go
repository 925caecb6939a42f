package local

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/abhisek/intervue/internal/store"
)

type bankEntry struct {
	text       string // may contain %s for the role
	category   string
	difficulty string
	timeLimit  int
}

// bank is used when no LLM is configured or generation fails.
var bank = []bankEntry{
	{"Tell me about yourself and why you are interested in this %s position.", "behavioral", "easy", 120},
	{"Describe a project you are proud of. What was your specific contribution?", "behavioral", "easy", 120},
	{"Tell me about a time you disagreed with a teammate. How did you resolve it?", "behavioral", "medium", 150},
	{"Describe a situation where you missed a deadline. What did you learn?", "behavioral", "medium", 150},
	{"How do you prioritize when everything seems urgent?", "behavioral", "medium", 120},
	{"What does a typical day look like for a strong %s, in your view?", "communication", "easy", 90},
	{"Explain a complex technical topic you know well to someone without a technical background.", "communication", "medium", 150},
	{"How do you give and receive feedback on your work?", "communication", "easy", 120},
	{"Walk me through how you would debug a production issue that only some users see.", "problem-solving", "medium", 180},
	{"You inherit a codebase with no tests and a release next week. What do you do first?", "problem-solving", "medium", 180},
	{"How would you estimate the effort for a feature you have never built before?", "problem-solving", "hard", 180},
	{"Design a URL shortener. Cover storage, the read path and how it scales.", "system-design", "hard", 300},
	{"How would you design a rate limiter for a public API?", "system-design", "hard", 240},
	{"What trade-offs do you consider when choosing between SQL and NoSQL storage?", "technical", "medium", 150},
	{"Explain the difference between concurrency and parallelism with an example.", "technical", "medium", 120},
	{"What makes code maintainable? Give concrete practices you follow.", "technical", "easy", 120},
	{"How do you make sure a change you ship as a %s does not break existing behavior?", "technical", "medium", 150},
	{"Where do you see yourself growing as a %s over the next two years?", "behavioral", "easy", 90},
}

// bankQuestions draws n distinct questions, opening with an easy
// behavioral question and spreading the rest across categories.
func bankQuestions(role string, n int, rng *rand.Rand) []store.LocalQuestion {
	if n <= 0 {
		return nil
	}
	if n > len(bank) {
		n = len(bank)
	}
	role = strings.TrimSpace(role)
	if role == "" {
		role = "candidate"
	}

	order := rng.Perm(len(bank))
	picked := make([]bankEntry, 0, n)
	used := make(map[int]bool, n)

	// Opener.
	for _, i := range order {
		if bank[i].category == "behavioral" && bank[i].difficulty == "easy" {
			picked = append(picked, bank[i])
			used[i] = true
			break
		}
	}

	// One per category first, then fill.
	seen := map[string]bool{}
	for _, p := range picked {
		seen[p.category] = true
	}
	for _, i := range order {
		if len(picked) >= n {
			break
		}
		if used[i] || seen[bank[i].category] {
			continue
		}
		picked = append(picked, bank[i])
		used[i] = true
		seen[bank[i].category] = true
	}
	for _, i := range order {
		if len(picked) >= n {
			break
		}
		if !used[i] {
			picked = append(picked, bank[i])
			used[i] = true
		}
	}

	out := make([]store.LocalQuestion, len(picked))
	for i, e := range picked {
		text := e.text
		if strings.Contains(text, "%s") {
			text = fmt.Sprintf(text, role)
		}
		out[i] = store.LocalQuestion{
			Index:      i,
			Text:       text,
			Category:   e.category,
			Difficulty: e.difficulty,
			TimeLimit:  e.timeLimit,
		}
	}
	return out
}
