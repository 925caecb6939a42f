package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/api"
	"github.com/abhisek/intervue/internal/screen"
	"github.com/abhisek/intervue/internal/ui/layout"
	"github.com/abhisek/intervue/internal/ui/theme"
)

const fetchTimeout = 60 * time.Second

// Fetcher loads the results of a finished session.
type Fetcher interface {
	FetchSummary(ctx context.Context, sessionID string) (*api.Summary, error)
}

type summaryLoadedMsg struct {
	Summary *api.Summary
	Err     error
}

// SummaryScreen displays the interview results.
type SummaryScreen struct {
	fetcher   Fetcher
	sessionID string
	role      string

	summary *api.Summary
	err     error
	loading bool
	offset  int
	height  int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.RoleProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen that loads the summary for sessionID.
// A nil fetcher shows only the completion notice.
func New(fetcher Fetcher, sessionID, role string) *SummaryScreen {
	return &SummaryScreen{fetcher: fetcher, sessionID: sessionID, role: role}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *SummaryScreen) load() tea.Cmd {
	if s.fetcher == nil {
		return nil
	}
	s.loading = true
	s.err = nil
	fetcher, id := s.fetcher, s.sessionID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		sum, err := fetcher.FetchSummary(ctx, id)
		return summaryLoadedMsg{Summary: sum, Err: err}
	}
}

func (s *SummaryScreen) Title() string {
	return "Interview Summary"
}

func (s *SummaryScreen) Role() string {
	return s.role
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	if s.err != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Enter", Description: "Exit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Exit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryLoadedMsg:
		s.loading = false
		s.summary, s.err = msg.Summary, msg.Err
		s.offset = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		case "r", "R":
			if s.err != nil && !s.loading {
				return s, s.load()
			}
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			s.offset++
		case "pgdown", "space":
			s.offset += max(s.height-2, 1)
		case "pgup":
			s.offset = max(s.offset-max(s.height-2, 1), 0)
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	s.height = height
	switch {
	case s.loading:
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\nGrading your answers...")
	case s.err != nil:
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error),
			fmt.Sprintf("\n\n\nCould not load the summary: %v\n\nPress R to retry.", s.err))
	case s.summary == nil:
		return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success).Bold(true), "\n\n\nInterview complete!")
	}

	lines := strings.Split(Render(s.summary, width), "\n")
	if height <= 0 || len(lines) <= height {
		s.offset = 0
		return strings.Join(lines, "\n")
	}
	s.offset = min(s.offset, len(lines)-height)
	return strings.Join(lines[s.offset:s.offset+height], "\n")
}

// Render formats a summary for a terminal of the given width.
func Render(sum *api.Summary, width int) string {
	var b strings.Builder
	center := func(style lipgloss.Style, text string) {
		b.WriteString(layout.Centered(width, style, text))
		b.WriteString("\n")
	}
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	text := theme.Body

	center(theme.Title, "Interview complete!")
	center(theme.Subtitle, fmt.Sprintf("%s  ·  %.0f min  ·  %s", sum.Role, sum.DurationMinutes, sum.Status))
	b.WriteString("\n")

	overall := sum.Performance.OverallScore
	if overall == 0 {
		overall = sum.Feedback.OverallScore
	}
	card := theme.Card.Render(lipgloss.JoinVertical(lipgloss.Center,
		theme.Score(overall).Render(fmt.Sprintf("Overall score: %.1f / 10", overall)),
		text.Render(fmt.Sprintf("Questions answered: %d    Completion: %.0f%%",
			sum.QuestionsAnswered, sum.Performance.CompletionRate)),
	))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, card))
	b.WriteString("\n\n")

	section := func(title string) {
		center(dim, title)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, layout.Divider(width, 60)))
		b.WriteString("\n\n")
	}

	if len(sum.Performance.CategoryScores) > 0 {
		section("Categories")
		cats := make([]string, 0, len(sum.Performance.CategoryScores))
		for c := range sum.Performance.CategoryScores {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			v := sum.Performance.CategoryScores[c]
			line := fmt.Sprintf("%-16s %s", c, theme.Score(v).Render(fmt.Sprintf("%.1f", v)))
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	list := func(title string, items []string, style lipgloss.Style) {
		if len(items) == 0 {
			return
		}
		section(title)
		for _, it := range items {
			block := style.Width(min(width-8, 70)).Render("• " + it)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	list("Strengths", sum.Feedback.Strengths, lipgloss.NewStyle().Foreground(theme.Success))
	list("Areas to improve", sum.Feedback.Weaknesses, lipgloss.NewStyle().Foreground(theme.Warning))
	list("Recommendations", sum.Feedback.Recommendations, text)

	if len(sum.Answers) > 0 {
		section("Answers")
		for i, a := range sum.Answers {
			mode := "typed"
			if a.IsVoiceAnswer {
				mode = "spoken"
			}
			head := fmt.Sprintf("%d. %s", i+1, a.Question)
			meta := fmt.Sprintf("%s · %ds · ", mode, a.ResponseTime) + theme.Score(a.Score).Render(fmt.Sprintf("%.1f", a.Score))
			block := lipgloss.JoinVertical(lipgloss.Left,
				text.Bold(true).Width(min(width-8, 70)).Render(head),
				dim.Width(min(width-8, 70)).Render(a.Answer),
				dim.Render(meta),
			)
			if a.Feedback != "" {
				block = lipgloss.JoinVertical(lipgloss.Left, block,
					lipgloss.NewStyle().Foreground(theme.Secondary).Width(min(width-8, 70)).Render(a.Feedback))
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, block))
			b.WriteString("\n\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
