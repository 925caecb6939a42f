package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/ui/components"
	"github.com/abhisek/intervue/internal/ui/layout"
	"github.com/abhisek/intervue/internal/ui/theme"
)

// renderQuestionView renders the active question display.
func (s *SessionScreen) renderQuestionView(width int, v interview.View) string {
	if v.Question == nil {
		return renderLoading(width, v)
	}

	var b strings.Builder

	// Info line: question number on the left, countdown on the right.
	number := fmt.Sprintf("  Question %d", v.Question.Number())
	if v.Total > 0 {
		number = fmt.Sprintf("  Question %d of %d", v.Question.Number(), v.Total)
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(number)

	meta := []string{}
	if v.Question.Category != "" {
		meta = append(meta, v.Question.Category)
	}
	if v.Question.Difficulty != "" {
		meta = append(meta, v.Question.Difficulty)
	}
	if len(meta) > 0 {
		infoLeft += lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + strings.Join(meta, " · "))
	}

	timer := theme.Countdown(v.Remaining).Render(formatClock(v.Remaining))
	if !v.TimerRunning && v.Remaining > 0 {
		timer += lipgloss.NewStyle().Foreground(theme.TextDim).Render(" (paused)")
	}

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(timer) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + timer
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	bar := components.NewProgressBar("", float64(v.Progress)/100, true, width-8)
	b.WriteString("  " + bar.View())
	b.WriteString("\n")
	b.WriteString("  " + layout.Divider(width+4, width))
	b.WriteString("\n\n")

	textWidth := min(width-8, 80)
	if layout.IsCompactWidth(width) {
		textWidth = width - 4
	}
	question := lipgloss.NewStyle().
		Width(textWidth).
		Foreground(theme.Text).
		Bold(true).
		Render(v.Question.Text)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, question))
	b.WriteString("\n\n")

	if w := timerWarning(v.Remaining); w != "" && v.State != interview.StateSubmitting {
		b.WriteString(layout.Centered(width, theme.Countdown(v.Remaining), w))
		b.WriteString("\n\n")
	}

	if badge := voiceBadge(v); badge != "" {
		b.WriteString(layout.Centered(width, lipgloss.NewStyle(), badge))
		b.WriteString("\n")
	}

	input := lipgloss.NewStyle().Width(textWidth).Render(s.input.View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, input))
	b.WriteString("\n\n")

	if v.ConfirmPending {
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Warning).Bold(true), v.Message))
		b.WriteString("\n")
		b.WriteString(layout.Centered(width, theme.Hint, "[Y] Submit empty   [N] Keep answering"))
	} else if v.Message != "" {
		b.WriteString(layout.Centered(width, messageStyle(v), v.Message))
	}

	return b.String()
}

func voiceBadge(v interview.View) string {
	switch v.State {
	case interview.StateRecording:
		if v.Voice == interview.VoiceStarting {
			return lipgloss.NewStyle().Foreground(theme.Warning).Render("◌ starting microphone")
		}
		return lipgloss.NewStyle().Foreground(theme.Recording).Bold(true).Render("● REC")
	case interview.StateProcessing:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Render("◐ transcribing")
	case interview.StateSubmitting:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Render("◐ submitting")
	case interview.StateReviewReady:
		return lipgloss.NewStyle().Foreground(theme.Success).Render("✓ transcribed")
	}
	return ""
}

func messageStyle(v interview.View) lipgloss.Style {
	switch v.Message {
	case interview.MsgTranscribeFailed, interview.MsgTranscribeTimeout, interview.MsgNoSpeech:
		return lipgloss.NewStyle().Foreground(theme.Warning)
	case interview.MsgAnswerSaved, interview.MsgTranscriptReady:
		return lipgloss.NewStyle().Foreground(theme.Success)
	case interview.MsgFinishProcessing:
		return lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(theme.TextDim)
}

func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true), "Leave the interview?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "The session stays open. Run intervue again to resume."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error), "[Y] Yes, leave"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Primary), "[N] No, keep going"))
	return b.String()
}

// renderLoading renders the loading state, with the failure if any.
func renderLoading(width int, v interview.View) string {
	msg := v.Message
	if msg == "" {
		msg = "Preparing your interview..."
	}
	return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim), "\n\n\n"+msg)
}

func renderExpired(width int, v interview.View) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Error).Bold(true), interview.MsgSessionExpired))
	b.WriteString("\n\n")
	if v.Answered > 0 {
		b.WriteString(layout.Centered(width, lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("%d answer(s) were saved before the session ended.", v.Answered)))
		b.WriteString("\n")
	}
	b.WriteString(layout.Centered(width, theme.Hint, "Press any key to exit."))
	return b.String()
}

func renderCompleted(width int) string {
	return layout.Centered(width, lipgloss.NewStyle().Foreground(theme.Success).Bold(true), "\n\n\n"+interview.MsgCompleted)
}
