// Package session is the interview screen: it renders the controller's
// state, forwards key presses as intents and owns the one-second tick.
package session

import (
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/intervue/internal/interview"
	"github.com/abhisek/intervue/internal/router"
	"github.com/abhisek/intervue/internal/screen"
	"github.com/abhisek/intervue/internal/screens/summary"
	"github.com/abhisek/intervue/internal/ui/components"
	"github.com/abhisek/intervue/internal/ui/layout"
)

// SessionScreen implements screen.Screen for a running interview.
type SessionScreen struct {
	ctrl      *interview.Controller
	summaries summary.Fetcher
	input     components.TextInput

	showingQuitConfirm bool
	done               bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.RoleProvider = (*SessionScreen)(nil)

// New creates a SessionScreen around ctrl. summaries may be nil, in
// which case a completed interview ends the program.
func New(ctrl *interview.Controller, summaries summary.Fetcher) *SessionScreen {
	return &SessionScreen{
		ctrl:      ctrl,
		summaries: summaries,
		input:     components.NewTextInput("Your answer", "Type your answer or press Ctrl+R to speak...", components.AnswerCharLimit),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(
		s.ctrl.Init(),
		s.input.Init(),
		tickCmd(),
	)
}

func (s *SessionScreen) Title() string {
	return "Interview"
}

func (s *SessionScreen) Role() string {
	return s.ctrl.View().Role
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	v := s.ctrl.View()
	switch {
	case s.showingQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	case v.ConfirmPending:
		return []layout.KeyHint{
			{Key: "Y", Description: "Submit empty"},
			{Key: "N", Description: "Keep answering"},
		}
	case v.State == interview.StateExpired:
		return []layout.KeyHint{{Key: "any key", Description: "Exit"}}
	case v.State == interview.StateLoading:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Quit"},
		}
	case v.State == interview.StateRecording:
		return []layout.KeyHint{
			{Key: "Ctrl+R", Description: "Stop"},
			{Key: "Ctrl+X", Description: "Cancel"},
		}
	case v.State == interview.StateProcessing:
		return []layout.KeyHint{{Key: "Ctrl+X", Description: "Cancel"}}
	case v.State == interview.StateSubmitting:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: "Record"},
		{Key: "Ctrl+U", Description: "Clear"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	v := s.ctrl.View()
	if s.showingQuitConfirm {
		return renderQuitConfirm(width)
	}
	switch v.State {
	case interview.StateExpired:
		return renderExpired(width, v)
	case interview.StateCompleted:
		return renderCompleted(width)
	case interview.StateLoading:
		return renderLoading(width, v)
	}
	return s.renderQuestionView(width, v)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		return s.handleTick(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	cmd := s.ctrl.Update(msg)
	return s, s.afterUpdate(cmd)
}

func (s *SessionScreen) handleTick(msg timerTickMsg) (screen.Screen, tea.Cmd) {
	if s.done {
		return s, nil
	}
	cmd := s.ctrl.Update(interview.TickMsg(msg))
	cmd = s.afterUpdate(cmd)
	if s.done {
		return s, cmd
	}
	return s, tea.Batch(cmd, tickCmd())
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	v := s.ctrl.View()

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			return s, tea.Quit
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if v.State == interview.StateExpired {
		return s, tea.Quit
	}

	if v.ConfirmPending {
		switch key {
		case "y", "Y", "enter":
			cmd, _ := s.ctrl.Submit(true)
			return s, s.afterUpdate(cmd)
		case "n", "N", "esc":
			s.ctrl.DismissConfirm()
			return s, nil
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.showingQuitConfirm = true
		return s, nil
	case "ctrl+r":
		var cmd tea.Cmd
		if v.State == interview.StateRecording {
			cmd, _ = s.ctrl.StopRecording()
		} else {
			cmd, _ = s.ctrl.StartRecording()
		}
		return s, s.afterUpdate(cmd)
	case "ctrl+x":
		cmd, _ := s.ctrl.CancelProcessing()
		return s, s.afterUpdate(cmd)
	case "ctrl+u":
		_ = s.ctrl.ClearAnswer()
		return s, s.afterUpdate(nil)
	case "enter":
		cmd, err := s.ctrl.Submit(false)
		if errors.Is(err, interview.ErrConfirmationRequired) {
			return s, nil
		}
		return s, s.afterUpdate(cmd)
	}

	if v.State == interview.StateLoading {
		if key == "r" || key == "R" {
			cmd, _ := s.ctrl.Retry()
			return s, s.afterUpdate(cmd)
		}
		return s, nil
	}

	var cmd tea.Cmd
	var changed bool
	s.input, cmd, changed = s.input.Update(msg)
	if changed {
		if err := s.ctrl.EditAnswer(s.input.Value()); err != nil {
			s.input.SetValue(s.ctrl.View().Answer)
		}
	}
	return s, cmd
}

// afterUpdate syncs the input with the controller and handles the end
// of the interview.
func (s *SessionScreen) afterUpdate(cmd tea.Cmd) tea.Cmd {
	v := s.ctrl.View()

	if s.input.Value() != v.Answer {
		s.input.SetValue(v.Answer)
	}
	s.input.SetReadOnly(!editable(v.State))

	if s.done || !v.State.Terminal() {
		return cmd
	}
	s.done = true
	s.showingQuitConfirm = false

	if v.State == interview.StateCompleted {
		next := summary.New(s.summaries, v.SessionID, v.Role)
		return tea.Batch(cmd, func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: next}
		})
	}
	return cmd
}

func editable(st interview.State) bool {
	switch st {
	case interview.StateQuestionActive, interview.StateReviewReady, interview.StateRecording:
		return true
	}
	return false
}

// timerWarning returns the countdown notice for the remaining seconds.
func timerWarning(remaining int) string {
	switch {
	case remaining <= 0:
		return ""
	case remaining <= 10:
		return "Time almost up!"
	case remaining <= 30:
		return "30 seconds remaining"
	case remaining <= 60:
		return "Less than a minute left"
	}
	return ""
}
