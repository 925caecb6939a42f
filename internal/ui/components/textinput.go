package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/intervue/internal/ui/theme"
)

// AnswerCharLimit caps a typed answer.
const AnswerCharLimit = 4000

// TextInput wraps bubbles/textinput with Intervue styling. It reports
// whether a key actually changed the value so callers can forward edits.
type TextInput struct {
	Model    textinput.Model
	Label    string
	readOnly bool
}

// NewTextInput creates a new focused text input.
func NewTextInput(label, placeholder string, limit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()

	return TextInput{Model: ti, Label: label}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update handles messages. changed is true when the value differs after
// the update.
func (t TextInput) Update(msg tea.Msg) (ti TextInput, cmd tea.Cmd, changed bool) {
	if t.readOnly {
		return t, nil, false
	}
	before := t.Model.Value()
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd, t.Model.Value() != before
}

// SetReadOnly blocks edits while keeping the value visible.
func (t *TextInput) SetReadOnly(ro bool) {
	if ro == t.readOnly {
		return
	}
	t.readOnly = ro
	if ro {
		t.Model.Blur()
	} else {
		t.Model.Focus()
	}
}

// SetValue replaces the value and moves the cursor to the end.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
	t.Model.CursorEnd()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// View renders the labelled input.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label == "" {
		return view
	}
	label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(t.Label)
	return label + "\n" + view
}
