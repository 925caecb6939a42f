package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/intervue/internal/screen"
	"github.com/abhisek/intervue/internal/ui/layout"
)

type stubScreen struct {
	title   string
	role    string
	keys    []string
	initRan bool
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	return s, nil
}

func (s *stubScreen) View(int, int) string { return "body of " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Role() string         { return s.role }
func (s *stubScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Submit"}}
}

func TestAppModel_InitRunsInitialScreen(t *testing.T) {
	s := &stubScreen{title: "Interview"}
	m := newAppModel(s)
	m.Init()
	assert.True(t, s.initRan)
}

func TestAppModel_ForwardsEscToScreen(t *testing.T) {
	s := &stubScreen{title: "Interview"}
	m := newAppModel(s)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Nil(t, cmd)
	assert.Equal(t, []string{"esc"}, s.keys)
}

func TestAppModel_CtrlCQuits(t *testing.T) {
	m := newAppModel(&stubScreen{})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestAppModel_ViewFrame(t *testing.T) {
	s := &stubScreen{title: "Interview", role: "Data Scientist"}
	var model tea.Model = newAppModel(s)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	content := model.(AppModel).render()
	assert.Contains(t, content, "Intervue")
	assert.Contains(t, content, "Data Scientist")
	assert.Contains(t, content, "body of Interview")
	assert.Contains(t, content, "Submit")
}

func TestAppModel_TooSmall(t *testing.T) {
	var model tea.Model = newAppModel(&stubScreen{title: "Interview"})
	model, _ = model.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, model.(AppModel).render(), "Terminal too small")
}
