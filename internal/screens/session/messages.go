package session

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// timerTickMsg is sent every second to drive the question countdown.
type timerTickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
