// Package tui provides the Bubble Tea screens of inkgrid: the menu, local
// and online matches, the replay viewer and match history, plus the SSH
// server that serves them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// clockMsg is sent to refresh time-dependent views such as turn countdowns.
type clockMsg time.Time

// clockTick returns a Bubble Tea command that sends a clock message after d.
func clockTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}
