package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

type screen int

const (
	screenMenu screen = iota
	screenPlay
	screenOnline
	screenHistory
	screenReplay
)

// SessionModel manages the full session flow: menu -> match or history ->
// menu. It is the top-level model for both local and SSH sessions.
type SessionModel struct {
	env       Env
	username  string
	session   *multiplayer.ChannelSession // nil when online play is off
	stageList []*stages.Stage
	width     int
	height    int

	screen  screen
	menu    MenuModel
	play    PlayModel
	online  OnlineModel
	history HistoryModel
	replay  ReplayModel
	err     string

	quitting bool
}

// NewSessionModel creates a new session model. session receives the
// coordinator's events and may be nil when env has no coordinator.
func NewSessionModel(env Env, username string, session *multiplayer.ChannelSession, width, height int) (SessionModel, error) {
	stageList, err := env.Stages.LoadAll()
	if err != nil {
		return SessionModel{}, fmt.Errorf("tui: loading stages: %w", err)
	}
	if env.Coordinator == nil {
		session = nil
	}
	m := SessionModel{
		env:       env,
		username:  username,
		session:   session,
		stageList: stageList,
		width:     width,
		height:    height,
	}
	setup := Setup{Opponents: 1, Difficulty: env.Match.Difficulty}
	if len(stageList) > 0 {
		setup.Stage = stageList[0].Number
	}
	m.menu = m.newMenu(setup)
	return m, nil
}

func (m SessionModel) newMenu(setup Setup) MenuModel {
	return NewMenuModel(m.stageList, setup, m.session != nil, m.env.Store != nil, m.width, m.height)
}

// Init starts the coordinator event pump.
func (m SessionModel) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent returns a command that waits for the next coordinator event.
// Exactly one is outstanding at a time for the whole session.
func (m SessionModel) waitForEvent() tea.Cmd {
	s := m.session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case evt := <-s.Events():
			return evt
		case <-s.Done():
			return nil
		}
	}
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case multiplayer.SessionEvent:
		next := m.waitForEvent()
		if m.screen != screenOnline {
			return m, next
		}
		model, cmd := m.updateScreen(msg)
		return model, tea.Batch(cmd, next)
	}
	return m.updateScreen(msg)
}

// updateScreen forwards msg to the active screen and handles transitions.
func (m SessionModel) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenMenu:
		return m.updateMenu(msg)

	case screenPlay:
		var next tea.Model
		next, cmd = m.play.Update(msg)
		m.play = next.(PlayModel)
		if m.play.IsQuitting() {
			m.quitting = true
		} else if m.play.BackToMenu() {
			return m.toMenu()
		}

	case screenOnline:
		var next tea.Model
		next, cmd = m.online.Update(msg)
		m.online = next.(OnlineModel)
		if m.online.IsQuitting() {
			m.quitting = true
		} else if m.online.BackToMenu() {
			return m.toMenu()
		}

	case screenHistory:
		var next tea.Model
		next, cmd = m.history.Update(msg)
		m.history = next.(HistoryModel)
		switch {
		case m.history.IsQuitting():
			m.quitting = true
		case m.history.IsGoingBack():
			return m.toMenu()
		case m.history.Selected() != "":
			return m.openReplay(m.history.Selected())
		}

	case screenReplay:
		var next tea.Model
		next, cmd = m.replay.Update(msg)
		m.replay = next.(ReplayModel)
		if m.replay.IsQuitting() {
			m.quitting = true
		} else if m.replay.BackToMenu() {
			m.history = NewHistoryModel(m.env.Store, m.username, m.width, m.height)
			m.screen = screenHistory
			return m, nil
		}
	}
	return m, cmd
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.menu.Update(msg)
	m.menu = next.(MenuModel)

	switch m.menu.Choice() {
	case ChoiceQuit:
		m.quitting = true
		return m, tea.Quit

	case ChoicePlay:
		setup := m.menu.Setup()
		game, bots, err := newLocalMatch(m.env, setup, m.username)
		if err != nil {
			m.err = err.Error()
			m.menu = m.newMenu(setup)
			return m, nil
		}
		m.err = ""
		m.play = NewPlayModel(game, bots, m.env.Store, m.width, m.height)
		m.screen = screenPlay
		return m, m.play.Init()

	case ChoiceOnline:
		m.err = ""
		m.online = NewOnlineModel(m.session.ID(), m.username, m.menu.Setup(), m.env.Coordinator, m.width, m.height)
		m.screen = screenOnline
		return m, m.online.Init()

	case ChoiceHistory:
		m.err = ""
		m.history = NewHistoryModel(m.env.Store, m.username, m.width, m.height)
		m.screen = screenHistory
		return m, m.history.Init()
	}
	return m, cmd
}

func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.menu = m.newMenu(m.menu.Setup())
	m.screen = screenMenu
	return m, m.menu.Init()
}

// openReplay loads a recorded match into the replay viewer.
func (m SessionModel) openReplay(matchID string) (tea.Model, tea.Cmd) {
	m.history = NewHistoryModel(m.env.Store, m.username, m.width, m.height)
	rp, err := loadReplay(m.env, matchID)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	stage, err := m.env.Stages.ByNumber(rp.Stage)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	viewer, err := NewReplayModel(rp, stage, m.env.Catalog)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	m.replay = viewer
	m.screen = screenReplay
	return m, m.replay.Init()
}

func loadReplay(env Env, matchID string) (*replay.Replay, error) {
	blob, err := env.Store.ReplayBlob(matchID)
	if err != nil {
		return nil, err
	}
	return replay.Decode(blob)
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	var out string
	switch m.screen {
	case screenPlay:
		out = m.play.View()
	case screenOnline:
		out = m.online.View()
	case screenHistory:
		out = m.history.View()
	case screenReplay:
		out = m.replay.View()
	default:
		out = m.menu.View()
	}
	if m.err != "" {
		out = CurrentTheme().StatusError.Render(m.err) + "\n" + out
	}
	return out
}

// RunSession runs a local session on the terminal. width and height are
// the initial terminal size; the program tracks resizes itself.
func RunSession(env Env, username string, width, height int) error {
	var session *multiplayer.ChannelSession
	if env.Coordinator != nil {
		session = multiplayer.NewChannelSession(multiplayer.SessionID("local-"+username), 0)
		env.Coordinator.Sessions().Register(session)
		defer func() {
			env.Coordinator.Send(multiplayer.SessionDisconnectedMsg{SessionID: session.ID()})
			env.Coordinator.Sessions().Unregister(session.ID())
			session.Close()
		}()
	}

	model, err := NewSessionModel(env, username, session, width, height)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
