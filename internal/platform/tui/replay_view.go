package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/replay"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

// ReplayModel steps through a recorded match. Stepping forward resolves
// the next turn on the board; stepping back undoes the last one.
type ReplayModel struct {
	replay  *replay.Replay
	stage   *stages.Stage
	catalog *cards.Catalog
	board   *engine.Board
	applied []engine.PlacementResults // one entry per resolved turn
	names   []string
	keys    ReplayKeyMap
	help    help.Model
	err     error
	width   int
	height  int

	quitting bool
	back     bool
}

// NewReplayModel creates a viewer positioned before the first turn.
func NewReplayModel(rp *replay.Replay, stage *stages.Stage, catalog *cards.Catalog) (ReplayModel, error) {
	board, err := stage.NewBoard(len(rp.Players))
	if err != nil {
		return ReplayModel{}, err
	}
	names := make([]string, len(rp.Players))
	for i, p := range rp.Players {
		names[i] = p.Name
	}
	return ReplayModel{
		replay:  rp,
		stage:   stage,
		catalog: catalog,
		board:   board,
		names:   names,
		keys:    DefaultReplayKeyMap(),
		help:    help.New(),
	}, nil
}

func playerColors(rp *replay.Replay) []replay.Color {
	colors := make([]replay.Color, len(rp.Players))
	for i, p := range rp.Players {
		colors[i] = p.Color
	}
	return colors
}

// Turn returns the number of turns currently applied.
func (m ReplayModel) Turn() int {
	return len(m.applied)
}

// Board returns the board after the applied turns.
func (m ReplayModel) Board() *engine.Board {
	return m.board
}

// Forward applies the next recorded turn. It reports false at the end.
func (m *ReplayModel) Forward() bool {
	turn := len(m.applied)
	if turn >= len(m.replay.Turns) {
		return false
	}
	res, err := m.replay.Apply(m.board, turn, m.catalog)
	if err != nil {
		m.err = err
		return false
	}
	m.applied = append(m.applied, res)
	return true
}

// Back undoes the last applied turn. It reports false at the start.
func (m *ReplayModel) Back() bool {
	if len(m.applied) == 0 {
		return false
	}
	last := len(m.applied) - 1
	engine.UndoTurn(m.board, m.applied[last])
	m.applied = m.applied[:last]
	return true
}

// Init initializes the replay model.
func (m ReplayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Back):
			m.back = true
		case key.Matches(msg, m.keys.Next):
			m.Forward()
		case key.Matches(msg, m.keys.Prev):
			m.Back()
		case key.Matches(msg, m.keys.First):
			for m.Back() {
			}
		case key.Matches(msg, m.keys.Last):
			for m.Forward() {
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

// View renders the board after the applied turns.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}
	t := CurrentTheme().WithPlayerColors(playerColors(m.replay))

	view := match.View{
		Player:    -1,
		Players:   len(m.replay.Players),
		Board:     m.board,
		Turn:      len(m.applied),
		TurnLimit: len(m.replay.Turns),
	}
	h := hudState{
		title: fmt.Sprintf("Replay · %s", m.stage.Name),
		view:  view,
		names: m.names,
	}
	switch {
	case m.err != nil:
		h.status, h.statusErr = m.err.Error(), true
	case len(m.applied) > 0:
		h.status = m.describeTurn(len(m.applied) - 1)
	default:
		h.status = "Start of match"
	}
	return renderGame(t, h) + "\n" + t.HUDControls.Render(m.help.View(m.keys))
}

func (m ReplayModel) describeTurn(turn int) string {
	moves, err := m.replay.Moves(turn, m.catalog)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Turn %d: %s", turn+1, describeMoves(match.TurnResult{Moves: moves}, m.names))
}

// IsQuitting returns true if user requested to quit entirely.
func (m ReplayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to leave the viewer.
func (m ReplayModel) BackToMenu() bool {
	return m.back
}
