package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

// PlayModel is a local match: the user holds seat 0 and bots fill the
// rest. Bots choose after the user commits.
type PlayModel struct {
	match     *match.Match
	bots      []registry.Strategy // bots[i] plays seat i+1
	store     *storage.Store
	started   time.Time
	view      match.View
	aim       placement
	keys      PlayKeyMap
	help      help.Model
	status    string
	statusErr bool
	saved     bool
	width     int
	height    int
	quitting  bool
	back      bool
}

// NewPlayModel creates a play model for a match that has not resolved
// any turn yet.
func NewPlayModel(m *match.Match, bots []registry.Strategy, store *storage.Store, width, height int) PlayModel {
	pm := PlayModel{
		match:   m,
		bots:    bots,
		store:   store,
		started: time.Now(),
		keys:    DefaultPlayKeyMap(),
		help:    help.New(),
		width:   width,
		height:  height,
	}
	pm.view = m.View(0)
	pm.aim.center(pm.view.Board, pm.view.Hand)
	return pm
}

// Init initializes the play model.
func (m PlayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.back = true
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.match.Over() {
		if key.Matches(msg, m.keys.Undo) {
			m.undo()
		} else if key.Matches(msg, m.keys.Place) {
			m.back = true
		}
		return m, nil
	}

	b, hand := m.view.Board, m.view.Hand
	m.status, m.statusErr = "", false
	switch {
	case key.Matches(msg, m.keys.Up):
		m.aim.move(0, -1, b, hand)
	case key.Matches(msg, m.keys.Down):
		m.aim.move(0, 1, b, hand)
	case key.Matches(msg, m.keys.Left):
		m.aim.move(-1, 0, b, hand)
	case key.Matches(msg, m.keys.Right):
		m.aim.move(1, 0, b, hand)
	case key.Matches(msg, m.keys.Rotate):
		m.aim.rotate(1, b, hand)
	case key.Matches(msg, m.keys.RotateBack):
		m.aim.rotate(-1, b, hand)
	case key.Matches(msg, m.keys.NextCard):
		m.aim.selectSlot(m.aim.slot+1, b, hand)
	case key.Matches(msg, m.keys.PrevCard):
		m.aim.selectSlot(m.aim.slot-1, b, hand)
	case key.Matches(msg, m.keys.Slot):
		if n, err := strconv.Atoi(msg.String()); err == nil && n <= len(hand) {
			m.aim.selectSlot(n-1, b, hand)
		}
	case key.Matches(msg, m.keys.Special):
		m.aim.special = !m.aim.special
	case key.Matches(msg, m.keys.Place):
		if err := m.aim.check(m.view); err != nil {
			m.setError(err)
			return m, nil
		}
		m.playTurn(m.aim.play(hand))
	case key.Matches(msg, m.keys.Pass):
		m.playTurn(m.aim.pass(hand))
	case key.Matches(msg, m.keys.Undo):
		m.undo()
	}
	return m, nil
}

// playTurn submits the user's move, lets every bot choose and resolves.
func (m *PlayModel) playTurn(sub match.Submission) {
	if err := m.match.Submit(0, sub); err != nil {
		m.setError(err)
		return
	}
	for i, bot := range m.bots {
		seat := i + 1
		if err := m.match.Submit(seat, bot.Choose(m.match.View(seat))); err != nil {
			// A refused bot move counts as running out of time.
			_ = m.match.Timeout(seat)
		}
	}
	res, err := m.match.Resolve()
	if err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	m.status = fmt.Sprintf("Turn %d: %s", res.Turn, describeMoves(res, m.names()))
	if res.Over {
		m.saveResult()
	}
}

func (m *PlayModel) undo() {
	if err := m.match.UndoLastTurn(); err != nil {
		m.setError(err)
		return
	}
	m.refresh()
	m.status = fmt.Sprintf("Back to turn %d", m.view.Turn)
}

func (m *PlayModel) refresh() {
	m.view = m.match.View(0)
	m.aim.special = false
	m.aim.clamp(m.view.Board, m.view.Hand)
}

func (m *PlayModel) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m *PlayModel) names() []string {
	names := make([]string, m.match.Players())
	for p := range names {
		names[p] = m.match.PlayerName(p)
	}
	return names
}

func (m *PlayModel) specialPoints() []int {
	sp := make([]int, m.match.Players())
	for p := range sp {
		sp[p] = m.match.SpecialPoints(p)
	}
	return sp
}

// saveResult records the finished match once. Undoing the last turn and
// finishing again is not saved a second time.
func (m *PlayModel) saveResult() {
	if m.store == nil || m.saved {
		return
	}
	m.saved = true
	res := m.match.Result()
	rec := storage.MatchRecord{
		MatchID:      m.match.ID(),
		Stage:        m.match.Stage().Number,
		Players:      m.names(),
		Scores:       res.Scores,
		Winner:       res.Winner,
		EndReason:    "completed",
		Turns:        m.match.Turn(),
		DurationSecs: int(time.Since(m.started).Seconds()),
	}
	if rp, err := m.match.Replay(); err == nil {
		rec.Replay, _ = rp.Encode()
	}
	if _, err := m.store.SaveMatch(rec); err != nil {
		m.setError(fmt.Errorf("saving match: %w", err))
	}
}

// View renders the match.
func (m PlayModel) View() string {
	if m.quitting {
		return ""
	}
	t := CurrentTheme()
	h := hudState{
		title:     m.match.Stage().Name,
		view:      m.view,
		names:     m.names(),
		sp:        m.specialPoints(),
		status:    m.status,
		statusErr: m.statusErr,
	}
	if !m.match.Over() {
		h.aim = &m.aim
	}
	out := renderGame(t, h)

	if m.match.Over() {
		box := t.OverlayBorder.Render(
			t.OverlayTitle.Render("Match over") + "\n\n" +
				t.OverlayText.Render(resultText(m.names(), m.match.Result())) + "\n" +
				t.HUDControls.Render("enter: menu  u: undo last turn"))
		out = lipgloss.JoinVertical(lipgloss.Left, out, box)
	}
	return out + "\n" + t.HUDControls.Render(m.help.View(m.keys))
}

// IsQuitting returns true if user requested to quit entirely.
func (m PlayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m PlayModel) BackToMenu() bool {
	return m.back
}

// describeMoves summarises every seat's move of a resolved turn.
func describeMoves(res match.TurnResult, names []string) string {
	out := ""
	for p, mv := range res.Moves {
		if p > 0 {
			out += ", "
		}
		out += nameOf(names, p) + " "
		switch {
		case mv.Pass || mv.Card == nil:
			out += "passed"
		case mv.SpecialAttack:
			out += "special " + mv.Card.Name
		default:
			out += "played " + mv.Card.Name
		}
	}
	return out
}
