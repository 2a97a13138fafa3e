package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
)

// OnlineState represents the current state of the online flow.
type OnlineState int

const (
	OnlineStateChooseMode    OnlineState = iota // Choose Host or Join
	OnlineStateHostWaiting                      // Hosting, waiting for seats to fill
	OnlineStateJoinEnterCode                    // Entering join code
	OnlineStateJoinWaiting                      // Joined or joining, waiting for start
	OnlineStateInMatch                          // In active match
	OnlineStateMatchEnded                       // Match has ended
)

const joinCodeLen = 6

// OnlineModel handles hosting, joining and playing a room on the
// coordinator. Events arrive through Update as multiplayer.SessionEvent
// messages; the session model owns the event pump.
type OnlineModel struct {
	state       OnlineState
	width       int
	height      int
	keys        PlayKeyMap
	help        help.Model
	sessionID   multiplayer.SessionID
	username    string
	setup       Setup
	coordinator *multiplayer.Coordinator
	now         func() time.Time

	// Lobby state
	code      string
	seats     map[int]string
	codeInput string
	err       string

	// Match state
	matchID   multiplayer.MatchID
	seat      int
	names     []string
	view      match.View
	deadline  time.Time
	sp        []int
	submitted []bool
	aim       placement
	status    string
	statusErr bool

	// Result state
	result   match.Result
	reason   multiplayer.MatchEndReason
	back     bool
	quitting bool
}

// NewOnlineModel creates a new online model. The session must already be
// registered with the coordinator.
func NewOnlineModel(
	sessionID multiplayer.SessionID,
	username string,
	setup Setup,
	coordinator *multiplayer.Coordinator,
	width, height int,
) OnlineModel {
	return OnlineModel{
		state:       OnlineStateChooseMode,
		width:       width,
		height:      height,
		keys:        DefaultPlayKeyMap(),
		help:        help.New(),
		sessionID:   sessionID,
		username:    username,
		setup:       setup,
		coordinator: coordinator,
		now:         time.Now,
		seats:       make(map[int]string),
	}
}

// Init initializes the online model.
func (m OnlineModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case clockMsg:
		if m.state == OnlineStateInMatch {
			return m, clockTick(time.Second)
		}
		return m, nil
	case multiplayer.SessionEvent:
		return m.handleEvent(msg)
	}
	return m, nil
}

func (m OnlineModel) handleEvent(evt multiplayer.SessionEvent) (tea.Model, tea.Cmd) {
	switch evt := evt.(type) {
	case multiplayer.RoomCreatedEvent:
		m.code = evt.Code
		m.seats = map[int]string{evt.Seat: m.username}
		m.state = OnlineStateHostWaiting

	case multiplayer.SeatJoinedEvent:
		m.code = evt.Code
		m.seats[evt.Seat] = evt.Name

	case multiplayer.SeatLeftEvent:
		delete(m.seats, evt.Seat)

	case multiplayer.ErrorEvent:
		m.err = evt.Message
		switch m.state {
		case OnlineStateJoinWaiting:
			m.state = OnlineStateJoinEnterCode
		case OnlineStateInMatch:
			m.status, m.statusErr = evt.Message, true
		}

	case multiplayer.MatchStartedEvent:
		m.matchID = evt.MatchID
		m.seat = evt.Seat
		m.names = evt.Players
		m.sp = make([]int, len(evt.Players))
		m.state = OnlineStateInMatch
		return m, clockTick(time.Second)

	case multiplayer.TurnStartedEvent:
		first := m.view.Board == nil
		m.view = evt.View
		m.deadline = evt.Deadline
		m.submitted = make([]bool, evt.View.Players)
		m.aim.special = false
		if first {
			m.aim.center(m.view.Board, m.view.Hand)
		} else {
			m.aim.clamp(m.view.Board, m.view.Hand)
		}

	case multiplayer.PlayerSubmittedEvent:
		if evt.Seat >= 0 && evt.Seat < len(m.submitted) {
			m.submitted[evt.Seat] = true
		}
		if evt.Seat == m.seat && evt.Timeout {
			m.status, m.statusErr = "Time is up: a card was discarded", true
		}

	case multiplayer.TurnResolvedEvent:
		m.sp = evt.Result.SpecialPoints
		m.status, m.statusErr = fmt.Sprintf("Turn %d: %s", evt.Result.Turn, describeMoves(evt.Result, m.names)), false
		if m.view.Board != nil {
			m.view.Board = m.view.Board.Clone()
			engine.RedoTurn(m.view.Board, evt.Result.Results)
		}

	case multiplayer.MatchEndedEvent:
		m.result = evt.Result
		m.reason = evt.Reason
		m.state = OnlineStateMatchEnded
	}
	return m, nil
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state {
	case OnlineStateChooseMode:
		return m.handleChooseModeKey(msg)
	case OnlineStateHostWaiting, OnlineStateJoinWaiting:
		if msg.String() == "esc" {
			m.leave()
			m.state = OnlineStateChooseMode
			m.err = ""
		}
	case OnlineStateJoinEnterCode:
		return m.handleJoinCodeKey(msg)
	case OnlineStateInMatch:
		return m.handleMatchKey(msg)
	case OnlineStateMatchEnded:
		if msg.String() == "enter" || msg.String() == "esc" {
			m.back = true
		}
	}
	return m, nil
}

func (m *OnlineModel) leave() {
	switch m.state {
	case OnlineStateHostWaiting, OnlineStateJoinWaiting, OnlineStateInMatch:
		m.coordinator.Send(multiplayer.LeaveRoomMsg{SessionID: m.sessionID})
	}
}

func (m OnlineModel) handleChooseModeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "H", "1":
		m.err = ""
		m.coordinator.Send(multiplayer.CreateRoomMsg{
			SessionID: m.sessionID,
			Request: multiplayer.RoomRequest{
				Name:    m.username,
				Stage:   m.setup.Stage,
				Players: m.setup.Opponents + 1,
			},
		})
	case "j", "J", "2":
		m.state = OnlineStateJoinEnterCode
		m.codeInput = ""
		m.err = ""
	case "esc", "b":
		m.back = true
	}
	return m, nil
}

func (m OnlineModel) handleJoinCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()

	switch k {
	case "esc":
		m.state = OnlineStateChooseMode
	case "enter":
		if len(m.codeInput) == joinCodeLen {
			m.state = OnlineStateJoinWaiting
			m.err = ""
			m.seats = make(map[int]string)
			m.coordinator.Send(multiplayer.JoinRoomMsg{
				SessionID: m.sessionID,
				Name:      m.username,
				Code:      m.codeInput,
			})
		}
	case "backspace":
		if m.codeInput != "" {
			m.codeInput = m.codeInput[:len(m.codeInput)-1]
		}
	default:
		// Accept alphanumeric input for code
		if len(k) == 1 && len(m.codeInput) < joinCodeLen {
			c := strings.ToUpper(k)
			if (c[0] >= 'A' && c[0] <= 'Z') || (c[0] >= '0' && c[0] <= '9') {
				m.codeInput += c
			}
		}
	}
	return m, nil
}

func (m OnlineModel) handleMatchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.leave()
		m.back = true
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.view.Board == nil || m.mineSubmitted() {
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
			m.status, m.statusErr = err.Error(), true
			return m, nil
		}
		m.submit(m.aim.play(hand))
	case key.Matches(msg, m.keys.Pass):
		m.submit(m.aim.pass(hand))
	}
	return m, nil
}

func (m *OnlineModel) submit(sub match.Submission) {
	m.coordinator.Send(multiplayer.SubmitMsg{SessionID: m.sessionID, Submission: sub})
	m.status = "Move sent, waiting for the others..."
}

func (m OnlineModel) mineSubmitted() bool {
	return m.seat < len(m.submitted) && m.submitted[m.seat]
}

// View renders the current state.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.state {
	case OnlineStateHostWaiting, OnlineStateJoinWaiting:
		return m.viewWaiting()
	case OnlineStateJoinEnterCode:
		return m.viewJoinEnterCode()
	case OnlineStateInMatch:
		return m.viewMatch()
	case OnlineStateMatchEnded:
		return m.viewEnded()
	}
	return m.viewChooseMode()
}

func (m OnlineModel) viewChooseMode() string {
	t := CurrentTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(t.MenuTitle.Render(centerText("ONLINE", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText(fmt.Sprintf("[H] Host a room for %d players on stage %d", m.setup.Opponents+1, m.setup.Stage), m.width))
	b.WriteString("\n")
	b.WriteString(centerText("[J] Join a room", m.width))
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(t.StatusError.Render(centerText("Error: "+m.err, m.width)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(t.HUDControls.Render(centerText("Esc: Back  |  Ctrl+C: Quit", m.width)))
	return b.String()
}

func (m OnlineModel) viewWaiting() string {
	t := CurrentTheme()
	var b strings.Builder

	b.WriteString("\n")
	if m.state == OnlineStateHostWaiting {
		b.WriteString(t.MenuTitle.Render(centerText("HOSTING", m.width)))
		b.WriteString("\n\n")
		b.WriteString(centerText("Share this code with the other players:", m.width))
	} else {
		b.WriteString(t.MenuTitle.Render(centerText("JOINING", m.width)))
		b.WriteString("\n\n")
		b.WriteString(centerText("Room code:", m.width))
	}
	b.WriteString("\n\n")
	code := m.code
	if code == "" {
		code = m.codeInput
	}
	b.WriteString(t.OverlayTitle.Render(centerText(fmt.Sprintf("[ %s ]", code), m.width)))
	b.WriteString("\n\n")
	for seat := range engine.MaxPlayers {
		if name, ok := m.seats[seat]; ok {
			b.WriteString(centerText(fmt.Sprintf("seat %d: %s", seat+1, name), m.width))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(centerText("Waiting for players...", m.width))
	b.WriteString("\n\n")
	b.WriteString(t.HUDControls.Render(centerText("Esc: Leave  |  Ctrl+C: Quit", m.width)))
	return b.String()
}

func (m OnlineModel) viewJoinEnterCode() string {
	t := CurrentTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(t.MenuTitle.Render(centerText("JOIN ROOM", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Enter the room code:", m.width))
	b.WriteString("\n\n")

	// Display code input with cursor
	codeDisplay := m.codeInput
	if len(codeDisplay) < joinCodeLen {
		codeDisplay += "_" + strings.Repeat(" ", joinCodeLen-1-len(m.codeInput))
	}
	b.WriteString(centerText(fmt.Sprintf("[ %s ]", codeDisplay), m.width))
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(t.StatusError.Render(centerText("Error: "+m.err, m.width)))
	}

	b.WriteString("\n\n")
	b.WriteString(t.HUDControls.Render(centerText("Enter: Connect  |  Esc: Back", m.width)))
	return b.String()
}

func (m OnlineModel) viewMatch() string {
	t := CurrentTheme()
	if m.view.Board == nil {
		return centerText("Match starting...", m.width)
	}
	h := hudState{
		title:     fmt.Sprintf("Room %s", m.code),
		view:      m.view,
		names:     m.names,
		sp:        m.sp,
		submitted: m.submitted,
		status:    m.status,
		statusErr: m.statusErr,
	}
	if !m.mineSubmitted() {
		h.aim = &m.aim
	}
	if !m.deadline.IsZero() {
		left := max(m.deadline.Sub(m.now()), 0).Round(time.Second)
		h.deadline = left.String()
	}
	return renderGame(t, h) + "\n" + t.HUDControls.Render(m.help.View(m.keys))
}

func (m OnlineModel) viewEnded() string {
	t := CurrentTheme()
	title := "Match over"
	if m.reason != multiplayer.MatchEndReasonCompleted {
		title = fmt.Sprintf("Match over (%s)", m.reason)
	}
	box := t.OverlayBorder.Render(
		t.OverlayTitle.Render(title) + "\n\n" +
			t.OverlayText.Render(resultText(m.names, m.result)) + "\n" +
			t.HUDControls.Render("enter: menu"))
	if m.view.Board == nil {
		return box
	}
	return RenderScreen(boardScreen(m.view.Board, nil), t) + "\n" + box
}

// State returns the current online state.
func (m OnlineModel) State() OnlineState {
	return m.state
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.back
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}
