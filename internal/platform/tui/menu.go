package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/inkgrid/internal/config"
	"github.com/vovakirdan/inkgrid/internal/stages"
)

// MenuChoice is what the user picked in the main menu.
type MenuChoice int

const (
	ChoiceNone MenuChoice = iota
	ChoicePlay
	ChoiceOnline
	ChoiceHistory
	ChoiceQuit
)

type menuRowKind int

const (
	rowAction menuRowKind = iota
	rowStage
	rowOpponents
	rowDifficulty
)

// menuRow is one line of the menu: an action or an adjustable setting.
type menuRow struct {
	kind   menuRowKind
	choice MenuChoice
	title  string
}

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	rows     []menuRow
	cursor   int
	stages   []*stages.Stage
	stageIdx int
	setup    Setup
	keys     MenuKeyMap
	help     help.Model
	width    int
	height   int
	choice   MenuChoice
}

// NewMenuModel creates a new menu model. Online play and history are
// listed only when available.
func NewMenuModel(stageList []*stages.Stage, setup Setup, online, history bool, width, height int) MenuModel {
	rows := []menuRow{{kind: rowAction, choice: ChoicePlay, title: "Play vs CPU"}}
	if online {
		rows = append(rows, menuRow{kind: rowAction, choice: ChoiceOnline, title: "Play online"})
	}
	if history {
		rows = append(rows, menuRow{kind: rowAction, choice: ChoiceHistory, title: "Match history"})
	}
	rows = append(rows,
		menuRow{kind: rowStage, title: "Stage"},
		menuRow{kind: rowOpponents, title: "Opponents"},
		menuRow{kind: rowDifficulty, title: "Difficulty"},
		menuRow{kind: rowAction, choice: ChoiceQuit, title: "Quit"},
	)

	m := MenuModel{
		rows:   rows,
		stages: stageList,
		setup:  setup,
		keys:   DefaultMenuKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	for i, s := range stageList {
		if s.Number == setup.Stage {
			m.stageIdx = i
		}
	}
	m.syncSetup()
	return m
}

// syncSetup keeps the setup within what the selected stage allows.
func (m *MenuModel) syncSetup() {
	if len(m.stages) == 0 {
		return
	}
	stage := m.stages[m.stageIdx]
	m.setup.Stage = stage.Number
	m.setup.Opponents = min(max(m.setup.Opponents, 1), stage.MaxPlayers()-1)
	if !slices.Contains(config.Presets, m.setup.Difficulty) {
		m.setup.Difficulty = config.DifficultyNormal
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

// handleKey processes keyboard input for menu navigation.
func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.choice = ChoiceQuit
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Left):
		m.adjust(-1)
	case key.Matches(msg, m.keys.Right):
		m.adjust(1)
	case key.Matches(msg, m.keys.Select):
		row := m.rows[m.cursor]
		if row.kind != rowAction {
			m.adjust(1)
			return m, nil
		}
		m.choice = row.choice
		if row.choice == ChoiceQuit {
			return m, tea.Quit
		}
	}
	return m, nil
}

// adjust changes the setting under the cursor, wrapping around.
func (m *MenuModel) adjust(delta int) {
	switch m.rows[m.cursor].kind {
	case rowStage:
		if len(m.stages) > 0 {
			m.stageIdx = (m.stageIdx + delta + len(m.stages)) % len(m.stages)
		}
	case rowOpponents:
		if len(m.stages) > 0 {
			most := m.stages[m.stageIdx].MaxPlayers() - 1
			m.setup.Opponents = (m.setup.Opponents-1+delta+most)%most + 1
		}
	case rowDifficulty:
		i := slices.Index(config.Presets, m.setup.Difficulty)
		n := len(config.Presets)
		m.setup.Difficulty = config.Presets[(i+delta+n)%n]
	}
	m.syncSetup()
}

// View renders the menu.
func (m MenuModel) View() string {
	t := CurrentTheme()
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(t.MenuTitle.Render(centerText("  I N K G R I D  ", m.width)))
	b.WriteString("\n\n")
	b.WriteString(t.MenuDescription.Render(centerText("Claim the board, one card at a time", m.width)))
	b.WriteString("\n\n")

	for i, row := range m.rows {
		cursor := "  "
		style := t.MenuItemNormal
		if i == m.cursor {
			cursor = "> "
			style = t.MenuItemActive
		}
		line := cursor + row.title
		if v := m.rowValue(row); v != "" {
			line = fmt.Sprintf("%s%-11s < %s >", cursor, row.title, v)
		}
		b.WriteString(style.Render(centerText(line, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.HUDControls.Render(centerText(m.help.View(m.keys), m.width)))
	b.WriteString("\n")
	return b.String()
}

func (m MenuModel) rowValue(row menuRow) string {
	switch row.kind {
	case rowStage:
		if len(m.stages) == 0 {
			return "none"
		}
		s := m.stages[m.stageIdx]
		return fmt.Sprintf("%d %s", s.Number, s.Name)
	case rowOpponents:
		return fmt.Sprint(m.setup.Opponents)
	case rowDifficulty:
		return string(m.setup.Difficulty)
	}
	return ""
}

// Choice returns what the user picked, or ChoiceNone.
func (m MenuModel) Choice() MenuChoice {
	return m.choice
}

// Setup returns the match settings chosen in the menu.
func (m MenuModel) Setup() Setup {
	return m.setup
}
