package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/inkgrid/internal/storage"
)

// History layout constants
const (
	minWidthForSidebar = 90 // Minimum width to show the stats sidebar
	sidebarWidth       = 24 // Width of the stats sidebar
	maxMatches         = 100
)

// HistoryModel lists recorded matches and the user's statistics.
type HistoryModel struct {
	store       *storage.Store
	username    string
	matches     []storage.MatchRecord
	stats       *storage.PlayerStats
	loadErr     error
	table       table.Model
	help        help.Model
	keys        HistoryKeyMap
	width       int
	height      int
	showSidebar bool
	quitting    bool
	goingBack   bool
	selected    string // match id chosen for replay
}

// NewHistoryModel creates a new history model.
func NewHistoryModel(store *storage.Store, username string, width, height int) HistoryModel {
	m := HistoryModel{
		store:       store,
		username:    username,
		keys:        DefaultHistoryKeyMap(),
		help:        help.New(),
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.load()
	return m
}

// createTable creates a new table with appropriate columns.
func (m *HistoryModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Stage", Width: 5},
		{Title: "Players", Width: 24},
		{Title: "Score", Width: 14},
		{Title: "Winner", Width: 10},
		{Title: "End", Width: 10},
	}

	// Give spare width to the players column
	tableWidth := m.width - 4
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}
	used := 0
	for _, c := range columns {
		used += c.Width + 2
	}
	if spare := tableWidth - used; spare > 0 {
		columns[2].Width += min(spare, 16)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load reads the matches and stats from the store.
func (m *HistoryModel) load() {
	m.matches, m.stats, m.loadErr = nil, nil, nil
	if m.store != nil {
		if m.username != "" {
			m.matches, m.loadErr = m.store.PlayerMatches(m.username, maxMatches)
			if m.loadErr == nil {
				m.stats, m.loadErr = m.store.PlayerStats(m.username)
			}
		} else {
			m.matches, m.loadErr = m.store.RecentMatches(maxMatches)
		}
	}
	m.updateTableRows()
}

// updateTableRows updates the table with the loaded matches.
func (m *HistoryModel) updateTableRows() {
	rows := make([]table.Row, len(m.matches))
	for i, rec := range m.matches {
		scores := make([]string, len(rec.Scores))
		for j, s := range rec.Scores {
			scores[j] = fmt.Sprint(s)
		}
		winner := rec.WinnerName()
		if winner == "" {
			winner = "draw"
		}
		rows[i] = table.Row{
			rec.CreatedAt.Format("Jan 02 15:04"),
			fmt.Sprint(rec.Stage),
			strings.Join(rec.Players, ", "),
			strings.Join(scores, "-"),
			winner,
			rec.EndReason,
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// Init initializes the history model.
func (m HistoryModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the history screen.
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, nil

		case key.Matches(msg, m.keys.Open):
			if i := m.table.Cursor(); i >= 0 && i < len(m.matches) {
				m.selected = m.matches[i].MatchID
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	// Pass other messages to table
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the history screen.
func (m HistoryModel) View() string {
	if m.quitting {
		return ""
	}
	t := CurrentTheme()

	var b strings.Builder
	title := "MATCH HISTORY"
	if m.username != "" {
		title = fmt.Sprintf("MATCH HISTORY - %s", m.username)
	}
	b.WriteString(t.MenuTitle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	content := tableStyle.Render(m.renderTableContent())

	if m.showSidebar && m.stats != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), "  ", content)
	}
	b.WriteString(content)

	b.WriteString("\n")
	b.WriteString(t.HUDControls.Render(m.help.View(m.keys)))
	return b.String()
}

// renderSidebar renders the user's aggregated statistics.
func (m HistoryModel) renderSidebar() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	s := m.stats
	var sb strings.Builder
	sb.WriteString("Stats\n")
	sb.WriteString(strings.Repeat("-", sidebarWidth-4))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Played  %d\n", s.Played)
	fmt.Fprintf(&sb, "Won     %d\n", s.Won)
	fmt.Fprintf(&sb, "Best    %d\n", s.BestScore)
	fmt.Fprintf(&sb, "Average %.1f\n", s.AvgScore)
	if !s.LastPlayed.IsZero() {
		fmt.Fprintf(&sb, "Last    %s\n", s.LastPlayed.Format("Jan 02"))
	}
	return style.Render(sb.String())
}

// renderTableContent renders the table or empty message.
func (m HistoryModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)
	switch {
	case m.store == nil:
		return emptyStyle.Render("History is not available without a database.")
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load matches:\n" + m.loadErr.Error())
	case len(m.matches) == 0:
		return emptyStyle.Render("No matches recorded yet.\nFinish a match to see it here!")
	}
	return m.table.View()
}

// Selected returns the match id chosen for replay, or "".
func (m HistoryModel) Selected() string {
	return m.selected
}

// IsGoingBack returns true if user wants to go back to menu.
func (m HistoryModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m HistoryModel) IsQuitting() bool {
	return m.quitting
}
