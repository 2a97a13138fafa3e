package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/inkgrid/internal/core"
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
)

// hudState is everything drawn around the board during a match.
type hudState struct {
	title     string
	view      match.View
	names     []string
	sp        []int      // special points per seat; nil shows only our own
	submitted []bool     // seats that have committed this turn; nil hides
	aim       *placement // nil when no move is being chosen
	status    string
	statusErr bool
	deadline  string
}

// renderGame lays out the board on the left and the HUD on the right.
func renderGame(t Theme, h hudState) string {
	var g *ghost
	if h.aim != nil {
		g = h.aim.ghost(h.view)
	}
	board := RenderScreen(boardScreen(h.view.Board, g), t)

	var side strings.Builder
	side.WriteString(t.HUDTitle.Render(h.title))
	side.WriteString("\n")
	turn := min(h.view.Turn, h.view.TurnLimit)
	side.WriteString(t.HUDLabel.Render("Turn ") + t.HUDValue.Render(fmt.Sprintf("%d/%d", turn, h.view.TurnLimit)))
	if h.deadline != "" {
		side.WriteString(t.HUDLabel.Render("  ⏱ ") + t.HUDValue.Render(h.deadline))
	}
	side.WriteString("\n\n")

	scores := engine.Scores(h.view.Board, h.view.Players)
	for p := range h.view.Players {
		side.WriteString(seatLine(t, h, p, scores[p]))
		side.WriteString("\n")
	}

	if h.aim != nil && len(h.view.Hand) > 0 {
		side.WriteString("\n")
		side.WriteString(handList(t, h.view, h.aim))
		card := h.aim.card(h.view.Hand)
		side.WriteString("\n")
		side.WriteString(RenderScreen(cardScreen(card, h.aim.rotation, h.view.Player), t))
		side.WriteString("\n")
		mode := t.HUDLabel.Render("special attack: ")
		if h.aim.special {
			mode += t.StatusOK.Render("ON")
		} else {
			mode += t.HUDValue.Render("off")
		}
		side.WriteString(mode)
		side.WriteString("\n")
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, board, "  ", side.String())
	if h.status != "" {
		style := t.StatusOK
		if h.statusErr {
			style = t.StatusError
		}
		out += "\n" + style.Render(h.status)
	}
	return out
}

func seatLine(t Theme, h hudState, p, score int) string {
	name := nameOf(h.names, p)
	swatch := t.Palette[core.PlayerColor(p)].Render("██")
	line := fmt.Sprintf("%s %-12s %3d", swatch, truncate(name, 12), score)

	sp := -1
	switch {
	case h.sp != nil && p < len(h.sp):
		sp = h.sp[p]
	case p == h.view.Player:
		sp = h.view.SpecialPoints
	}
	if sp >= 0 {
		line += t.HUDLabel.Render(fmt.Sprintf("  SP %d", sp))
	}
	if h.submitted != nil && p < len(h.submitted) && h.submitted[p] {
		line += t.StatusOK.Render(" ✓")
	}
	if p == h.view.Player {
		line += t.HUDLabel.Render(" (you)")
	}
	return line
}

func handList(t Theme, v match.View, aim *placement) string {
	var b strings.Builder
	for i, c := range v.Hand {
		cursor := "  "
		style := t.MenuItemNormal
		if i == aim.slot {
			cursor = "> "
			style = t.MenuItemActive
		}
		line := fmt.Sprintf("%s%d. %-16s %2d", cursor, i+1, truncate(c.Name, 16), c.Size())
		b.WriteString(style.Render(line))
		b.WriteString(t.HUDLabel.Render(fmt.Sprintf("  ◇%d", c.SpecialCost)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}

// resultText summarises a finished match.
func resultText(names []string, res match.Result) string {
	var b strings.Builder
	if res.Winner < 0 {
		b.WriteString("Draw!\n\n")
	} else {
		fmt.Fprintf(&b, "%s wins!\n\n", nameOf(names, res.Winner))
	}
	for p, s := range res.Scores {
		fmt.Fprintf(&b, "%-12s %3d\n", truncate(nameOf(names, p), 12), s)
	}
	return b.String()
}

func nameOf(names []string, p int) string {
	if p >= 0 && p < len(names) {
		return names[p]
	}
	return fmt.Sprintf("P%d", p+1)
}
