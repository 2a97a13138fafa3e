package tui

import (
	"github.com/vovakirdan/inkgrid/internal/core"
	"github.com/vovakirdan/inkgrid/internal/engine"
)

// Every board space is drawn two characters wide so the grid looks square.
const cellWidth = 2

// ghost is a card preview drawn over the board at the cursor.
type ghost struct {
	move   engine.Move
	player int
	legal  bool
}

// spaceCell returns the glyph and colour of a board space.
func spaceCell(s engine.Space) (rune, core.Color) {
	switch {
	case s == engine.Empty:
		return '·', core.ColorDim
	case s == engine.Wall:
		return '█', core.ColorGray
	case s == engine.OutOfBounds:
		return ' ', core.ColorDefault
	case s.IsActive():
		return '◆', core.PlayerSpecialColor(s.Player())
	case s.IsSpecial():
		return '◇', core.PlayerSpecialColor(s.Player())
	default:
		return '█', core.PlayerColor(s.Player())
	}
}

// ghostCell returns the glyph and colour of one previewed card cell.
func ghostCell(cs engine.CardSpace, g *ghost) (rune, core.Color) {
	c := core.PlayerColor(g.player)
	if !g.legal {
		c = core.ColorRed
	}
	if cs == engine.CardSpecial {
		return '▓', c
	}
	return '░', c
}

// drawBoard draws b framed by a box with its top-left corner at (ox, oy).
// The frame takes one row and one column on each side.
func drawBoard(s *core.Screen, ox, oy int, b *engine.Board, g *ghost) {
	s.DrawBox(core.NewRect(ox, oy, b.W*cellWidth+2, b.H+2), core.ColorGray)
	for y := range b.H {
		for x := range b.W {
			r, c := spaceCell(b.Get(engine.C(x, y)))
			setWide(s, ox+1+x*cellWidth, oy+1+y, r, c)
		}
	}
	if g == nil || g.move.Pass || g.move.Card == nil {
		return
	}
	for _, cell := range g.move.Card.Cells(g.move.Rotation) {
		at := engine.C(g.move.X+cell.Offset.X, g.move.Y+cell.Offset.Y)
		if !b.InBounds(at) {
			continue
		}
		r, c := ghostCell(cell.Kind, g)
		setWide(s, ox+1+at.X*cellWidth, oy+1+at.Y, r, c)
	}
}

func setWide(s *core.Screen, x, y int, r rune, c core.Color) {
	for i := range cellWidth {
		s.Set(x+i, y, r, c)
	}
}

// boardScreen returns a screen holding just the framed board.
func boardScreen(b *engine.Board, g *ghost) *core.Screen {
	s := core.NewScreen(b.W*cellWidth+2, b.H+2)
	drawBoard(s, 0, 0, b, g)
	return s
}

// cardScreen draws a card pattern at the given rotation, trimmed to its
// ink bounds, in the colours of player.
func cardScreen(card *engine.Card, rotation, player int) *core.Screen {
	bounds := card.InkBounds(rotation)
	s := core.NewScreen(max(bounds.W, 1)*cellWidth, max(bounds.H, 1))
	for _, cell := range card.Cells(rotation) {
		x, y := cell.Offset.X-bounds.X, cell.Offset.Y-bounds.Y
		if cell.Kind == engine.CardSpecial {
			setWide(s, x*cellWidth, y, '◇', core.PlayerSpecialColor(player))
			continue
		}
		setWide(s, x*cellWidth, y, '█', core.PlayerColor(player))
	}
	return s
}
