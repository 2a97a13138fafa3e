package tui

import (
	"testing"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/core"
	"github.com/vovakirdan/inkgrid/internal/engine"
)

func testCatalog(t *testing.T) *cards.Catalog {
	t.Helper()
	catalog, err := cards.Default()
	if err != nil {
		t.Fatalf("cards.Default() failed: %v", err)
	}
	return catalog
}

func testCard(t *testing.T, number int) *engine.Card {
	t.Helper()
	c, err := testCatalog(t).Card(number)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBoardScreenGlyphs(t *testing.T) {
	b, err := engine.ParseBoard([]string{
		"a.#A....",
		"1b. ....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	})
	if err != nil {
		t.Fatal(err)
	}
	s := boardScreen(b, nil)
	if s.Width() != 8*cellWidth+2 || s.Height() != 8+2 {
		t.Fatalf("screen is %dx%d", s.Width(), s.Height())
	}

	tests := []struct {
		name  string
		x, y  int
		glyph rune
		color core.Color
	}{
		{"ink", 0, 0, '█', core.PlayerColor(0)},
		{"empty", 1, 0, '·', core.ColorDim},
		{"wall", 2, 0, '█', core.ColorGray},
		{"inactive special", 3, 0, '◇', core.PlayerSpecialColor(0)},
		{"active special", 0, 1, '◆', core.PlayerSpecialColor(0)},
		{"other player", 1, 1, '█', core.PlayerColor(1)},
		{"out of bounds", 3, 1, ' ', core.ColorDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := range cellWidth {
				cell := s.GetCell(1+tt.x*cellWidth+i, 1+tt.y)
				if cell.Rune != tt.glyph || cell.Color != tt.color {
					t.Errorf("cell %d = %q/%d, want %q/%d", i, cell.Rune, cell.Color, tt.glyph, tt.color)
				}
			}
		})
	}

	if s.Get(0, 0) != '┌' || s.Get(s.Width()-1, s.Height()-1) != '┘' {
		t.Error("board frame not drawn")
	}
}

func TestBoardScreenGhost(t *testing.T) {
	b, err := engine.NewBoard(8, 8)
	if err != nil {
		t.Fatal(err)
	}
	speck := testCard(t, 1)

	tests := []struct {
		name  string
		legal bool
		color core.Color
	}{
		{"legal", true, core.PlayerColor(1)},
		{"illegal", false, core.ColorRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &ghost{move: engine.PlayMove(speck, 1, 2, 0, false), player: 1, legal: tt.legal}
			s := boardScreen(b, g)

			special := s.GetCell(1+1*cellWidth, 1+2)
			if special.Rune != '▓' || special.Color != tt.color {
				t.Errorf("special cell = %q/%d", special.Rune, special.Color)
			}
			ink := s.GetCell(1+2*cellWidth, 1+2)
			if ink.Rune != '░' || ink.Color != tt.color {
				t.Errorf("ink cell = %q/%d", ink.Rune, ink.Color)
			}
			if s.Get(1+3*cellWidth, 1+2) != '·' {
				t.Error("ghost drawn past the card")
			}
		})
	}

	// A pass draws no preview.
	s := boardScreen(b, &ghost{move: engine.PassMove(), legal: true})
	if s.String() != boardScreen(b, nil).String() {
		t.Error("pass ghost changed the board")
	}
}

func TestCardScreen(t *testing.T) {
	hook := testCard(t, 4)
	s := cardScreen(hook, 0, 2)
	if s.Width() != 2*cellWidth || s.Height() != 3 {
		t.Fatalf("card screen is %dx%d", s.Width(), s.Height())
	}
	if cell := s.GetCell(0, 2); cell.Rune != '◇' || cell.Color != core.PlayerSpecialColor(2) {
		t.Errorf("special = %q/%d", cell.Rune, cell.Color)
	}
	if cell := s.GetCell(cellWidth, 2); cell.Rune != '█' || cell.Color != core.PlayerColor(2) {
		t.Errorf("ink = %q/%d", cell.Rune, cell.Color)
	}
	if s.Get(cellWidth, 0) != ' ' {
		t.Error("empty card cell drawn")
	}

	turned := cardScreen(hook, 1, 0)
	if turned.Width() != 3*cellWidth || turned.Height() != 2 {
		t.Errorf("rotated card screen is %dx%d", turned.Width(), turned.Height())
	}
}
