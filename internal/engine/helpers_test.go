package engine

import "testing"

// mustCard builds a card from pattern rows ('.' empty, '=' ink, '*' special).
func mustCard(t *testing.T, number, cost int, rows ...string) *Card {
	t.Helper()
	grid, err := ParsePattern(rows)
	if err != nil {
		t.Fatalf("ParsePattern(%v): %v", rows, err)
	}
	c, err := NewCard(number, "test", RarityCommon, cost, grid)
	if err != nil {
		t.Fatalf("NewCard(%d): %v", number, err)
	}
	return c
}

// mustBoard builds a board from ASCII rows (see Board.String).
func mustBoard(t *testing.T, rows ...string) *Board {
	t.Helper()
	b, err := ParseBoard(rows)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

// emptyBoard returns a w x h board of empty spaces.
func emptyBoard(t *testing.T, w, h int) *Board {
	t.Helper()
	b, err := NewBoard(w, h)
	if err != nil {
		t.Fatalf("NewBoard(%d, %d): %v", w, h, err)
	}
	return b
}

func play(card *Card, x, y, rotation int, special bool) *Move {
	m := PlayMove(card, x, y, rotation, special)
	return &m
}

func pass() *Move {
	m := PassMove()
	return &m
}

// footprint returns the board coordinates a move covers, including cells
// that fall outside the board.
func footprint(m Move) []Coord {
	if m.Pass || m.Card == nil {
		return nil
	}
	cells := m.Card.Cells(m.Rotation)
	out := make([]Coord, len(cells))
	for i, cell := range cells {
		out[i] = C(m.X+cell.Offset.X, m.Y+cell.Offset.Y)
	}
	return out
}
