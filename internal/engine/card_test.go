package engine

import "testing"

func TestCardRotationGroupLaw(t *testing.T) {
	card := mustCard(t, 1, 3,
		"==*",
		".=.",
		".==.=",
	)

	for r := -4; r < 8; r++ {
		for y := -1; y <= CardSize; y++ {
			for x := -1; x <= CardSize; x++ {
				if card.Space(x, y, r) != card.Space(x, y, r+4) {
					t.Fatalf("Space(%d,%d,%d) != Space(%d,%d,%d)", x, y, r, x, y, r+4)
				}
			}
		}
	}
}

func TestCardRotationPreservesCells(t *testing.T) {
	card := mustCard(t, 1, 3,
		"==*",
		".=.",
		".==.=",
	)

	for r := range 4 {
		cells := card.Cells(r)
		if len(cells) != card.Size() {
			t.Errorf("rotation %d: %d cells, want %d", r, len(cells), card.Size())
		}
		specials := 0
		for _, c := range cells {
			if c.Kind == CardSpecial {
				specials++
			}
		}
		if specials != 1 {
			t.Errorf("rotation %d: %d special cells, want 1", r, specials)
		}
	}
}

func TestCardRotationDirection(t *testing.T) {
	// A single cell in the top-left corner travels clockwise around the pattern.
	card := mustCard(t, 1, 1, "=")

	tests := []struct {
		rotation int
		want     Coord
	}{
		{0, C(0, 0)},
		{1, C(7, 0)},
		{2, C(7, 7)},
		{3, C(0, 7)},
		{-1, C(0, 7)},
	}

	for _, tc := range tests {
		cells := card.Cells(tc.rotation)
		if len(cells) != 1 || cells[0].Offset != tc.want {
			t.Errorf("rotation %d: cells %v, want single cell at %v", tc.rotation, cells, tc.want)
		}
	}
}

func TestCardSize(t *testing.T) {
	card := mustCard(t, 7, 2,
		"=*=",
		"...",
		"==",
	)
	if card.Size() != 5 {
		t.Errorf("Size() = %d, want 5", card.Size())
	}
}

func TestNewCardRejectsInvalidPatterns(t *testing.T) {
	var grid [CardSize][CardSize]CardSpace
	if _, err := NewCard(1, "empty", RarityCommon, 1, grid); err == nil {
		t.Error("empty pattern should be rejected")
	}

	grid[2][3] = CardSpace(7)
	if _, err := NewCard(2, "bad", RarityCommon, 1, grid); err == nil {
		t.Error("pattern with an unknown cell should be rejected")
	}

	if _, err := ParsePattern([]string{"==#"}); err == nil {
		t.Error("ParsePattern should reject walls in a card")
	}
	if _, err := ParsePattern([]string{"========="}); err == nil {
		t.Error("ParsePattern should reject rows wider than 8")
	}
}

func TestCardClampPosition(t *testing.T) {
	corner := mustCard(t, 1, 1, "=")
	offset := mustCard(t, 2, 1, "..=", "..=")

	tests := []struct {
		name         string
		card         *Card
		x, y         int
		rotation     int
		wantX, wantY int
	}{
		{"inside unchanged", corner, 3, 3, 0, 3, 3},
		{"clamp left and bottom", corner, -3, 12, 0, 0, 9},
		{"clamp right", corner, 15, 2, 0, 9, 2},
		{"offset ink may sit off-board origin", offset, -5, 0, 0, -2, 0},
		{"offset ink bottom edge", offset, 0, 9, 0, 0, 8},
		{"rotated corner", corner, 5, 5, 2, 2, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := tc.card.ClampPosition(tc.x, tc.y, 10, 10, tc.rotation)
			if x != tc.wantX || y != tc.wantY {
				t.Errorf("ClampPosition(%d,%d) = (%d,%d), want (%d,%d)", tc.x, tc.y, x, y, tc.wantX, tc.wantY)
			}
			for _, at := range footprint(PlayMove(tc.card, x, y, tc.rotation, false)) {
				if at.X < 0 || at.X >= 10 || at.Y < 0 || at.Y >= 10 {
					t.Errorf("cell %v off the board after clamping", at)
				}
			}
		})
	}
}

func TestCardRotationPivotReturnsHome(t *testing.T) {
	cards := map[string]*Card{
		"2x3 mixed parity": mustCard(t, 1, 1, "==", "==", "=="),
		"2x2 even":         mustCard(t, 2, 1, "==", "=="),
		"3x3 odd":          mustCard(t, 3, 1, "===", "=*=", "==="),
		"1x4 line":         mustCard(t, 4, 1, "===="),
	}

	for name, card := range cards {
		t.Run(name, func(t *testing.T) {
			x, y, r := 4, 4, 0
			start := card.InkBounds(0).Offset(x, y)
			sx, sy := start.Center2()

			for range 4 {
				x, y = card.RotationPivot(x, y, r, r+1)
				r = (r + 1) % 4

				cx, cy := card.InkBounds(r).Offset(x, y).Center2()
				if d := cx - sx; d < -1 || d > 1 {
					t.Errorf("rotation %d: centre x drifted by %d half cells", r, d)
				}
				if d := cy - sy; d < -1 || d > 1 {
					t.Errorf("rotation %d: centre y drifted by %d half cells", r, d)
				}
			}

			if x != 4 || y != 4 {
				t.Errorf("after four turns origin = (%d,%d), want (4,4)", x, y)
			}
		})
	}
}

func TestHalve(t *testing.T) {
	tests := []struct {
		v        int
		up       bool
		expected int
	}{
		{4, false, 2},
		{4, true, 2},
		{3, false, 1},
		{3, true, 2},
		{-3, false, -2},
		{-3, true, -1},
		{-4, true, -2},
	}
	for _, tc := range tests {
		if got := halve(tc.v, tc.up); got != tc.expected {
			t.Errorf("halve(%d, %v) = %d, want %d", tc.v, tc.up, got, tc.expected)
		}
	}
}

func TestCardPatternRows(t *testing.T) {
	card := mustCard(t, 1, 3,
		"........",
		"..=*",
		"..=",
	)

	tests := []struct {
		rotation int
		expected []string
	}{
		{0, []string{"=*", "=."}},
		{1, []string{"==", ".*"}},
		{2, []string{".=", "*="}},
		{3, []string{"*.", "=="}},
	}
	for _, tc := range tests {
		got := card.PatternRows(tc.rotation)
		if len(got) != len(tc.expected) {
			t.Fatalf("rotation %d: rows = %q, want %q", tc.rotation, got, tc.expected)
		}
		for i := range got {
			if got[i] != tc.expected[i] {
				t.Errorf("rotation %d: rows = %q, want %q", tc.rotation, got, tc.expected)
				break
			}
		}
	}
}
