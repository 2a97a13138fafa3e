package engine

import "testing"

// legalityBoard is a 10x10 stage with player 0 at the top left and player 1
// at the bottom right.
//
//	row 0: ..........
//	row 1: .A........   player 0 inactive special at (1,1)
//	row 2: ..a.......   player 0 ink at (2,2)
//	row 3: ...#......   wall at (3,3)
//	row 4: ..........
//	row 5: .....1....   player 0 active special at (5,5)
//	row 6: ......b...   player 1 ink at (6,6)
//	row 7: .......B..   player 1 inactive special at (7,7)
//	row 8: ..........
//	row 9: ........
func legalityBoard(t *testing.T) *Board {
	return mustBoard(t,
		"..........",
		".A........",
		"..a.......",
		"...#......",
		"..........",
		".....1....",
		"......b...",
		".......B..",
		"..........",
		"........  ",
	)
}

func TestCheckMoveLegality(t *testing.T) {
	single := mustCard(t, 1, 0, "=")
	bar := mustCard(t, 2, 2, "===")

	tests := []struct {
		name     string
		player   int
		card     *Card
		x, y     int
		rotation int
		special  bool
		want     RejectCode // empty means legal
	}{
		{"touching own ink", 0, single, 3, 2, 0, false, ""},
		{"touching own inactive special diagonally", 0, single, 0, 0, 0, false, ""},
		{"touching own active special", 0, single, 4, 4, 0, false, ""},
		{"not touching anything", 0, single, 8, 0, 0, false, RejectNotAnchored},
		{"touching only enemy ink", 0, single, 7, 5, 0, false, RejectNotAnchored},
		{"off the left edge", 0, bar, -1, 0, 0, false, RejectOverWall},
		{"off the bottom edge", 1, bar, 7, 10, 0, false, RejectOverWall},
		{"over a wall", 0, bar, 2, 3, 0, false, RejectOverWall},
		{"over out of stage", 1, bar, 7, 9, 0, false, RejectOverWall},
		{"over own inactive special", 0, single, 1, 1, 0, false, RejectOverSpecial},
		{"over own active special on special attack", 0, single, 5, 5, 0, true, RejectOverSpecial},
		{"over enemy special on special attack", 0, single, 7, 7, 0, true, RejectOverSpecial},
		{"over enemy ink without special attack", 0, single, 6, 6, 0, false, RejectOverInk},
		{"over own ink without special attack", 0, single, 2, 2, 0, false, RejectOverInk},
		{"special attack over enemy ink next to active special", 0, single, 6, 6, 0, true, ""},
		{"special attack anchored only on inactive special", 0, single, 0, 0, 0, true, RejectNotAnchoredActive},
		{"special attack anchored only on ink", 0, single, 3, 2, 0, true, RejectNotAnchoredActive},
		{"rotated bar touching own special", 0, bar, -7, 2, 1, false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := legalityBoard(t)
			before := b.Clone()

			got := CheckMoveLegality(b, tc.player, tc.card, tc.x, tc.y, tc.rotation, tc.special)

			if tc.want == "" && got != nil {
				t.Errorf("expected legal, got %v", got)
			}
			if tc.want != "" {
				if got == nil {
					t.Fatalf("expected %s, got legal", tc.want)
				}
				if got.Code != tc.want {
					t.Errorf("code = %s, want %s (%s)", got.Code, tc.want, got.Message)
				}
				if got.Message == "" {
					t.Error("rejection without message")
				}
			}
			if !b.Equal(before) {
				t.Error("CheckMoveLegality modified the board")
			}
		})
	}
}

func TestOutOfBoundsReportedAsWall(t *testing.T) {
	b := legalityBoard(t)
	bar := mustCard(t, 2, 2, "===")

	edge := CheckMoveLegality(b, 0, bar, -1, 0, 0, false)
	wall := CheckMoveLegality(b, 0, bar, 2, 3, 0, false)
	if edge == nil || wall == nil {
		t.Fatal("expected both placements to be rejected")
	}
	if edge.Message != wall.Message {
		t.Errorf("edge message %q differs from wall message %q", edge.Message, wall.Message)
	}
}

func TestIsLegalPass(t *testing.T) {
	b := legalityBoard(t)
	if r := IsLegal(b, 0, PassMove()); r != nil {
		t.Errorf("pass rejected: %v", r)
	}
	m := PlayMove(mustCard(t, 1, 0, "="), 8, 0, 0, false)
	if r := IsLegal(b, 0, m); r == nil || r.Code != RejectNotAnchored {
		t.Errorf("IsLegal = %v, want %s", r, RejectNotAnchored)
	}
}
