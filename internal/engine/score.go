package engine

// Scores counts owned spaces (ink or special) per player.
// Walls, out-of-stage and empty spaces count for no one.
func Scores(b *Board, players int) []int {
	scores := make([]int, players)
	for _, s := range b.Spaces {
		if s.Rank() < RankInk {
			continue
		}
		if p := s.Player(); p < players {
			scores[p]++
		}
	}
	return scores
}

// Placement origins tried by the exhaustive search. An 8x8 pattern can only
// reach the board from origins in [-(CardSize-1), size-1].
const searchMin = -(CardSize - 1)

// Position is a card origin and rotation.
type Position struct {
	X, Y     int
	Rotation int
}

// CanPlayCard reports whether player has at least one legal placement of
// card anywhere on the board, trying all rotations.
func CanPlayCard(b *Board, player int, card *Card, specialAttack bool) bool {
	found := false
	searchPlacements(b, player, card, specialAttack, func(Position) bool {
		found = true
		return false
	})
	return found
}

// LegalPlacements returns every legal origin and rotation for card.
// Cards with rotational symmetry may yield the same footprint more than once.
func LegalPlacements(b *Board, player int, card *Card, specialAttack bool) []Position {
	var out []Position
	searchPlacements(b, player, card, specialAttack, func(p Position) bool {
		out = append(out, p)
		return true
	})
	return out
}

// searchPlacements calls yield for each legal placement until it returns false.
func searchPlacements(b *Board, player int, card *Card, specialAttack bool, yield func(Position) bool) {
	board := b.Bounds()
	for rotation := range 4 {
		ink := card.InkBounds(rotation)
		for y := searchMin; y < b.H; y++ {
			for x := searchMin; x < b.W; x++ {
				if !board.ContainsRect(ink.Offset(x, y)) {
					continue
				}
				if CheckMoveLegality(b, player, card, x, y, rotation, specialAttack) != nil {
					continue
				}
				if !yield(Position{X: x, Y: y, Rotation: rotation}) {
					return
				}
			}
		}
	}
}
