package engine

import (
	"fmt"
	"sort"
)

// CellChange records one board mutation made while resolving a turn.
type CellChange struct {
	At  Coord
	Old Space
	New Space
}

// Placement is the record of one size group: the players whose equally
// sized cards resolved together and every change they made, in order.
type Placement struct {
	Players []int
	Cells   []CellChange
}

// PlacementResults is the full record of one resolved turn.
type PlacementResults struct {
	Placements             []Placement // largest card size first
	SpecialSpacesActivated []Coord
}

// Changed returns every coordinate touched by the turn, deduplicated, in
// the order first changed. Activations are included.
func (r PlacementResults) Changed() []Coord {
	seen := make(map[Coord]bool)
	var out []Coord
	add := func(c Coord) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, p := range r.Placements {
		for _, ch := range p.Cells {
			add(ch.At)
		}
	}
	for _, c := range r.SpecialSpacesActivated {
		add(c)
	}
	return out
}

// claim is the owner of a coordinate within the group being resolved.
type claim struct {
	player  int
	special bool
}

// MakePlacements resolves one turn of simultaneous moves onto the board.
// moves is indexed by player; nil entries and passes are skipped.
//
// Cards resolve in groups of equal size, largest first, so smaller cards are
// laid on top. Within a group, two claims on the same coordinate turn it into
// a wall, except that a special cell always beats an ink cell. Ink never
// overwrites a special space. After all groups, every inactive special space
// with no empty neighbour is activated.
//
// Moves are trusted: callers validate them with CheckMoveLegality first.
func MakePlacements(b *Board, moves []*Move) PlacementResults {
	var results PlacementResults

	for _, group := range groupBySize(moves) {
		placement := Placement{Players: group}
		claims := make(map[Coord]claim)

		set := func(at Coord, s Space) {
			old := b.Get(at)
			if old == s {
				return
			}
			b.Set(at, s)
			placement.Cells = append(placement.Cells, CellChange{At: at, Old: old, New: s})
		}

		for _, player := range group {
			m := moves[player]
			for _, cell := range m.Card.Cells(m.Rotation) {
				at := C(m.X+cell.Offset.X, m.Y+cell.Offset.Y)
				if !b.InBounds(at) {
					continue
				}
				prior, claimed := claims[at]

				switch cell.Kind {
				case CardInk:
					if b.Get(at).IsSpecial() {
						continue
					}
					if claimed {
						set(at, Wall)
						continue
					}
					set(at, Ink(player))
					claims[at] = claim{player: player}

				case CardSpecial:
					if b.Get(at).IsActive() {
						continue // activation is permanent
					}
					if claimed && prior.special {
						set(at, Wall)
						continue
					}
					set(at, SpecialInactive(player))
					claims[at] = claim{player: player, special: true}

				default:
					panic(fmt.Sprintf("engine: card %d has invalid cell %v", m.Card.Number, cell.Kind))
				}
			}
		}

		results.Placements = append(results.Placements, placement)
	}

	results.SpecialSpacesActivated = ActivateSpecials(b)
	return results
}

// groupBySize returns the indices of non-pass moves grouped by card size,
// largest first. Players keep submission order within a group.
func groupBySize(moves []*Move) [][]int {
	var players []int
	for i, m := range moves {
		if m == nil || m.Pass || m.Card == nil {
			continue
		}
		players = append(players, i)
	}
	sort.SliceStable(players, func(i, j int) bool {
		return moves[players[i]].Card.Size() > moves[players[j]].Card.Size()
	})

	var groups [][]int
	for i, p := range players {
		if i > 0 && moves[players[i-1]].Card.Size() == moves[p].Card.Size() {
			groups[len(groups)-1] = append(groups[len(groups)-1], p)
			continue
		}
		groups = append(groups, []int{p})
	}
	return groups
}

// ActivateSpecials activates every inactive special space whose in-bounds
// Moore neighbours hold no empty space, and returns their coordinates in
// row-major order. Running it twice without further placement activates
// nothing new.
func ActivateSpecials(b *Board) []Coord {
	var activated []Coord
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			at := C(x, y)
			s := b.Get(at)
			if !s.IsSpecial() || s.IsActive() {
				continue
			}
			if surrounded(b, at) {
				activated = append(activated, at)
			}
		}
	}
	// Activation is decided on the pre-scan board, so apply afterwards.
	for _, at := range activated {
		b.Set(at, b.Get(at).Activated())
	}
	return activated
}

func surrounded(b *Board, at Coord) bool {
	for _, n := range at.Neighbors() {
		if b.InBounds(n) && b.Get(n) == Empty {
			return false
		}
	}
	return true
}

// UndoTurn reverses a turn previously applied by MakePlacements. It must be
// called on the board state produced by that turn, before any later turn is
// applied; otherwise it panics.
func UndoTurn(b *Board, results PlacementResults) {
	for _, at := range results.SpecialSpacesActivated {
		s := b.Get(at)
		if !s.IsActive() {
			panic(fmt.Sprintf("engine: undo out of order: %v at %v is not an active special", s, at))
		}
		b.Set(at, s.Deactivated())
	}

	for i := len(results.Placements) - 1; i >= 0; i-- {
		cells := results.Placements[i].Cells
		for j := len(cells) - 1; j >= 0; j-- {
			ch := cells[j]
			if cur := b.Get(ch.At); cur != ch.New {
				panic(fmt.Sprintf("engine: undo out of order: %v holds %v, recorded %v", ch.At, cur, ch.New))
			}
			b.Set(ch.At, ch.Old)
		}
	}
}

// RedoTurn applies a recorded turn again to the board it was recorded on,
// as it stood before the turn. It is the inverse of UndoTurn and panics on
// a board that does not match the record.
func RedoTurn(b *Board, results PlacementResults) {
	for _, p := range results.Placements {
		for _, ch := range p.Cells {
			if cur := b.Get(ch.At); cur != ch.Old {
				panic(fmt.Sprintf("engine: redo out of order: %v holds %v, recorded %v", ch.At, cur, ch.Old))
			}
			b.Set(ch.At, ch.New)
		}
	}
	for _, at := range results.SpecialSpacesActivated {
		b.Set(at, b.Get(at).Activated())
	}
}
