package engine

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/inkgrid/internal/core"
)

// MinBoardSize is the smallest allowed board width or height.
const MinBoardSize = 8

// Board represents the stage as a rectangular grid of spaces.
// Spaces are stored in row-major order: index = y*W + x.
type Board struct {
	W      int     // Width of the board
	H      int     // Height of the board
	Spaces []Space // Flat array of spaces, length W*H

	// StartSpaces lists the start coordinates per player-count tier:
	// index 0 is the two-player layout, 1 three players, 2 four players.
	StartSpaces [][]Coord
}

// NewBoard creates an empty board with the given dimensions.
// Returns an error if either dimension is below MinBoardSize.
func NewBoard(w, h int) (*Board, error) {
	if w < MinBoardSize || h < MinBoardSize {
		return nil, fmt.Errorf("engine: board %dx%d smaller than %dx%d", w, h, MinBoardSize, MinBoardSize)
	}
	return &Board{
		W:      w,
		H:      h,
		Spaces: make([]Space, w*h),
	}, nil
}

// index converts a coordinate to a flat array index.
func (b *Board) index(c Coord) int {
	return c.Y*b.W + c.X
}

// InBounds returns true if the coordinate is within the board boundaries.
func (b *Board) InBounds(c Coord) bool {
	return b.Bounds().Contains(c.X, c.Y)
}

// Bounds returns the board rectangle anchored at the origin.
func (b *Board) Bounds() core.Rect {
	return core.NewRect(0, 0, b.W, b.H)
}

// Get returns the space at the given coordinate.
// Returns OutOfBounds if the coordinate lies outside the board.
func (b *Board) Get(c Coord) Space {
	if !b.InBounds(c) {
		return OutOfBounds
	}
	return b.Spaces[b.index(c)]
}

// Set sets the space at the given coordinate. Out-of-bounds writes are ignored.
func (b *Board) Set(c Coord, s Space) {
	if b.InBounds(c) {
		b.Spaces[b.index(c)] = s
	}
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	spaces := make([]Space, len(b.Spaces))
	copy(spaces, b.Spaces)

	starts := make([][]Coord, len(b.StartSpaces))
	for i, tier := range b.StartSpaces {
		starts[i] = append([]Coord(nil), tier...)
	}

	return &Board{
		W:           b.W,
		H:           b.H,
		Spaces:      spaces,
		StartSpaces: starts,
	}
}

// Equal returns true if two boards have the same dimensions and spaces.
// Start spaces are not compared.
func (b *Board) Equal(other *Board) bool {
	if b.W != other.W || b.H != other.H {
		return false
	}
	for i, s := range b.Spaces {
		if s != other.Spaces[i] {
			return false
		}
	}
	return true
}

// Diff returns the coordinates whose spaces differ between two boards of
// equal dimensions, in row-major order.
func (b *Board) Diff(other *Board) []Coord {
	var out []Coord
	for y := 0; y < b.H; y++ {
		for x := 0; x < b.W; x++ {
			c := C(x, y)
			if b.Get(c) != other.Get(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Count returns the number of spaces satisfying pred.
func (b *Board) Count(pred func(Space) bool) int {
	n := 0
	for _, s := range b.Spaces {
		if pred(s) {
			n++
		}
	}
	return n
}

// StartTier returns the start coordinates for the given player count.
func (b *Board) StartTier(players int) ([]Coord, error) {
	tier := players - 2
	if tier < 0 || tier >= len(b.StartSpaces) {
		return nil, fmt.Errorf("engine: no start layout for %d players", players)
	}
	if len(b.StartSpaces[tier]) < players {
		return nil, fmt.Errorf("engine: start layout for %d players has %d spaces", players, len(b.StartSpaces[tier]))
	}
	return b.StartSpaces[tier], nil
}

// PlaceStarts writes an inactive special space for each player on the start
// layout of the given player count.
func (b *Board) PlaceStarts(players int) error {
	starts, err := b.StartTier(players)
	if err != nil {
		return err
	}
	for p := 0; p < players; p++ {
		b.Set(starts[p], SpecialInactive(p))
	}
	return nil
}

// String renders the board as ASCII, one row per line (see Space.Char).
func (b *Board) String() string {
	var sb strings.Builder
	sb.Grow((b.W + 1) * b.H)
	for y := 0; y < b.H; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < b.W; x++ {
			sb.WriteRune(b.Get(C(x, y)).Char())
		}
	}
	return sb.String()
}

// ParseSpace is the inverse of Space.Char. 'x' is accepted as an
// alternative spelling of OutOfBounds.
func ParseSpace(r rune) (Space, bool) {
	switch {
	case r == '.':
		return Empty, true
	case r == '#':
		return Wall, true
	case r == ' ' || r == 'x':
		return OutOfBounds, true
	case r >= 'a' && r <= 'd':
		return Ink(int(r - 'a')), true
	case r >= 'A' && r <= 'D':
		return SpecialInactive(int(r - 'A')), true
	case r >= '1' && r <= '4':
		return SpecialActive(int(r - '1')), true
	default:
		return Empty, false
	}
}

// ParseBoard builds a board from ASCII rows in the Board.String format.
// Every row must have the same length.
func ParseBoard(rows []string) (*Board, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("engine: no rows")
	}
	w := len([]rune(rows[0]))
	b, err := NewBoard(w, len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != w {
			return nil, fmt.Errorf("engine: row %d has width %d, want %d", y, len(runes), w)
		}
		for x, r := range runes {
			s, ok := ParseSpace(r)
			if !ok {
				return nil, fmt.Errorf("engine: row %d col %d: unknown space %q", y, x, r)
			}
			b.Set(C(x, y), s)
		}
	}
	return b, nil
}
