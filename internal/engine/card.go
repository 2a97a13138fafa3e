package engine

import (
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/core"
)

// CardSize is the side length of a card's ink pattern.
const CardSize = 8

// CardSpace is one cell of a card pattern.
type CardSpace uint8

const (
	CardEmpty CardSpace = iota
	CardInk
	CardSpecial
)

// String returns the pattern glyph of the card space.
func (cs CardSpace) String() string {
	switch cs {
	case CardEmpty:
		return "."
	case CardInk:
		return "="
	case CardSpecial:
		return "*"
	default:
		return "?"
	}
}

// Rarity is display metadata carried along with a card.
type Rarity string

const (
	RarityCommon Rarity = "common"
	RarityRare   Rarity = "rare"
	RarityFresh  Rarity = "fresh"
)

// CardCell is a non-empty card cell at its local offset for some rotation.
type CardCell struct {
	Offset Coord
	Kind   CardSpace
}

// Card is an immutable card definition. Many placements may share one Card.
type Card struct {
	Number      int
	Name        string
	Rarity      Rarity
	SpecialCost int

	grid [CardSize][CardSize]CardSpace // indexed [x][y]
	size int
}

// NewCard builds a card from a pattern indexed grid[x][y].
// Returns an error if the pattern holds anything other than empty, ink or
// special cells, or if it is entirely empty.
func NewCard(number int, name string, rarity Rarity, specialCost int, grid [CardSize][CardSize]CardSpace) (*Card, error) {
	size := 0
	for x := range CardSize {
		for y := range CardSize {
			switch grid[x][y] {
			case CardEmpty:
			case CardInk, CardSpecial:
				size++
			default:
				return nil, fmt.Errorf("engine: card %d: invalid space %d at (%d,%d)", number, grid[x][y], x, y)
			}
		}
	}
	if size == 0 {
		return nil, fmt.Errorf("engine: card %d: empty pattern", number)
	}
	if specialCost < 0 {
		return nil, fmt.Errorf("engine: card %d: negative special cost", number)
	}
	return &Card{
		Number:      number,
		Name:        name,
		Rarity:      rarity,
		SpecialCost: specialCost,
		grid:        grid,
		size:        size,
	}, nil
}

// Size returns the number of non-empty cells on the card.
func (c *Card) Size() int {
	return c.size
}

// Space returns the card cell found at local offset (x, y) once the card is
// rotated by rotation quarter turns clockwise. Rotation is taken mod 4.
// Offsets outside [0, CardSize) yield CardEmpty.
func (c *Card) Space(x, y, rotation int) CardSpace {
	if x < 0 || x >= CardSize || y < 0 || y >= CardSize {
		return CardEmpty
	}
	const last = CardSize - 1
	switch core.Mod(rotation, 4) {
	case 0:
		return c.grid[x][y]
	case 1:
		return c.grid[y][last-x]
	case 2:
		return c.grid[last-x][last-y]
	default:
		return c.grid[last-y][x]
	}
}

// Cells returns the non-empty cells at the given rotation in row-major order.
func (c *Card) Cells(rotation int) []CardCell {
	cells := make([]CardCell, 0, c.size)
	for y := range CardSize {
		for x := range CardSize {
			if k := c.Space(x, y, rotation); k != CardEmpty {
				cells = append(cells, CardCell{Offset: C(x, y), Kind: k})
			}
		}
	}
	return cells
}

// InkBounds returns the bounding box of the non-empty cells at the given
// rotation, in local card coordinates.
func (c *Card) InkBounds(rotation int) core.Rect {
	minX, minY := CardSize, CardSize
	maxX, maxY := -1, -1
	for y := range CardSize {
		for x := range CardSize {
			if c.Space(x, y, rotation) == CardEmpty {
				continue
			}
			minX = min(minX, x)
			minY = min(minY, y)
			maxX = max(maxX, x)
			maxY = max(maxY, y)
		}
	}
	if maxX < 0 {
		return core.Rect{}
	}
	return core.RectFromCorners(minX, minY, maxX, maxY)
}

// PatternRows returns the pattern at the given rotation cropped to its ink,
// one string per row in the '.', '=', '*' glyphs.
func (c *Card) PatternRows(rotation int) []string {
	b := c.InkBounds(rotation)
	rows := make([]string, 0, b.H)
	for y := b.Y; y < b.Y+b.H; y++ {
		row := make([]byte, 0, b.W)
		for x := b.X; x < b.X+b.W; x++ {
			row = append(row, c.Space(x, y, rotation).String()...)
		}
		rows = append(rows, string(row))
	}
	return rows
}

// ClampPosition returns the origin nearest to (x, y) for which every
// non-empty cell lands on the board. The input is returned unchanged when it
// already satisfies this. Legality is not considered.
func (c *Card) ClampPosition(x, y, boardW, boardH, rotation int) (int, int) {
	bounds := c.InkBounds(rotation)
	if bounds.Empty() {
		return x, y
	}
	x = core.Clamp(x, -bounds.X, boardW-bounds.Right())
	y = core.Clamp(y, -bounds.Y, boardH-bounds.Bottom())
	return x, y
}

// RotationPivot returns the origin to use after rotating a card placed at
// (x, y) from one rotation to another, keeping the ink bounding box centred.
// When the box's width and height differ in parity the centre cannot be kept
// exactly; the half cell is rounded down on odd target rotations and up on
// even ones, so four successive turns return to the starting origin.
func (c *Card) RotationPivot(x, y, from, to int) (int, int) {
	before := c.InkBounds(from).Offset(x, y)
	after := c.InkBounds(to)
	if before.Empty() || after.Empty() {
		return x, y
	}
	cx, cy := before.Center2()
	ax, ay := after.Center2()
	up := core.Mod(to, 2) == 0
	return halve(cx-ax, up), halve(cy-ay, up)
}

// halve divides v by two, rounding odd values up or down.
func halve(v int, up bool) int {
	if v%2 == 0 {
		return v / 2
	}
	down := (v - 1) / 2 // floor for odd v of either sign
	if up {
		return down + 1
	}
	return down
}

// String renders the card pattern at rotation 0, one row per line.
func (c *Card) String() string {
	buf := make([]byte, 0, (CardSize+1)*CardSize)
	for y := range CardSize {
		if y > 0 {
			buf = append(buf, '\n')
		}
		for x := range CardSize {
			buf = append(buf, c.grid[x][y].String()...)
		}
	}
	return string(buf)
}

// ParsePattern reads a card pattern from up to eight rows of up to eight
// characters: '.' empty, '=' ink, '*' special. Short rows and missing rows
// are padded with empty cells. The result is indexed [x][y].
func ParsePattern(rows []string) ([CardSize][CardSize]CardSpace, error) {
	var grid [CardSize][CardSize]CardSpace
	if len(rows) > CardSize {
		return grid, fmt.Errorf("engine: pattern has %d rows, max %d", len(rows), CardSize)
	}
	for y, row := range rows {
		if len(row) > CardSize {
			return grid, fmt.Errorf("engine: pattern row %d has %d cells, max %d", y, len(row), CardSize)
		}
		for x, r := range row {
			switch r {
			case '.', ' ':
				grid[x][y] = CardEmpty
			case '=':
				grid[x][y] = CardInk
			case '*':
				grid[x][y] = CardSpecial
			default:
				return grid, fmt.Errorf("engine: pattern row %d col %d: unknown cell %q", y, x, r)
			}
		}
	}
	return grid, nil
}
