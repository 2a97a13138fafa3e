package engine

import "fmt"

// Coord represents a 2D coordinate on the board.
// X increases to the right, Y increases downward (screen coordinates).
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// mooreOffsets are the 8 neighbour offsets around a cell.
var mooreOffsets = [8]Coord{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// Neighbors returns the Moore neighbourhood of c. Coordinates may lie
// outside the board; callers filter with Board.InBounds.
func (c Coord) Neighbors() [8]Coord {
	var out [8]Coord
	for i, o := range mooreOffsets {
		out[i] = c.Add(o.X, o.Y)
	}
	return out
}
