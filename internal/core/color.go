package core

// Color is a logical foreground colour for a screen cell. Renderers map
// it to a terminal style; the core package never emits escape codes.
type Color uint8

// Fixed colours for frames, text and blocked spaces.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorWhite
	ColorBrightWhite
	ColorGray
	ColorDim
)

// MaxPlayerColors is the number of seats that get their own colour.
const MaxPlayerColors = 4

// Player colours follow the fixed ones: first the ink colours of seats
// 0..3, then the brighter special colours in the same order.
const (
	colorPlayerBase  = ColorDim + 1
	colorSpecialBase = colorPlayerBase + MaxPlayerColors
)

// PlayerColor returns the ink colour of a seat.
func PlayerColor(player int) Color {
	return colorPlayerBase + Color(Mod(player, MaxPlayerColors))
}

// PlayerSpecialColor returns the special-space colour of a seat.
func PlayerSpecialColor(player int) Color {
	return colorSpecialBase + Color(Mod(player, MaxPlayerColors))
}

// PlayerOf reports which seat a colour belongs to, and whether it is a
// special colour. ok is false for the fixed colours.
func (c Color) PlayerOf() (player int, special, ok bool) {
	switch {
	case c >= colorSpecialBase && c < colorSpecialBase+MaxPlayerColors:
		return int(c - colorSpecialBase), true, true
	case c >= colorPlayerBase && c < colorSpecialBase:
		return int(c - colorPlayerBase), false, true
	}
	return 0, false, false
}
