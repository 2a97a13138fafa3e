package engine

import "fmt"

// Move is one player's commitment for a turn: either a pass or a card play.
// (X, Y) is the board offset of the card's local origin before rotation.
type Move struct {
	Pass          bool
	Card          *Card
	X, Y          int
	Rotation      int // quarter turns clockwise, 0..3
	SpecialAttack bool
}

// PassMove returns a pass.
func PassMove() Move {
	return Move{Pass: true}
}

// PlayMove returns a card play. Rotation is normalised to 0..3.
func PlayMove(card *Card, x, y, rotation int, specialAttack bool) Move {
	return Move{
		Card:          card,
		X:             x,
		Y:             y,
		Rotation:      ((rotation % 4) + 4) % 4,
		SpecialAttack: specialAttack,
	}
}

// String returns a short description of the move.
func (m Move) String() string {
	if m.Pass || m.Card == nil {
		return "pass"
	}
	kind := "play"
	if m.SpecialAttack {
		kind = "special"
	}
	return fmt.Sprintf("%s #%d at (%d,%d) r%d", kind, m.Card.Number, m.X, m.Y, m.Rotation)
}
