package engine

import "fmt"

// RejectCode is a machine-readable reason a placement is illegal.
type RejectCode string

const (
	// RejectOverWall covers walls, out-of-stage spaces and the board edge alike.
	RejectOverWall          RejectCode = "OVER_WALL"
	RejectOverSpecial       RejectCode = "OVER_SPECIAL"
	RejectOverInk           RejectCode = "OVER_INK"
	RejectNotAnchored       RejectCode = "NOT_ANCHORED"
	RejectNotAnchoredActive RejectCode = "NOT_ANCHORED_SPECIAL"
)

// Rejection explains why a move is illegal. It is an expected, recoverable
// outcome that callers surface to the player.
type Rejection struct {
	Code    RejectCode
	Message string
	At      Coord // offending board coordinate; zero for anchor failures
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("[%s] %s", r.Code, r.Message)
}

func reject(code RejectCode, at Coord) *Rejection {
	var msg string
	switch code {
	case RejectOverWall:
		msg = "Card cannot be placed over a wall."
	case RejectOverSpecial:
		msg = "Card cannot be placed over a special space."
	case RejectOverInk:
		msg = "Card cannot be placed over inked spaces without a special attack."
	case RejectNotAnchored:
		msg = "Card must be placed touching your ink."
	case RejectNotAnchoredActive:
		msg = "Special attack must be placed adjacent to your active special space."
	}
	return &Rejection{Code: code, Message: msg, At: at}
}

// CheckMoveLegality checks whether player may place card with its origin at
// (x, y) and the given rotation. Returns nil when the move is legal.
// The board is never modified.
func CheckMoveLegality(b *Board, player int, card *Card, x, y, rotation int, specialAttack bool) *Rejection {
	anchored := false

	for _, cell := range card.Cells(rotation) {
		at := C(x+cell.Offset.X, y+cell.Offset.Y)
		if !b.InBounds(at) {
			return reject(RejectOverWall, at)
		}

		existing := b.Get(at)
		switch {
		case existing.IsBlocked():
			return reject(RejectOverWall, at)
		case existing.IsSpecial():
			return reject(RejectOverSpecial, at)
		case existing != Empty && !specialAttack:
			return reject(RejectOverInk, at)
		}

		if !anchored {
			anchored = touchesAnchor(b, at, player, specialAttack)
		}
	}

	if anchored {
		return nil
	}
	if specialAttack {
		return reject(RejectNotAnchoredActive, Coord{})
	}
	return reject(RejectNotAnchored, Coord{})
}

// touchesAnchor reports whether any in-bounds Moore neighbour of at can
// anchor a placement by player. Normal plays anchor on any owned space;
// special attacks only on an owned active special space.
func touchesAnchor(b *Board, at Coord, player int, specialAttack bool) bool {
	for _, n := range at.Neighbors() {
		if !b.InBounds(n) {
			continue
		}
		s := b.Get(n)
		if !s.OwnedBy(player) {
			continue
		}
		if !specialAttack || s.IsActive() {
			return true
		}
	}
	return false
}

// IsLegal is a convenience wrapper around CheckMoveLegality for a Move.
// Passes are always legal.
func IsLegal(b *Board, player int, m Move) *Rejection {
	if m.Pass {
		return nil
	}
	return CheckMoveLegality(b, player, m.Card, m.X, m.Y, m.Rotation, m.SpecialAttack)
}
