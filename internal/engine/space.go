// Package engine implements the turf rules: board spaces, card geometry,
// move legality, simultaneous placement resolution and scoring.
// This package is UI-agnostic and deterministic. It never logs and holds no
// package-level mutable state; every operation takes the Board explicitly.
package engine

import "fmt"

// MaxPlayers is the number of distinct owners a Space can encode.
const MaxPlayers = 4

// Space is the state of a single board cell.
//
// Layout (low to high bits): 2-bit player, ink/active flag, special flag.
// The numeric value preserves the precedence order
// Empty < Wall/OutOfBounds < Ink < SpecialInactive < SpecialActive,
// but callers should compare with Rank or Compare rather than raw values.
type Space uint8

const (
	playerMask  Space = 0b0011
	inkFlag     Space = 0b0100
	specialFlag Space = 0b1000
	activeFlag  Space = inkFlag // only meaningful together with specialFlag
)

const (
	Empty       Space = 0
	Wall        Space = 1
	OutOfBounds Space = 2
)

// Ink returns an ink space owned by player.
func Ink(player int) Space {
	return inkFlag | playerBits(player)
}

// SpecialInactive returns a not yet activated special space owned by player.
func SpecialInactive(player int) Space {
	return specialFlag | playerBits(player)
}

// SpecialActive returns an activated special space owned by player.
func SpecialActive(player int) Space {
	return specialFlag | activeFlag | playerBits(player)
}

func playerBits(player int) Space {
	if player < 0 || player >= MaxPlayers {
		panic(fmt.Sprintf("engine: player index %d out of range", player))
	}
	return Space(player)
}

// IsOwned reports whether the space belongs to a player (ink or special).
func (s Space) IsOwned() bool {
	return s&(inkFlag|specialFlag) != 0
}

// Player returns the owner of the space. Only meaningful when IsOwned is true.
func (s Space) Player() int {
	return int(s & playerMask)
}

// IsInk reports whether the space is plain ink.
func (s Space) IsInk() bool {
	return s&specialFlag == 0 && s&inkFlag != 0
}

// IsSpecial reports whether the space is a special space, active or not.
func (s Space) IsSpecial() bool {
	return s&specialFlag != 0
}

// IsActive reports whether the space is an activated special space.
func (s Space) IsActive() bool {
	return s.IsSpecial() && s&activeFlag != 0
}

// IsBlocked reports whether the space is a wall or lies outside the stage.
func (s Space) IsBlocked() bool {
	return s == Wall || s == OutOfBounds
}

// OwnedBy reports whether the space is ink or special belonging to player.
func (s Space) OwnedBy(player int) bool {
	return s.IsOwned() && s.Player() == player
}

// Activated returns the active variant of a special space.
// Panics if the space is not special.
func (s Space) Activated() Space {
	if !s.IsSpecial() {
		panic(fmt.Sprintf("engine: cannot activate %v", s))
	}
	return s | activeFlag
}

// Deactivated clears the active flag of a special space.
// Panics if the space is not special.
func (s Space) Deactivated() Space {
	if !s.IsSpecial() {
		panic(fmt.Sprintf("engine: cannot deactivate %v", s))
	}
	return s &^ activeFlag
}

// Precedence ranks, lowest first.
const (
	RankEmpty = iota
	RankBlocked
	RankInk
	RankSpecialInactive
	RankSpecialActive
)

// Rank returns the precedence rank of the space, ignoring the owner.
func (s Space) Rank() int {
	switch {
	case s == Empty:
		return RankEmpty
	case s.IsActive():
		return RankSpecialActive
	case s.IsSpecial():
		return RankSpecialInactive
	case s.IsInk():
		return RankInk
	default:
		return RankBlocked
	}
}

// Compare orders two spaces by precedence: -1 if a ranks below b,
// +1 if above, 0 if they share a rank.
func Compare(a, b Space) int {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// String returns a short human readable name for the space.
func (s Space) String() string {
	switch {
	case s == Empty:
		return "Empty"
	case s == Wall:
		return "Wall"
	case s == OutOfBounds:
		return "OutOfBounds"
	case s.IsActive():
		return fmt.Sprintf("SpecialActive(%d)", s.Player())
	case s.IsSpecial():
		return fmt.Sprintf("SpecialInactive(%d)", s.Player())
	case s.IsInk():
		return fmt.Sprintf("Ink(%d)", s.Player())
	default:
		return fmt.Sprintf("Space(%d)", uint8(s))
	}
}

// Char returns the ASCII glyph used by Board.String.
// Players 0..3 use a/b/c/d for ink, A/B/C/D for inactive specials and
// 1/2/3/4 for active specials.
func (s Space) Char() rune {
	switch {
	case s == Empty:
		return '.'
	case s == Wall:
		return '#'
	case s == OutOfBounds:
		return ' '
	case s.IsActive():
		return rune('1' + s.Player())
	case s.IsSpecial():
		return rune('A' + s.Player())
	case s.IsInk():
		return rune('a' + s.Player())
	default:
		return '?'
	}
}
