// Package replay encodes and decodes recorded matches.
//
// Version 1 layout, multi-byte integers big-endian:
//
//	u8  version
//	u16 stage number
//	u8  player count (2..4)
//	per player:
//	    u8 r, u8 g, u8 b
//	    u8 name length, name bytes
//	    u8 deck length (1..15), u16 card number per entry
//	u8  turn count (0..12)
//	per turn, per player: u8 hand slot, u8 flags, i8 x, i8 y
//
// Flags: bits 0-1 rotation, bit 2 pass, bit 3 timeout, bit 4 special attack.
package replay

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
)

// Version is the only replay version this package reads and writes.
const Version = 1

const (
	MinPlayers = 2
	MaxDeck    = 15
	MaxTurns   = 12
	maxName    = 255
)

const (
	flagRotation = 0x03
	flagPass     = 1 << 2
	flagTimeout  = 1 << 3
	flagSpecial  = 1 << 4
	flagKnown    = flagRotation | flagPass | flagTimeout | flagSpecial
)

var (
	ErrUnsupportedVersion = errors.New("unsupported replay version")
	ErrTruncated          = errors.New("replay truncated")
	ErrMalformed          = errors.New("malformed replay")
)

// Color is a player's display colour.
type Color struct {
	R, G, B uint8
}

// Hex returns the colour as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Player is one seat of a recorded match.
type Player struct {
	Name  string
	Color Color
	Deck  []int // card numbers
}

// Record is one player's move in one turn.
type Record struct {
	HandSlot      int // index into the player's deck
	Rotation      int
	Pass          bool
	Timeout       bool
	SpecialAttack bool
	X, Y          int
}

// Passes reports whether the record resolves as a pass. A timeout does.
func (r Record) Passes() bool {
	return r.Pass || r.Timeout
}

func (r Record) flags() uint8 {
	f := uint8(r.Rotation) & flagRotation
	if r.Pass {
		f |= flagPass
	}
	if r.Timeout {
		f |= flagTimeout
	}
	if r.SpecialAttack {
		f |= flagSpecial
	}
	return f
}

// Replay is a decoded match record.
type Replay struct {
	Stage   int
	Players []Player
	Turns   [][]Record // Turns[turn][player]
}

// Validate checks the replay against the limits of the format.
func (r *Replay) Validate() error {
	if r.Stage < 0 || r.Stage > 0xffff {
		return fmt.Errorf("replay: stage %d: %w", r.Stage, ErrMalformed)
	}
	if n := len(r.Players); n < MinPlayers || n > engine.MaxPlayers {
		return fmt.Errorf("replay: %d players: %w", n, ErrMalformed)
	}
	for i, p := range r.Players {
		if len(p.Name) > maxName {
			return fmt.Errorf("replay: player %d name too long: %w", i, ErrMalformed)
		}
		if len(p.Deck) == 0 || len(p.Deck) > MaxDeck {
			return fmt.Errorf("replay: player %d deck of %d cards: %w", i, len(p.Deck), ErrMalformed)
		}
		for _, n := range p.Deck {
			if n < 0 || n > 0xffff {
				return fmt.Errorf("replay: player %d card %d: %w", i, n, ErrMalformed)
			}
		}
	}
	if len(r.Turns) > MaxTurns {
		return fmt.Errorf("replay: %d turns: %w", len(r.Turns), ErrMalformed)
	}
	for t, turn := range r.Turns {
		if len(turn) != len(r.Players) {
			return fmt.Errorf("replay: turn %d has %d records: %w", t, len(turn), ErrMalformed)
		}
		for p, rec := range turn {
			if rec.HandSlot < 0 || rec.HandSlot >= len(r.Players[p].Deck) {
				return fmt.Errorf("replay: turn %d player %d hand slot %d: %w", t, p, rec.HandSlot, ErrMalformed)
			}
			if rec.Rotation < 0 || rec.Rotation > 3 {
				return fmt.Errorf("replay: turn %d player %d rotation %d: %w", t, p, rec.Rotation, ErrMalformed)
			}
			if rec.X < -128 || rec.X > 127 || rec.Y < -128 || rec.Y > 127 {
				return fmt.Errorf("replay: turn %d player %d position (%d,%d): %w", t, p, rec.X, rec.Y, ErrMalformed)
			}
		}
	}
	return nil
}

// Moves returns the engine moves of one turn, indexed by player.
func (r *Replay) Moves(turn int, catalog *cards.Catalog) ([]engine.Move, error) {
	if turn < 0 || turn >= len(r.Turns) {
		return nil, fmt.Errorf("replay: turn %d of %d", turn, len(r.Turns))
	}
	moves := make([]engine.Move, len(r.Players))
	for p, rec := range r.Turns[turn] {
		if rec.Passes() {
			moves[p] = engine.PassMove()
			continue
		}
		card, err := catalog.Card(r.Players[p].Deck[rec.HandSlot])
		if err != nil {
			return nil, fmt.Errorf("replay: turn %d player %d: %w", turn, p, err)
		}
		moves[p] = engine.PlayMove(card, rec.X, rec.Y, rec.Rotation, rec.SpecialAttack)
	}
	return moves, nil
}

// Apply resolves one turn on b and returns the placement record.
func (r *Replay) Apply(b *engine.Board, turn int, catalog *cards.Catalog) (engine.PlacementResults, error) {
	moves, err := r.Moves(turn, catalog)
	if err != nil {
		return engine.PlacementResults{}, err
	}
	ptrs := make([]*engine.Move, len(moves))
	for i := range moves {
		ptrs[i] = &moves[i]
	}
	return engine.MakePlacements(b, ptrs), nil
}
