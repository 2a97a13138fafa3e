// Package bots implements the built-in automated players and registers
// them with the strategy registry.
package bots

import (
	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
)

// Option is one legal play available to a player this turn.
type Option struct {
	Card    *engine.Card
	Pos     engine.Position
	Special bool
	Gain    int // own territory gained plus opponent territory removed
}

// Submission returns the option as a match submission.
func (o Option) Submission() match.Submission {
	return match.Play(o.Card.Number, o.Pos, o.Special)
}

// Options enumerates every legal play in the view's hand, special attacks
// included when affordable, and scores each one on a scratch board.
func Options(v match.View) []Option {
	before := engine.Scores(v.Board, v.Players)
	var out []Option
	for _, card := range v.Hand {
		modes := []bool{false}
		if v.SpecialPoints >= card.SpecialCost {
			modes = append(modes, true)
		}
		for _, special := range modes {
			for _, pos := range engine.LegalPlacements(v.Board, v.Player, card, special) {
				out = append(out, Option{
					Card:    card,
					Pos:     pos,
					Special: special,
					Gain:    gain(v, before, card, pos, special),
				})
			}
		}
	}
	return out
}

func gain(v match.View, before []int, card *engine.Card, pos engine.Position, special bool) int {
	scratch := v.Board.Clone()
	moves := make([]*engine.Move, v.Players)
	m := engine.PlayMove(card, pos.X, pos.Y, pos.Rotation, special)
	moves[v.Player] = &m
	engine.MakePlacements(scratch, moves)

	after := engine.Scores(scratch, v.Players)
	g := 0
	for p := range after {
		if p == v.Player {
			g += after[p] - before[p]
		} else {
			g += before[p] - after[p]
		}
	}
	return g
}

// cheapestDiscard returns the card to throw away when passing: the one
// with the smallest pattern.
func cheapestDiscard(hand []*engine.Card) int {
	best := hand[0]
	for _, c := range hand[1:] {
		if c.Size() < best.Size() {
			best = c
		}
	}
	return best.Number
}
