package tui

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/match"
)

var errEmptyHand = errors.New("no cards in hand")

// placement is the card a player is aiming: which hand slot, where and how
// it is turned, and whether it is played as a special attack.
type placement struct {
	slot     int
	x, y     int
	rotation int
	special  bool
}

// card returns the selected card, or nil for an empty hand.
func (p *placement) card(hand []*engine.Card) *engine.Card {
	if len(hand) == 0 {
		return nil
	}
	p.slot = min(max(p.slot, 0), len(hand)-1)
	return hand[p.slot]
}

// center puts the selected card in the middle of the board.
func (p *placement) center(b *engine.Board, hand []*engine.Card) {
	p.x = b.W/2 - engine.CardSize/2
	p.y = b.H/2 - engine.CardSize/2
	p.clamp(b, hand)
}

// clamp keeps every ink cell of the selected card on the board.
func (p *placement) clamp(b *engine.Board, hand []*engine.Card) {
	if c := p.card(hand); c != nil {
		p.x, p.y = c.ClampPosition(p.x, p.y, b.W, b.H, p.rotation)
	}
}

func (p *placement) move(dx, dy int, b *engine.Board, hand []*engine.Card) {
	p.x += dx
	p.y += dy
	p.clamp(b, hand)
}

// rotate turns the card a quarter turn clockwise (dir 1) or anticlockwise
// (dir -1) about the centre of its ink.
func (p *placement) rotate(dir int, b *engine.Board, hand []*engine.Card) {
	to := ((p.rotation+dir)%4 + 4) % 4
	if c := p.card(hand); c != nil {
		p.x, p.y = c.RotationPivot(p.x, p.y, p.rotation, to)
	}
	p.rotation = to
	p.clamp(b, hand)
}

// selectSlot picks a hand slot, wrapping around the hand.
func (p *placement) selectSlot(slot int, b *engine.Board, hand []*engine.Card) {
	if len(hand) == 0 {
		return
	}
	p.slot = ((slot % len(hand)) + len(hand)) % len(hand)
	p.clamp(b, hand)
}

// engineMove returns the engine move for the current aim.
func (p *placement) engineMove(hand []*engine.Card) engine.Move {
	c := p.card(hand)
	if c == nil {
		return engine.PassMove()
	}
	return engine.PlayMove(c, p.x, p.y, p.rotation, p.special)
}

// check explains why the aimed play would be refused, or returns nil.
func (p *placement) check(v match.View) error {
	c := p.card(v.Hand)
	if c == nil {
		return errEmptyHand
	}
	if p.special && v.SpecialPoints < c.SpecialCost {
		return fmt.Errorf("special attack needs %d points, you have %d", c.SpecialCost, v.SpecialPoints)
	}
	if rej := engine.IsLegal(v.Board, v.Player, p.engineMove(v.Hand)); rej != nil {
		return rej
	}
	return nil
}

// ghost returns the board preview for the current aim.
func (p *placement) ghost(v match.View) *ghost {
	if len(v.Hand) == 0 {
		return nil
	}
	return &ghost{move: p.engineMove(v.Hand), player: v.Player, legal: p.check(v) == nil}
}

// play returns the submission placing the aimed card.
func (p *placement) play(hand []*engine.Card) match.Submission {
	c := p.card(hand)
	return match.Play(c.Number, engine.Position{X: p.x, Y: p.y, Rotation: p.rotation}, p.special)
}

// pass returns the submission discarding the selected card.
func (p *placement) pass(hand []*engine.Card) match.Submission {
	return match.Pass(p.card(hand).Number)
}
