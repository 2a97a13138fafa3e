package match

import (
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/engine"
)

// Submission is the wire form of one player's move for a turn.
// For a pass, CardNumber names the card discarded from the hand.
type Submission struct {
	CardNumber      int  `json:"cardNumber"`
	IsPass          bool `json:"isPass"`
	X               int  `json:"x"`
	Y               int  `json:"y"`
	Rotation        int  `json:"rotation"`
	IsSpecialAttack bool `json:"isSpecialAttack"`
}

// Move converts the submission to an engine move using catalog.
func (s Submission) Move(catalog *cards.Catalog) (engine.Move, error) {
	if s.IsPass {
		return engine.PassMove(), nil
	}
	card, err := catalog.Card(s.CardNumber)
	if err != nil {
		return engine.Move{}, fmt.Errorf("match: submission: %w", err)
	}
	return engine.PlayMove(card, s.X, s.Y, s.Rotation, s.IsSpecialAttack), nil
}

// Pass returns a submission that passes and discards card.
func Pass(card int) Submission {
	return Submission{CardNumber: card, IsPass: true}
}

// Play returns a submission placing card at pos.
func Play(card int, pos engine.Position, special bool) Submission {
	return Submission{
		CardNumber:      card,
		X:               pos.X,
		Y:               pos.Y,
		Rotation:        pos.Rotation,
		IsSpecialAttack: special,
	}
}
