// Package cards loads card definitions and looks them up by number.
package cards

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/inkgrid/internal/engine"
)

// ErrUnknownCard is returned when a card number is not in the catalog.
var ErrUnknownCard = errors.New("unknown card")

// Catalog is an immutable set of cards keyed by card number.
type Catalog struct {
	byNumber map[int]*engine.Card
	ordered  []*engine.Card
}

// NewCatalog builds a catalog. Card numbers must be unique.
func NewCatalog(list []*engine.Card) (*Catalog, error) {
	c := &Catalog{byNumber: make(map[int]*engine.Card, len(list))}
	for _, card := range list {
		if _, dup := c.byNumber[card.Number]; dup {
			return nil, fmt.Errorf("cards: duplicate card number %d", card.Number)
		}
		c.byNumber[card.Number] = card
		c.ordered = append(c.ordered, card)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Number < c.ordered[j].Number
	})
	return c, nil
}

// Card returns the card with the given number.
func (c *Catalog) Card(number int) (*engine.Card, error) {
	card, ok := c.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("cards: card %d: %w", number, ErrUnknownCard)
	}
	return card, nil
}

// All returns every card sorted by number.
func (c *Catalog) All() []*engine.Card {
	out := make([]*engine.Card, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Numbers returns every card number in ascending order.
func (c *Catalog) Numbers() []int {
	out := make([]int, len(c.ordered))
	for i, card := range c.ordered {
		out[i] = card.Number
	}
	return out
}

// Len returns the number of cards.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
