package bots

import (
	"math/rand"

	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/registry"
)

func init() {
	registry.Register("pass", "always passes, discarding its smallest card", func(int64) registry.Strategy {
		return passer{}
	})
	registry.Register("random", "plays a uniformly random legal move", func(seed int64) registry.Strategy {
		return &randomBot{rng: rand.New(rand.NewSource(seed))}
	})
	registry.Register("greedy", "maximises territory swing each turn", func(int64) registry.Strategy {
		return greedy{}
	})
}

type passer struct{}

func (passer) Name() string { return "pass" }

func (passer) Choose(v match.View) match.Submission {
	return match.Pass(cheapestDiscard(v.Hand))
}

type randomBot struct {
	rng *rand.Rand
}

func (*randomBot) Name() string { return "random" }

func (b *randomBot) Choose(v match.View) match.Submission {
	opts := Options(v)
	if len(opts) == 0 {
		return match.Pass(v.Hand[b.rng.Intn(len(v.Hand))].Number)
	}
	return opts[b.rng.Intn(len(opts))].Submission()
}

// greedy takes the option with the best territory swing. A special attack
// must beat the best normal play by more than its cost, except in the
// last three turns when unspent points are worthless.
type greedy struct{}

func (greedy) Name() string { return "greedy" }

func (greedy) Choose(v match.View) match.Submission {
	opts := Options(v)
	var best *Option
	bestValue := 0
	for i, o := range opts {
		value := o.Gain*4 + o.Card.Size()
		if o.Special && v.TurnsLeft() > 3 {
			value -= o.Card.SpecialCost * 4
		}
		if best == nil || value > bestValue {
			best, bestValue = &opts[i], value
		}
	}
	if best == nil {
		return match.Pass(cheapestDiscard(v.Hand))
	}
	return best.Submission()
}
