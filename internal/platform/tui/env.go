package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/inkgrid/internal/cards"
	"github.com/vovakirdan/inkgrid/internal/config"
	"github.com/vovakirdan/inkgrid/internal/match"
	"github.com/vovakirdan/inkgrid/internal/multiplayer"
	"github.com/vovakirdan/inkgrid/internal/registry"
	"github.com/vovakirdan/inkgrid/internal/stages"
	"github.com/vovakirdan/inkgrid/internal/storage"
)

// Env holds what every screen of a session needs.
type Env struct {
	Stages  *stages.Loader
	Catalog *cards.Catalog
	Match   config.MatchConfig

	Store       *storage.Store           // nil disables history and saving
	Coordinator *multiplayer.Coordinator // nil disables online play
	Logger      *log.Logger              // nil discards match logs
}

// Setup is a match configuration picked in the menu.
type Setup struct {
	Stage      int
	Opponents  int
	Difficulty config.DifficultyPreset
}

// newLocalMatch builds a match between the user in seat 0 and one bot
// per opponent.
func newLocalMatch(env Env, setup Setup, username string) (*match.Match, []registry.Strategy, error) {
	stage, err := env.Stages.ByNumber(setup.Stage)
	if err != nil {
		return nil, nil, err
	}
	strategy, err := config.StrategyFor(setup.Difficulty)
	if err != nil {
		return nil, nil, err
	}

	opts := match.Options{
		TurnLimit: env.Match.TurnLimit,
		HandSize:  env.Match.HandSize,
		Seed:      env.Match.Seed,
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	seats := []match.Seat{{Name: username, Deck: env.Match.Deck}}
	bots := make([]registry.Strategy, 0, setup.Opponents)
	for i := range setup.Opponents {
		bot, err := registry.Create(strategy, opts.Seed+int64(i)+1)
		if err != nil {
			return nil, nil, err
		}
		bots = append(bots, bot)
		seats = append(seats, match.Seat{Name: fmt.Sprintf("cpu%d", i+1), Deck: env.Match.Deck})
	}

	m, err := match.New(stage, env.Catalog, seats, opts, env.Logger)
	if err != nil {
		return nil, nil, err
	}
	return m, bots, nil
}
