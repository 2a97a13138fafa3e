// Package stages loads stage layouts and builds starting boards from them.
package stages

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"github.com/vovakirdan/inkgrid/internal/stages/formats"
)

// ErrUnknownStage is returned when no stage has the requested number.
var ErrUnknownStage = errors.New("unknown stage")

// Stage is a validated stage definition.
type Stage struct {
	Number   int
	Name     string
	FilePath string

	layout *engine.Board // walls and out-of-stage only, starts not placed
}

// newStage validates a parsed stage file.
func newStage(parsed formats.Stage, path string) (*Stage, error) {
	if parsed.Number <= 0 {
		return nil, fmt.Errorf("stage %q: number must be positive", parsed.Name)
	}
	layout, err := engine.ParseBoard(parsed.Rows)
	if err != nil {
		return nil, fmt.Errorf("stage %d: %w", parsed.Number, err)
	}
	if n := layout.Count(engine.Space.IsOwned); n > 0 {
		return nil, fmt.Errorf("stage %d: layout holds %d owned spaces", parsed.Number, n)
	}
	if len(parsed.Starts) == 0 {
		return nil, fmt.Errorf("stage %d: no start layout", parsed.Number)
	}
	for tier, starts := range parsed.Starts {
		players := tier + 2
		if players > engine.MaxPlayers {
			return nil, fmt.Errorf("stage %d: start tier for %d players exceeds %d", parsed.Number, players, engine.MaxPlayers)
		}
		if len(starts) != players {
			return nil, fmt.Errorf("stage %d: %d-player tier has %d starts", parsed.Number, players, len(starts))
		}
		for _, at := range starts {
			if got := layout.Get(at); got != engine.Empty {
				return nil, fmt.Errorf("stage %d: start %v is %v, want empty", parsed.Number, at, got)
			}
		}
	}
	layout.StartSpaces = parsed.Starts

	return &Stage{
		Number:   parsed.Number,
		Name:     parsed.Name,
		FilePath: path,
		layout:   layout,
	}, nil
}

// MaxPlayers returns the largest player count the stage has starts for.
func (s *Stage) MaxPlayers() int {
	return len(s.layout.StartSpaces) + 1
}

// Size returns the board dimensions.
func (s *Stage) Size() (w, h int) {
	return s.layout.W, s.layout.H
}

// NewBoard returns a fresh board for the given player count with each
// player's inactive special space on its start.
func (s *Stage) NewBoard(players int) (*engine.Board, error) {
	b := s.layout.Clone()
	if err := b.PlaceStarts(players); err != nil {
		return nil, fmt.Errorf("stages: stage %d: %w", s.Number, err)
	}
	return b, nil
}

// Layout returns a copy of the empty stage without starts.
func (s *Stage) Layout() *engine.Board {
	return s.layout.Clone()
}
