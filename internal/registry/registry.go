// Package registry provides a global registry of automated players.
// Strategies register themselves in init() functions, allowing the CLI,
// the TUI and the web hub to seat bots by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/inkgrid/internal/match"
)

// Strategy picks a move for one player each turn.
// Implementations must only read the view; the board is a private copy.
type Strategy interface {
	// Name returns the registered name (e.g., "greedy").
	Name() string

	// Choose returns the submission for the view's player.
	Choose(v match.View) match.Submission
}

// StrategyInfo contains metadata about a registered strategy.
type StrategyInfo struct {
	Name        string
	Description string
}

// Factory creates a strategy. seed drives any randomness so matches can
// be replayed.
type Factory func(seed int64) Strategy

type entry struct {
	factory     Factory
	description string
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a strategy factory to the registry.
// Panics if a strategy with the same name is already registered.
func Register(name, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[name]; exists {
		panic(fmt.Sprintf("registry: strategy %q already registered", name))
	}
	entries[name] = entry{factory: f, description: description}
}

// List returns all registered strategies, sorted by name.
func List() []StrategyInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]StrategyInfo, 0, len(entries))
	for name, e := range entries {
		result = append(result, StrategyInfo{Name: name, Description: e.description})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Create instantiates a strategy by name.
// Returns an error if the name is not registered.
func Create(name string, seed int64) (Strategy, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[name]
	if !ok {
		return nil, fmt.Errorf("registry: unknown strategy %q", name)
	}

	return e.factory(seed), nil
}

// Exists checks if a strategy with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[name]
	return ok
}
