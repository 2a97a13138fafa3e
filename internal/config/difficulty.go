package config

import "fmt"

// DifficultyPreset names how strong the automated opponents of a local
// match are.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
)

// Presets lists the difficulty presets from easiest.
var Presets = []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard}

// StrategyFor returns the registered strategy name behind a preset.
func StrategyFor(preset DifficultyPreset) (string, error) {
	switch preset {
	case DifficultyEasy:
		return "random", nil
	case DifficultyNormal:
		return "lua:spread", nil
	case DifficultyHard:
		return "greedy", nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (want easy, normal or hard)", preset)
	}
}
