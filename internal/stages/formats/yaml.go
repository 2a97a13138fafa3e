// Package formats parses stage files.
package formats

import (
	"fmt"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"gopkg.in/yaml.v3"
)

// YAMLStage represents the YAML structure of a stage file.
type YAMLStage struct {
	Number int           `yaml:"number"`
	Name   string        `yaml:"name"`
	Rows   []string      `yaml:"rows"`
	Starts [][]YAMLCoord `yaml:"starts"` // tier 0 is the two-player layout
}

// YAMLCoord is a single board coordinate.
type YAMLCoord struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Stage is a parsed stage file, not yet validated.
type Stage struct {
	Number int
	Name   string
	Rows   []string
	Starts [][]engine.Coord
}

// ParseYAML parses a YAML stage file.
func ParseYAML(data []byte) (Stage, error) {
	var ys YAMLStage
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return Stage{}, fmt.Errorf("yaml unmarshal: %w", err)
	}

	st := Stage{
		Number: ys.Number,
		Name:   ys.Name,
		Rows:   ys.Rows,
		Starts: make([][]engine.Coord, len(ys.Starts)),
	}
	for i, tier := range ys.Starts {
		for _, c := range tier {
			st.Starts[i] = append(st.Starts[i], engine.C(c.X, c.Y))
		}
	}
	return st, nil
}

// FormatExtensions returns supported file extensions.
func FormatExtensions() []string {
	return []string{".yaml", ".yml"}
}
