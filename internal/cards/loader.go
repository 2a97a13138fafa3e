package cards

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/inkgrid/internal/engine"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultCards embed.FS

// YAMLCard is the on-disk form of one card.
type YAMLCard struct {
	Number      int      `yaml:"number"`
	Name        string   `yaml:"name"`
	Rarity      string   `yaml:"rarity,omitempty"`
	SpecialCost int      `yaml:"special_cost"`
	Grid        []string `yaml:"grid"`
}

// Default returns the catalog built into the binary.
func Default() (*Catalog, error) {
	return LoadFS(defaultCards, "data")
}

// LoadDir loads every card file under dir. An empty dir means the built-in
// catalog.
func LoadDir(dir string) (*Catalog, error) {
	if dir == "" {
		return Default()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("cards: cannot open %s: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir), ".")
}

// LoadFS walks root inside fsys and parses every .yaml/.yml file. Files are
// read in lexical order so duplicate errors are deterministic.
func LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(path.Ext(p)) {
		case ".yaml", ".yml":
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cards: walking %s: %w", root, err)
	}
	sort.Strings(files)

	var all []*engine.Card
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("cards: reading %s: %w", name, err)
		}
		list, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("cards: parsing %s: %w", name, err)
		}
		all = append(all, list...)
	}
	return NewCatalog(all)
}

// ParseYAML parses a YAML list of cards.
func ParseYAML(data []byte) ([]*engine.Card, error) {
	var raw []YAMLCard
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}

	out := make([]*engine.Card, 0, len(raw))
	for _, yc := range raw {
		card, err := yc.toCard()
		if err != nil {
			return nil, err
		}
		out = append(out, card)
	}
	return out, nil
}

func (yc YAMLCard) toCard() (*engine.Card, error) {
	if yc.Number <= 0 {
		return nil, fmt.Errorf("card %q: number must be positive", yc.Name)
	}
	rarity, err := parseRarity(yc.Rarity)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", yc.Number, err)
	}
	grid, err := engine.ParsePattern(yc.Grid)
	if err != nil {
		return nil, fmt.Errorf("card %d: %w", yc.Number, err)
	}
	return engine.NewCard(yc.Number, yc.Name, rarity, yc.SpecialCost, grid)
}

func parseRarity(s string) (engine.Rarity, error) {
	switch engine.Rarity(strings.ToLower(s)) {
	case "", engine.RarityCommon:
		return engine.RarityCommon, nil
	case engine.RarityRare:
		return engine.RarityRare, nil
	case engine.RarityFresh:
		return engine.RarityFresh, nil
	default:
		return "", fmt.Errorf("unknown rarity %q", s)
	}
}
