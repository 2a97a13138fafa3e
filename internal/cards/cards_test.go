package cards

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/vovakirdan/inkgrid/internal/engine"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	if c.Len() != 24 {
		t.Errorf("Len() = %d, expected 24", c.Len())
	}

	numbers := c.Numbers()
	for i := 1; i < len(numbers); i++ {
		if numbers[i] <= numbers[i-1] {
			t.Fatalf("Numbers() not ascending: %v", numbers)
		}
	}

	ring, err := c.Card(18)
	if err != nil {
		t.Fatalf("Card(18): %v", err)
	}
	if ring.Name != "Ring" || ring.Size() != 9 || ring.Rarity != engine.RarityRare {
		t.Errorf("Card(18) = %s size %d rarity %s", ring.Name, ring.Size(), ring.Rarity)
	}
}

func TestUnknownCard(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	_, err = c.Card(999)
	if !errors.Is(err, ErrUnknownCard) {
		t.Errorf("Card(999) error = %v, expected ErrUnknownCard", err)
	}
}

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{
			name: "valid",
			data: `
- number: 5
  name: Block
  special_cost: 2
  grid: ["==", "=*"]
`,
		},
		{
			name: "wall in grid",
			data: `
- number: 5
  name: Block
  special_cost: 2
  grid: ["=#", "=*"]
`,
			wantErr: true,
		},
		{
			name: "unknown rarity",
			data: `
- number: 5
  name: Block
  rarity: legendary
  special_cost: 2
  grid: ["=*"]
`,
			wantErr: true,
		},
		{
			name: "empty pattern",
			data: `
- number: 5
  name: Blank
  special_cost: 2
  grid: ["...."]
`,
			wantErr: true,
		},
		{
			name: "missing number",
			data: `
- name: Nameless
  special_cost: 1
  grid: ["="]
`,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			list, err := ParseYAML([]byte(tc.data))
			if tc.wantErr {
				if err == nil {
					t.Error("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseYAML: %v", err)
			}
			if len(list) != 1 || list[0].Size() != 4 {
				t.Errorf("unexpected cards: %v", list)
			}
		})
	}
}

func TestLoadFSDuplicateNumber(t *testing.T) {
	fsys := fstest.MapFS{
		"set/a.yaml": {Data: []byte("- {number: 1, name: A, special_cost: 1, grid: [\"=\"]}\n")},
		"set/b.yml":  {Data: []byte("- {number: 1, name: B, special_cost: 1, grid: [\"*\"]}\n")},
		"set/notes":  {Data: []byte("ignored")},
	}
	if _, err := LoadFS(fsys, "set"); err == nil {
		t.Error("expected duplicate number error")
	}

	delete(fsys, "set/b.yml")
	c, err := LoadFS(fsys, "set")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", c.Len())
	}
}

func TestLoadDirMissing(t *testing.T) {
	if _, err := LoadDir(t.TempDir() + "/nope"); err == nil {
		t.Error("expected error for a missing directory")
	}
}
