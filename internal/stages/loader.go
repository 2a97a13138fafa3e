package stages

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/vovakirdan/inkgrid/internal/stages/formats"
)

//go:embed data/*.yaml
var defaultStages embed.FS

// Loader handles loading stages from a directory tree.
type Loader struct {
	fsys fs.FS
	root string
}

// NewLoader creates a loader for the stage files under dir. An empty dir
// uses the stages built into the binary.
func NewLoader(dir string) *Loader {
	if dir == "" {
		return &Loader{fsys: defaultStages, root: "data"}
	}
	return &Loader{fsys: os.DirFS(dir), root: "."}
}

// NewFSLoader creates a loader over an arbitrary filesystem.
func NewFSLoader(fsys fs.FS, root string) *Loader {
	return &Loader{fsys: fsys, root: root}
}

// LoadAll recursively scans and loads all stage files.
// Returns stages sorted by number. Duplicate numbers are an error.
func (l *Loader) LoadAll() ([]*Stage, error) {
	var stages []*Stage

	err := fs.WalkDir(l.fsys, l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedExtension(strings.ToLower(path.Ext(p))) {
			return nil
		}

		st, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		stages = append(stages, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("stages: walking %s: %w", l.root, err)
	}

	sort.Slice(stages, func(i, j int) bool {
		return stages[i].Number < stages[j].Number
	})
	for i := 1; i < len(stages); i++ {
		if stages[i].Number == stages[i-1].Number {
			return nil, fmt.Errorf("stages: number %d used by %s and %s",
				stages[i].Number, stages[i-1].FilePath, stages[i].FilePath)
		}
	}

	return stages, nil
}

// LoadFile loads and validates a single stage file.
func (l *Loader) LoadFile(p string) (*Stage, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", p, err)
	}

	parsed, err := formats.ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("parsing file %s: %w", p, err)
	}

	st, err := newStage(parsed, p)
	if err != nil {
		return nil, fmt.Errorf("file %s: %w", p, err)
	}
	return st, nil
}

// ByNumber loads the stage with the given number.
func (l *Loader) ByNumber(number int) (*Stage, error) {
	stages, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	for _, st := range stages {
		if st.Number == number {
			return st, nil
		}
	}
	return nil, fmt.Errorf("stages: stage %d: %w", number, ErrUnknownStage)
}

// isSupportedExtension checks if extension is supported.
func isSupportedExtension(ext string) bool {
	for _, supported := range formats.FormatExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}
