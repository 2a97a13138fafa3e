// Package config provides YAML-based configuration loading for inkgrid,
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Limits shared with the match rules.
const (
	MaxTurnLimit = 12
	MaxDeckSize  = 15
)

// Config is the complete inkgrid configuration.
type Config struct {
	DataDir    string `yaml:"data_dir" env:"INKGRID_DATA_DIR"`
	DBPath     string `yaml:"db_path" env:"INKGRID_DB"`           // defaults to DataDir/inkgrid.db
	StagesDir  string `yaml:"stages_dir" env:"INKGRID_STAGES_DIR"` // empty uses the built-in stages
	CardsDir   string `yaml:"cards_dir" env:"INKGRID_CARDS_DIR"`   // empty uses the built-in cards
	ScriptsDir string `yaml:"scripts_dir" env:"INKGRID_SCRIPTS_DIR"`
	LogLevel   string `yaml:"log_level" env:"INKGRID_LOG_LEVEL"`

	Match MatchConfig `yaml:"match"`
	SSH   SSHConfig   `yaml:"ssh"`
	Web   WebConfig   `yaml:"web"`

	// Source is the file the configuration was read from, or "embedded".
	Source string `yaml:"-"`
}

// MatchConfig holds the rules and pacing of matches.
type MatchConfig struct {
	TurnLimit   int              `yaml:"turn_limit" env:"INKGRID_TURN_LIMIT"`
	HandSize    int              `yaml:"hand_size" env:"INKGRID_HAND_SIZE"`
	Deck        []int            `yaml:"deck" env:"INKGRID_DECK" envSeparator:","`
	Seed        int64            `yaml:"seed" env:"INKGRID_SEED"` // 0 picks a seed per match
	Difficulty  DifficultyPreset `yaml:"difficulty" env:"INKGRID_DIFFICULTY"`
	TurnTimeout time.Duration    `yaml:"turn_timeout" env:"INKGRID_TURN_TIMEOUT"`
	RoomTimeout time.Duration    `yaml:"room_timeout" env:"INKGRID_ROOM_TIMEOUT"`
}

// SSHConfig configures `inkgrid serve`.
type SSHConfig struct {
	Address     string        `yaml:"address" env:"INKGRID_SSH_ADDR"`
	HostKeyPath string        `yaml:"host_key_path" env:"INKGRID_SSH_HOST_KEY"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"INKGRID_SSH_IDLE_TIMEOUT"`
}

// WebConfig configures `inkgrid web`.
type WebConfig struct {
	Address string `yaml:"address" env:"INKGRID_WEB_ADDR"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:  "~/.inkgrid",
		LogLevel: "info",
		Match: MatchConfig{
			TurnLimit:   12,
			HandSize:    4,
			Deck:        []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
			Difficulty:  DifficultyNormal,
			TurnTimeout: 90 * time.Second,
			RoomTimeout: 5 * time.Minute,
		},
		SSH: SSHConfig{
			Address:     ":2222",
			HostKeyPath: "~/.inkgrid/ssh_host_ed25519",
			IdleTimeout: 30 * time.Minute,
		},
		Web: WebConfig{
			Address: ":8080",
		},
		Source: "embedded",
	}
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error
	m := c.Match
	if m.TurnLimit < 1 || m.TurnLimit > MaxTurnLimit {
		errs = append(errs, fmt.Errorf("match.turn_limit %d outside 1..%d", m.TurnLimit, MaxTurnLimit))
	}
	if m.HandSize < 1 {
		errs = append(errs, fmt.Errorf("match.hand_size %d must be positive", m.HandSize))
	}
	if need := m.HandSize + m.TurnLimit - 1; len(m.Deck) < need || len(m.Deck) > MaxDeckSize {
		errs = append(errs, fmt.Errorf("match.deck has %d cards, want %d..%d", len(m.Deck), need, MaxDeckSize))
	}
	seen := make(map[int]bool)
	for _, n := range m.Deck {
		if seen[n] {
			errs = append(errs, fmt.Errorf("match.deck lists card %d twice", n))
		}
		seen[n] = true
	}
	if _, err := StrategyFor(m.Difficulty); err != nil {
		errs = append(errs, err)
	}
	if m.TurnTimeout < 0 || m.RoomTimeout < 0 {
		errs = append(errs, errors.New("match timeouts must not be negative"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q: %w", c.LogLevel, err))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Database returns the SQLite path: DBPath, or inkgrid.db in DataDir.
func (c Config) Database() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "inkgrid.db")
}

// Level returns the parsed log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
