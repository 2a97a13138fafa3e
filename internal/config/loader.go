package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration.
// Search order: customPath -> ~/.inkgrid/config.yaml -> ./configs/inkgrid.yaml -> embedded default.
// Keys missing from the file keep their built-in values. INKGRID_*
// environment variables are applied on top, then ~ is expanded in paths
// and the result is validated.
func Load(customPath string) (Config, error) {
	cfg := Default()

	data, source, err := find(customPath)
	if err != nil {
		return cfg, err
	}
	if err := decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: cannot parse %s: %w", source, err)
	}
	cfg.Source = source

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func find(customPath string) ([]byte, string, error) {
	// A custom path must exist.
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, "", fmt.Errorf("config: cannot read %s: %w", customPath, err)
		}
		return data, customPath, nil
	}

	if p := userConfigPath(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			return data, p, nil
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", "inkgrid.yaml")); err == nil {
		return data, filepath.Join("configs", "inkgrid.yaml"), nil
	}

	return defaultYAML, "embedded", nil
}

// decode rejects unknown keys so typos do not silently fall back to defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// userConfigPath returns the path to the user config file, or empty if home is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".inkgrid", "config.yaml")
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.DataDir, &c.DBPath, &c.StagesDir, &c.CardsDir, &c.ScriptsDir, &c.SSH.HostKeyPath} {
		expanded, err := ExpandHome(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}
