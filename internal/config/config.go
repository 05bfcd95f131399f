// Package config loads trr settings from .trr.yaml and TRR_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/metcalfc/trr/internal/disguise"
	"github.com/metcalfc/trr/internal/session"
	"github.com/metcalfc/trr/internal/state"
)

// Backends accepted by state.backend.
const (
	BackendJSON   = "json"
	BackendDiskv  = "diskv"
	BackendMemory = "memory"
)

// Config holds all trr settings.
type Config struct {
	Disguise DisguiseConfig `mapstructure:"disguise"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	State    StateConfig    `mapstructure:"state"`
}

// DisguiseConfig controls synthetic log lines.
type DisguiseConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Ratio   float64 `mapstructure:"ratio"`
}

func (d DisguiseConfig) Validate() error {
	if d.Ratio < 0 || d.Ratio > 1 {
		return fmt.Errorf("disguise.ratio must be between 0 and 1, got %v", d.Ratio)
	}
	return nil
}

// Options converts the settings for the mixer.
func (d DisguiseConfig) Options() disguise.Options {
	return disguise.Options{Enabled: d.Enabled, Ratio: d.Ratio}
}

// ReaderConfig controls paging.
type ReaderConfig struct {
	LinesPerPage int `mapstructure:"lines_per_page"`
}

func (r ReaderConfig) Validate() error {
	if r.LinesPerPage <= 0 {
		return fmt.Errorf("reader.lines_per_page must be > 0, got %d", r.LinesPerPage)
	}
	return nil
}

// StateConfig selects where reading progress is kept.
type StateConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
}

func (s StateConfig) Validate() error {
	switch s.Backend {
	case BackendJSON, BackendDiskv, BackendMemory:
		return nil
	}
	return fmt.Errorf("state.backend must be one of %s, %s, %s; got %q", BackendJSON, BackendDiskv, BackendMemory, s.Backend)
}

// Dir returns the state directory with ~ expanded. Empty means the XDG
// default.
func (s StateConfig) Dir() (string, error) {
	if s.Path == "" {
		return state.DefaultDir(), nil
	}
	return homedir.Expand(s.Path)
}

// OpenStore opens the configured progress store.
func (s StateConfig) OpenStore() (state.Store, error) {
	if s.Backend == BackendMemory {
		return state.NewMemoryStore(), nil
	}
	dir, err := s.Dir()
	if err != nil {
		return nil, fmt.Errorf("state.path: %w", err)
	}
	switch s.Backend {
	case BackendDiskv:
		return state.NewDiskvStore(dir)
	case BackendJSON:
		return state.NewJSONStore(dir)
	}
	return nil, s.Validate()
}

// Validate checks every section.
func (c *Config) Validate() error {
	return errors.Join(c.Disguise.Validate(), c.Reader.Validate(), c.State.Validate())
}

// Load reads the config file at path, or searches $TRR_CONFIG_PATH, the
// working directory and the home directory for .trr.yaml when path is
// empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("disguise.enabled", false)
	v.SetDefault("disguise.ratio", 0.3)
	v.SetDefault("reader.lines_per_page", session.DefaultLinesPerPage)
	v.SetDefault("state.backend", BackendJSON)
	v.SetDefault("state.path", "")

	if path == "" {
		v.SetConfigName(".trr") // .yaml is implicit
		v.SetConfigType("yaml")
		if override := os.Getenv("TRR_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
		v.AddConfigPath("./")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("TRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
