// Package config resolves rebasekit settings.
//
// Values come from three layers, later ones winning: built-in defaults, an
// optional YAML file, and REBASEKIT_* environment variables. The CLI applies
// its own flags on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = ".rebasekit.yaml"

const (
	DefaultDBPath = ".rebasekit/rebasekit.db"
	DefaultBranch = "main"
)

// Environment variables.
const (
	EnvConfig    = "REBASEKIT_CONFIG"
	EnvDB        = "REBASEKIT_DB"
	EnvSession   = "REBASEKIT_SESSION"
	EnvBranch    = "REBASEKIT_BRANCH"
	EnvVerbosity = "REBASEKIT_V"
)

// Config holds resolved settings.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db" json:"db"`
	// Session identifies the writer of new commits.
	Session string `yaml:"session" json:"session"`
	// DefaultBranch is used when a command is given no branch.
	DefaultBranch string `yaml:"branch" json:"branch"`
	// Verbosity is the glog -v level.
	Verbosity int `yaml:"verbosity" json:"verbosity"`

	// Source is the file the config was read from, if any.
	Source string `yaml:"-" json:"source,omitempty"`
}

// Default returns the built-in defaults with a fresh random session.
func Default() *Config {
	return &Config{
		DBPath:        DefaultDBPath,
		Session:       uuid.NewString(),
		DefaultBranch: DefaultBranch,
	}
}

// Load resolves the config for a process running in dir. The file named by
// REBASEKIT_CONFIG must exist; the default .rebasekit.yaml is optional.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := os.Getenv(EnvConfig)
	required := path != ""
	if !required {
		path = filepath.Join(dir, FileName)
	}
	if err := cfg.mergeFile(path); err != nil {
		if required || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if cfg.Source != "" && !filepath.IsAbs(cfg.DBPath) && os.Getenv(EnvDB) == "" {
		// Relative db paths in a file are relative to that file.
		cfg.DBPath = filepath.Join(filepath.Dir(cfg.Source), cfg.DBPath)
	}
	return cfg, cfg.Validate()
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if file.DBPath != "" {
		c.DBPath = file.DBPath
	}
	if file.Session != "" {
		c.Session = file.Session
	}
	if file.DefaultBranch != "" {
		c.DefaultBranch = file.DefaultBranch
	}
	if file.Verbosity != 0 {
		c.Verbosity = file.Verbosity
	}
	c.Source = path
	return nil
}

func (c *Config) mergeEnv() error {
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvSession); v != "" {
		c.Session = v
	}
	if v := os.Getenv(EnvBranch); v != "" {
		c.DefaultBranch = v
	}
	if v := os.Getenv(EnvVerbosity); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVerbosity, err)
		}
		c.Verbosity = n
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("config: db path is empty")
	case c.DefaultBranch == "":
		return errors.New("config: default branch is empty")
	case c.Verbosity < 0:
		return fmt.Errorf("config: negative verbosity %d", c.Verbosity)
	}
	return nil
}

// Write saves c as YAML to path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
