// Package config loads warden settings from an optional YAML file layered
// over defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the core needs at construction time.
type Config struct {
	// SnapshotDir is where snapshot records are persisted.
	SnapshotDir string `yaml:"snapshot_dir"`
	// WorkDir anchors relative tool paths; empty means the process cwd.
	WorkDir string `yaml:"work_dir"`

	BashTimeoutSeconds     int  `yaml:"bash_timeout_seconds"`
	MaxOutputBytes         int  `yaml:"max_output_bytes"`
	KeepPerSession         int  `yaml:"keep_per_session"`
	ApprovalTimeoutSeconds int  `yaml:"approval_timeout_seconds"`
	Color                  bool `yaml:"color"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SnapshotDir:            "~/.warden/snapshots",
		BashTimeoutSeconds:     30,
		MaxOutputBytes:         1 << 20,
		KeepPerSession:         10,
		ApprovalTimeoutSeconds: 120,
		Color:                  true,
	}
}

// Load reads path and merges it over the defaults. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns ~/.warden/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".warden", "config.yaml")
}

// BashTimeout returns the shell timeout as a duration.
func (c Config) BashTimeout() time.Duration {
	if c.BashTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.BashTimeoutSeconds) * time.Second
}

// ApprovalTimeout returns the confirmation timeout as a duration.
func (c Config) ApprovalTimeout() time.Duration {
	if c.ApprovalTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ApprovalTimeoutSeconds) * time.Second
}
