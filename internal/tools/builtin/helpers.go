// Package builtin implements the underlying file, search, git, and shell
// operations behind the tool catalog.
package builtin

import (
	"fmt"
	"path/filepath"
	"time"

	"warden/internal/tool"
)

// Config carries the shared settings every builtin needs.
type Config struct {
	// WorkDir anchors relative paths in tool arguments.
	WorkDir string
	// BashTimeout bounds shell execution; zero means the 30s default.
	BashTimeout time.Duration
	// MaxOutputBytes caps captured shell output; zero means the 1MB default.
	MaxOutputBytes int
}

const (
	defaultBashTimeout    = 30 * time.Second
	defaultMaxOutputBytes = 1 << 20
)

func (c Config) bashTimeout() time.Duration {
	if c.BashTimeout > 0 {
		return c.BashTimeout
	}
	return defaultBashTimeout
}

func (c Config) maxOutputBytes() int {
	if c.MaxOutputBytes > 0 {
		return c.MaxOutputBytes
	}
	return defaultMaxOutputBytes
}

// resolvePath anchors relative paths at the configured working directory.
func (c Config) resolvePath(path string) string {
	if filepath.IsAbs(path) || c.WorkDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(c.WorkDir, path)
}

// stringArg coerces a required string argument.
func stringArg(call tool.CallRequest, name string) (string, error) {
	value, ok := call.Arguments[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing or invalid '%s'", name)
	}
	return value, nil
}

// optionalString returns the argument when present, else fallback.
func optionalString(call tool.CallRequest, name, fallback string) string {
	if value, ok := call.Arguments[name].(string); ok && value != "" {
		return value
	}
	return fallback
}

// optionalBool returns the argument when present, else fallback.
func optionalBool(call tool.CallRequest, name string, fallback bool) bool {
	if value, ok := call.Arguments[name].(bool); ok {
		return value
	}
	return fallback
}

// optionalNumber returns the argument as a float64 when present. JSON
// decoding hands numbers over as float64.
func optionalNumber(call tool.CallRequest, name string, fallback float64) float64 {
	switch value := call.Arguments[name].(type) {
	case float64:
		return value
	case int:
		return float64(value)
	default:
		return fallback
	}
}

// failure is shorthand for an in-band tool error result.
func failure(call tool.CallRequest, err error) *tool.Result {
	return &tool.Result{CallID: call.ID, Err: err}
}
