package tool

import (
	"context"
	"time"
)

// ParamSpec describes a single tool parameter.
type ParamSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "number", "boolean"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
}

// Definition describes a tool: its parameters and how the executor must
// treat it. Definitions are immutable once registered.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Params      []ParamSpec `json:"params"`

	// Dangerous tools need explicit confirmation outside auto-accept mode.
	Dangerous bool `json:"dangerous"`
	// NeedsSnapshot tools mutate file state and get a pre-execution capture.
	NeedsSnapshot bool `json:"needs_snapshot"`
	// PathParams names the parameters whose values are filesystem paths the
	// tool targets; the executor snapshots those paths before execution.
	PathParams []string `json:"path_params,omitempty"`
}

// CallRequest represents a request to execute a tool.
type CallRequest struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
	SessionID string         `json:"session_id,omitempty"`
}

// Result is what an individual tool hands back to the executor.
type Result struct {
	CallID   string         `json:"call_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Err      error          `json:"-"`
}

// CallResult is the orchestrator-level outcome returned to callers. It is
// created once per request and never mutated afterward.
type CallResult struct {
	Success     bool           `json:"success"`
	Content     string         `json:"content,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	SnapshotID  string         `json:"snapshot_id,omitempty"`
	Error       string         `json:"error,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Executor runs a single tool call.
type Executor interface {
	Execute(ctx context.Context, call CallRequest) (*Result, error)
	Definition() Definition
}

// TargetPaths extracts the filesystem paths a call targets, following the
// definition's PathParams. Missing or non-string arguments are skipped.
func (d Definition) TargetPaths(args map[string]any) []string {
	if len(d.PathParams) == 0 {
		return nil
	}
	paths := make([]string, 0, len(d.PathParams))
	for _, param := range d.PathParams {
		if value, ok := args[param].(string); ok && value != "" {
			paths = append(paths, value)
		}
	}
	return paths
}
