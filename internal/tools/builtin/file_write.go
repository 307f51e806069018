package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"warden/internal/snapshot"
	"warden/internal/tool"
)

type fileWrite struct {
	cfg Config
}

func NewFileWrite(cfg Config) tool.Executor {
	return &fileWrite{cfg: cfg}
}

func (t *fileWrite) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path, err := stringArg(call, "path")
	if err != nil {
		return failure(call, err), nil
	}
	content, ok := call.Arguments["content"].(string)
	if !ok {
		return failure(call, fmt.Errorf("missing 'content'")), nil
	}

	resolved := t.cfg.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return failure(call, fmt.Errorf("failed to create directories: %w", err)), nil
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return failure(call, fmt.Errorf("failed to write file: %w", err)), nil
	}

	return &tool.Result{
		CallID:  call.ID,
		Content: fmt.Sprintf("Wrote %d bytes to %s", len(content), path),
		Metadata: map[string]any{
			"path":           resolved,
			"bytes_written":  len(content),
			"content_sha256": snapshot.HashContent(content),
		},
	}, nil
}

func (t *fileWrite) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_write",
		Description: "Write content to a file, creating parent directories as needed",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "File path", Required: true},
			{Name: "content", Type: "string", Description: "Content to write", Required: true},
		},
		Dangerous:     true,
		NeedsSnapshot: true,
		PathParams:    []string{"path"},
	}
}
