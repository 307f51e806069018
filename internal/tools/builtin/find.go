package builtin

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"warden/internal/tool"
)

// maxFindResults caps the walk so a broad pattern cannot flood the caller.
const maxFindResults = 500

type find struct {
	cfg Config
}

func NewFind(cfg Config) tool.Executor {
	return &find{cfg: cfg}
}

func (t *find) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	pattern, err := stringArg(call, "pattern")
	if err != nil {
		return failure(call, err), nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return failure(call, fmt.Errorf("invalid pattern: %w", err)), nil
	}
	root := t.cfg.resolvePath(optionalString(call, "path", "."))

	var matches []string
	truncated := false
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() && skipDir(entry.Name()) {
			return filepath.SkipDir
		}
		if entry.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(pattern, entry.Name()); ok {
			matches = append(matches, path)
			if len(matches) >= maxFindResults {
				truncated = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if walkErr != nil {
		return failure(call, walkErr), nil
	}

	content := strings.Join(matches, "\n")
	if truncated {
		content += fmt.Sprintf("\n... (stopped after %d matches)", maxFindResults)
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  content,
		Metadata: map[string]any{"matches": len(matches), "truncated": truncated},
	}, nil
}

func (t *find) Definition() tool.Definition {
	return tool.Definition{
		Name:        "find",
		Description: "Find files whose name matches a glob pattern",
		Params: []tool.ParamSpec{
			{Name: "pattern", Type: "string", Description: "Glob pattern matched against file names", Required: true},
			{Name: "path", Type: "string", Description: "Directory to search", Default: "."},
		},
	}
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor", ".idea":
		return true
	}
	return false
}
