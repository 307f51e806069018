package builtin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"os"

	"warden/internal/tool"
)

type listFiles struct {
	cfg Config
}

func NewListFiles(cfg Config) tool.Executor {
	return &listFiles{cfg: cfg}
}

func (t *listFiles) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path := optionalString(call, "path", ".")
	resolved := t.cfg.resolvePath(path)

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return failure(call, fmt.Errorf("failed to list %s: %w", path, err)), nil
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var out strings.Builder
	dirs, files := 0, 0
	for _, entry := range entries {
		if entry.IsDir() {
			fmt.Fprintf(&out, "%s/\n", entry.Name())
			dirs++
			continue
		}
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(&out, "%s\n", entry.Name())
		} else {
			fmt.Fprintf(&out, "%s (%d bytes)\n", entry.Name(), info.Size())
		}
		files++
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  out.String(),
		Metadata: map[string]any{"path": resolved, "dirs": dirs, "files": files},
	}, nil
}

func (t *listFiles) Definition() tool.Definition {
	return tool.Definition{
		Name:        "list_files",
		Description: "List the entries of a directory",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "Directory path", Default: "."},
		},
	}
}
