package builtin

import (
	"context"
	"fmt"
	"os"
	"strings"

	"warden/internal/tool"
)

// maxReadBytes guards against dumping huge files into the conversation.
const maxReadBytes = 512 * 1024

type fileRead struct {
	cfg Config
}

func NewFileRead(cfg Config) tool.Executor {
	return &fileRead{cfg: cfg}
}

func (t *fileRead) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path, err := stringArg(call, "path")
	if err != nil {
		return failure(call, err), nil
	}
	resolved := t.cfg.resolvePath(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return failure(call, fmt.Errorf("cannot read %s: %w", path, err)), nil
	}
	if info.IsDir() {
		return failure(call, fmt.Errorf("%s is a directory", path)), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return failure(call, fmt.Errorf("failed to read file: %w", err)), nil
	}

	content := string(data)
	truncated := false
	if len(content) > maxReadBytes {
		content = content[:maxReadBytes]
		truncated = true
	}

	return &tool.Result{
		CallID:  call.ID,
		Content: content,
		Metadata: map[string]any{
			"path":      resolved,
			"size":      info.Size(),
			"lines":     strings.Count(content, "\n") + 1,
			"truncated": truncated,
		},
	}, nil
}

func (t *fileRead) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_read",
		Description: "Read the content of a file",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "File path", Required: true},
		},
	}
}
