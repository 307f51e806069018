package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"warden/internal/tool"
)

type fileDelete struct {
	cfg Config
}

func NewFileDelete(cfg Config) tool.Executor {
	return &fileDelete{cfg: cfg}
}

func (t *fileDelete) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path, err := stringArg(call, "path")
	if err != nil {
		return failure(call, err), nil
	}
	resolved := t.cfg.resolvePath(path)

	info, err := os.Stat(resolved)
	if err != nil {
		return failure(call, fmt.Errorf("cannot delete %s: %w", path, err)), nil
	}

	if info.IsDir() {
		if !optionalBool(call, "recursive", false) {
			return failure(call, fmt.Errorf("%s is a directory; pass recursive=true to delete it", path)), nil
		}
		if err := os.RemoveAll(resolved); err != nil {
			return failure(call, fmt.Errorf("failed to delete directory: %w", err)), nil
		}
	} else if err := os.Remove(resolved); err != nil {
		return failure(call, fmt.Errorf("failed to delete file: %w", err)), nil
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  fmt.Sprintf("Deleted %s", path),
		Metadata: map[string]any{"path": resolved, "was_dir": info.IsDir()},
	}, nil
}

func (t *fileDelete) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_delete",
		Description: "Delete a file, or a directory when recursive=true",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "Path to delete", Required: true},
			{Name: "recursive", Type: "boolean", Description: "Delete directories recursively", Default: false},
		},
		Dangerous:     true,
		NeedsSnapshot: true,
		PathParams:    []string{"path"},
	}
}

type fileMove struct {
	cfg Config
}

func NewFileMove(cfg Config) tool.Executor {
	return &fileMove{cfg: cfg}
}

func (t *fileMove) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	source, err := stringArg(call, "source")
	if err != nil {
		return failure(call, err), nil
	}
	destination, err := stringArg(call, "destination")
	if err != nil {
		return failure(call, err), nil
	}

	from := t.cfg.resolvePath(source)
	to := t.cfg.resolvePath(destination)
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return failure(call, fmt.Errorf("failed to create directories: %w", err)), nil
	}
	if err := os.Rename(from, to); err != nil {
		return failure(call, fmt.Errorf("failed to move %s: %w", source, err)), nil
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  fmt.Sprintf("Moved %s to %s", source, destination),
		Metadata: map[string]any{"source": from, "destination": to},
	}, nil
}

func (t *fileMove) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_move",
		Description: "Move or rename a file",
		Params: []tool.ParamSpec{
			{Name: "source", Type: "string", Description: "Current path", Required: true},
			{Name: "destination", Type: "string", Description: "New path", Required: true},
		},
		Dangerous:     true,
		NeedsSnapshot: true,
		PathParams:    []string{"source", "destination"},
	}
}

type fileCopy struct {
	cfg Config
}

func NewFileCopy(cfg Config) tool.Executor {
	return &fileCopy{cfg: cfg}
}

func (t *fileCopy) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	source, err := stringArg(call, "source")
	if err != nil {
		return failure(call, err), nil
	}
	destination, err := stringArg(call, "destination")
	if err != nil {
		return failure(call, err), nil
	}

	from := t.cfg.resolvePath(source)
	to := t.cfg.resolvePath(destination)

	in, err := os.Open(from)
	if err != nil {
		return failure(call, fmt.Errorf("failed to open %s: %w", source, err)), nil
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return failure(call, fmt.Errorf("failed to create directories: %w", err)), nil
	}
	out, err := os.Create(to)
	if err != nil {
		return failure(call, fmt.Errorf("failed to create %s: %w", destination, err)), nil
	}

	written, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return failure(call, fmt.Errorf("failed to copy: %w", err)), nil
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  fmt.Sprintf("Copied %s to %s (%d bytes)", source, destination, written),
		Metadata: map[string]any{"source": from, "destination": to, "bytes": written},
	}, nil
}

func (t *fileCopy) Definition() tool.Definition {
	return tool.Definition{
		Name:        "file_copy",
		Description: "Copy a file, overwriting the destination if it exists",
		Params: []tool.ParamSpec{
			{Name: "source", Type: "string", Description: "File to copy", Required: true},
			{Name: "destination", Type: "string", Description: "Target path", Required: true},
		},
		NeedsSnapshot: true,
		PathParams:    []string{"destination"},
	}
}

type dirCreate struct {
	cfg Config
}

func NewDirCreate(cfg Config) tool.Executor {
	return &dirCreate{cfg: cfg}
}

func (t *dirCreate) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path, err := stringArg(call, "path")
	if err != nil {
		return failure(call, err), nil
	}
	resolved := t.cfg.resolvePath(path)
	if err := os.MkdirAll(resolved, 0755); err != nil {
		return failure(call, fmt.Errorf("failed to create directory: %w", err)), nil
	}
	return &tool.Result{
		CallID:   call.ID,
		Content:  fmt.Sprintf("Created directory %s", path),
		Metadata: map[string]any{"path": resolved},
	}, nil
}

func (t *dirCreate) Definition() tool.Definition {
	return tool.Definition{
		Name:        "dir_create",
		Description: "Create a directory, including parents",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "Directory path", Required: true},
		},
	}
}
