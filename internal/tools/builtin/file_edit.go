package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"warden/internal/diff"
	"warden/internal/snapshot"
	"warden/internal/tool"
)

type fileEdit struct {
	cfg Config
	gen *diff.Generator
}

func NewFileEdit(cfg Config) tool.Executor {
	return &fileEdit{cfg: cfg, gen: diff.NewGenerator(2, false)}
}

func (t *fileEdit) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	path, err := stringArg(call, "path")
	if err != nil {
		return failure(call, err), nil
	}
	newString, ok := call.Arguments["new_string"].(string)
	if !ok {
		return failure(call, fmt.Errorf("missing 'new_string'")), nil
	}
	oldString, _ := call.Arguments["old_string"].(string)

	resolved := t.cfg.resolvePath(path)

	// Empty old_string means create a new file.
	if oldString == "" {
		return t.createNewFile(call, path, resolved, newString)
	}
	return t.editExistingFile(call, path, resolved, oldString, newString)
}

func (t *fileEdit) createNewFile(call tool.CallRequest, path, resolved, content string) (*tool.Result, error) {
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return failure(call, fmt.Errorf("failed to create directories: %w", err)), nil
	}
	if _, err := os.Stat(resolved); err == nil {
		return failure(call, fmt.Errorf("file already exists: %s", path)), nil
	}
	if err := os.WriteFile(resolved, []byte(content), 0644); err != nil {
		return failure(call, fmt.Errorf("failed to create file: %w", err)), nil
	}

	lineCount := len(strings.Split(content, "\n"))
	return &tool.Result{
		CallID:  call.ID,
		Content: fmt.Sprintf("Created %s (%d lines)", path, lineCount),
		Metadata: map[string]any{
			"path":           resolved,
			"operation":      "created",
			"lines_total":    lineCount,
			"diff":           t.gen.GenerateUnified("", content, path).UnifiedDiff,
			"content_sha256": snapshot.HashContent(content),
		},
	}, nil
}

func (t *fileEdit) editExistingFile(call tool.CallRequest, path, resolved, oldString, newString string) (*tool.Result, error) {
	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return failure(call, fmt.Errorf("file does not exist: %s", path)), nil
		}
		return failure(call, fmt.Errorf("failed to read file: %w", err)), nil
	}
	original := string(data)

	// old_string must match exactly once; anything else fails before any
	// write happens.
	occurrences := strings.Count(original, oldString)
	if occurrences == 0 {
		return failure(call, fmt.Errorf("old_string not found in file")), nil
	}
	if occurrences > 1 {
		return failure(call, fmt.Errorf("old_string appears %d times in file. Please include more context to make it unique", occurrences)), nil
	}

	updated := strings.Replace(original, oldString, newString, 1)
	if err := os.WriteFile(resolved, []byte(updated), 0644); err != nil {
		return failure(call, fmt.Errorf("failed to write file: %w", err)), nil
	}

	lineCount := len(strings.Split(updated, "\n"))
	return &tool.Result{
		CallID:  call.ID,
		Content: fmt.Sprintf("Updated %s (%d lines)", path, lineCount),
		Metadata: map[string]any{
			"path":           resolved,
			"operation":      "edited",
			"lines_total":    lineCount,
			"diff":           t.gen.GenerateUnified(original, updated, path).UnifiedDiff,
			"content_sha256": snapshot.HashContent(updated),
		},
	}, nil
}

func (t *fileEdit) Definition() tool.Definition {
	return tool.Definition{
		Name: "file_edit",
		Description: "Edit a file by replacing an exact string that occurs exactly once. " +
			"Use an empty old_string to create a new file.",
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "File path", Required: true},
			{Name: "old_string", Type: "string", Description: "Text to replace (empty for new file)", Required: true},
			{Name: "new_string", Type: "string", Description: "Replacement text", Required: true},
		},
		Dangerous:     true,
		NeedsSnapshot: true,
		PathParams:    []string{"path"},
	}
}
