package builtin

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"warden/internal/tool"
)

const (
	maxGrepMatches  = 200
	maxGrepLineSize = 1 << 20
)

type grep struct {
	cfg Config
}

func NewGrep(cfg Config) tool.Executor {
	return &grep{cfg: cfg}
}

func (t *grep) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	pattern, err := stringArg(call, "pattern")
	if err != nil {
		return failure(call, err), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return failure(call, fmt.Errorf("invalid pattern: %w", err)), nil
	}
	root := t.cfg.resolvePath(optionalString(call, "path", "."))

	var out strings.Builder
	matches := 0
	truncated := false

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			if skipDir(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		found, err := grepFile(path, re, &out, &matches)
		if err != nil {
			return nil // unreadable or binary files are skipped
		}
		if found && matches >= maxGrepMatches {
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		return failure(call, walkErr), nil
	}

	content := out.String()
	if truncated {
		content += fmt.Sprintf("... (stopped after %d matches)\n", maxGrepMatches)
	}

	return &tool.Result{
		CallID:   call.ID,
		Content:  content,
		Metadata: map[string]any{"matches": matches, "truncated": truncated},
	}, nil
}

func grepFile(path string, re *regexp.Regexp, out *strings.Builder, matches *int) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxGrepLineSize)

	found := false
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.ContainsRune(line, 0) {
			return found, fmt.Errorf("binary file")
		}
		if re.MatchString(line) {
			fmt.Fprintf(out, "%s:%d: %s\n", path, lineNum, line)
			found = true
			*matches++
			if *matches >= maxGrepMatches {
				return found, nil
			}
		}
	}
	return found, scanner.Err()
}

func (t *grep) Definition() tool.Definition {
	return tool.Definition{
		Name:        "grep",
		Description: "Search file contents for a regular expression",
		Params: []tool.ParamSpec{
			{Name: "pattern", Type: "string", Description: "Regular expression", Required: true},
			{Name: "path", Type: "string", Description: "Directory to search", Default: "."},
		},
	}
}
