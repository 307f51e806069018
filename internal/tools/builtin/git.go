package builtin

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"warden/internal/tool"
)

// gitTool wraps one read-only git subcommand. These are the git entries on
// the plan-mode allow-list; none of them mutates the repository.
type gitTool struct {
	cfg         Config
	name        string
	description string
	args        []string
}

func NewGitStatus(cfg Config) tool.Executor {
	return &gitTool{
		cfg:         cfg,
		name:        "git_status",
		description: "Show the git working tree status",
		args:        []string{"status", "--short", "--branch"},
	}
}

func NewGitDiff(cfg Config) tool.Executor {
	return &gitTool{
		cfg:         cfg,
		name:        "git_diff",
		description: "Show uncommitted git changes",
		args:        []string{"diff"},
	}
}

func NewGitLog(cfg Config) tool.Executor {
	return &gitTool{
		cfg:         cfg,
		name:        "git_log",
		description: "Show recent git history",
		args:        []string{"log", "--oneline", "-20"},
	}
}

func (t *gitTool) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	args := append([]string{"-C", t.cfg.resolvePath(".")}, t.args...)
	if extra := optionalString(call, "path", ""); extra != "" {
		args = append(args, "--", extra)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return failure(call, fmt.Errorf("git failed: %s", detail)), nil
	}

	return &tool.Result{
		CallID:  call.ID,
		Content: stdout.String(),
	}, nil
}

func (t *gitTool) Definition() tool.Definition {
	return tool.Definition{
		Name:        t.name,
		Description: t.description,
		Params: []tool.ParamSpec{
			{Name: "path", Type: "string", Description: "Restrict to a path"},
		},
	}
}
