package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"warden/internal/tool"
)

type bash struct {
	cfg Config
}

func NewBash(cfg Config) tool.Executor {
	return &bash{cfg: cfg}
}

func (t *bash) Execute(ctx context.Context, call tool.CallRequest) (*tool.Result, error) {
	command, err := stringArg(call, "command")
	if err != nil {
		return failure(call, err), nil
	}

	timeout := t.cfg.bashTimeout()
	if seconds := optionalNumber(call, "timeout_seconds", 0); seconds > 0 {
		timeout = time.Duration(seconds * float64(time.Second))
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	limit := t.cfg.maxOutputBytes()
	output := &cappedBuffer{limit: limit, cancel: cancel}

	cmd := exec.CommandContext(runCtx, "bash", "-c", command)
	cmd.Dir = t.cfg.resolvePath(".")
	cmd.Stdout = output.writer("stdout")
	cmd.Stderr = output.writer("stderr")
	cmd.WaitDelay = 5 * time.Second

	runErr := cmd.Run()

	// A cancelled command never reports partial success.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && !output.exceeded() {
		return failure(call, fmt.Errorf("command timed out after %s", timeout)), nil
	}
	if output.exceeded() {
		return failure(call, fmt.Errorf("command output exceeded %d bytes and was cancelled", limit)), nil
	}
	if err := ctx.Err(); err != nil {
		return failure(call, err), nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return failure(call, fmt.Errorf("failed to run command: %w", runErr)), nil
		}
	}

	stdout, stderr := output.strings()
	text := strings.TrimSpace(stdout)
	if text == "" {
		text = strings.TrimSpace(stderr)
	}
	if text == "" {
		if exitCode != 0 {
			text = fmt.Sprintf("exit code %d (no output)", exitCode)
		} else {
			text = "command completed with no output"
		}
	}

	result := &tool.Result{
		CallID:  call.ID,
		Content: text,
		Metadata: map[string]any{
			"command":   command,
			"exit_code": exitCode,
			"stdout":    stdout,
			"stderr":    stderr,
		},
	}
	if exitCode != 0 {
		result.Err = fmt.Errorf("command exited with code %d", exitCode)
	}
	return result, nil
}

func (t *bash) Definition() tool.Definition {
	return tool.Definition{
		Name:        "bash",
		Description: "Execute a bash command under a timeout and output cap",
		Params: []tool.ParamSpec{
			{Name: "command", Type: "string", Description: "Shell command", Required: true},
			{Name: "timeout_seconds", Type: "number", Description: "Override the default timeout"},
		},
		Dangerous: true,
	}
}

// cappedBuffer collects stdout and stderr up to a shared byte limit; once
// the limit is crossed it cancels the command.
type cappedBuffer struct {
	mu     sync.Mutex
	limit  int
	total  int
	over   bool
	cancel context.CancelFunc

	stdout bytes.Buffer
	stderr bytes.Buffer
}

type cappedWriter struct {
	parent *cappedBuffer
	stream string
}

func (b *cappedBuffer) writer(stream string) *cappedWriter {
	return &cappedWriter{parent: b, stream: stream}
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	b := w.parent
	b.mu.Lock()
	defer b.mu.Unlock()

	room := b.limit - b.total
	if room > len(p) {
		room = len(p)
	}
	if room > 0 {
		if w.stream == "stdout" {
			b.stdout.Write(p[:room])
		} else {
			b.stderr.Write(p[:room])
		}
		b.total += room
	}
	if room < len(p) && !b.over {
		b.over = true
		b.cancel()
	}
	// Report the full length so the child is not stalled on a pipe error.
	return len(p), nil
}

func (b *cappedBuffer) exceeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.over
}

func (b *cappedBuffer) strings() (string, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stdout.String(), b.stderr.String()
}
