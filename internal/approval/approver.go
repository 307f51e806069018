// Package approval is the confirmation boundary for dangerous tools: the
// executor blocks on an Approver before running anything destructive
// outside auto-accept mode.
package approval

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Request describes the pending operation shown to the user.
type Request struct {
	Tool      string
	Operation string
	FilePath  string
	Summary   string
	Diff      string
}

// Response is the user's decision.
type Response struct {
	Approved bool
	Action   string // "approve", "reject", "quit"
	Message  string
}

// Approver resolves a confirmation request before a dangerous tool runs.
type Approver interface {
	RequestApproval(ctx context.Context, req *Request) (*Response, error)
}

// InteractiveApprover prompts on the terminal, defaulting to reject after a
// timeout.
type InteractiveApprover struct {
	timeout      time.Duration
	colorEnabled bool
	in           *bufio.Reader
}

// NewInteractiveApprover returns a terminal approver. A zero timeout means
// wait forever.
func NewInteractiveApprover(timeout time.Duration, colorEnabled bool) *InteractiveApprover {
	return &InteractiveApprover{
		timeout:      timeout,
		colorEnabled: colorEnabled,
		in:           bufio.NewReader(os.Stdin),
	}
}

// RequestApproval shows the pending change and waits for a decision.
func (a *InteractiveApprover) RequestApproval(ctx context.Context, req *Request) (*Response, error) {
	a.display(req)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	responseCh := make(chan *Response, 1)
	errCh := make(chan error, 1)
	go func() {
		resp, err := a.readDecision()
		if err != nil {
			errCh <- err
			return
		}
		responseCh <- resp
	}()

	select {
	case resp := <-responseCh:
		return resp, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		fmt.Println()
		fmt.Println(a.colorize("Timeout - operation rejected", color.FgRed))
		return &Response{Approved: false, Action: "reject", Message: "Approval timeout"}, nil
	}
}

func (a *InteractiveApprover) display(req *Request) {
	separator := strings.Repeat("=", 80)

	fmt.Println()
	fmt.Println(a.colorize(separator, color.FgCyan))
	fmt.Println(a.colorize(fmt.Sprintf("Tool: %s", req.Tool), color.FgYellow, color.Bold))
	if req.Operation != "" {
		fmt.Println(a.colorize(fmt.Sprintf("Operation: %s", req.Operation), color.FgWhite))
	}
	if req.FilePath != "" {
		fmt.Println(a.colorize(fmt.Sprintf("File: %s", req.FilePath), color.FgWhite))
	}
	fmt.Println(a.colorize(separator, color.FgCyan))

	if req.Summary != "" {
		fmt.Println(a.colorize("Summary:", color.FgCyan))
		fmt.Println(req.Summary)
	}
	if req.Diff != "" {
		fmt.Println(a.colorize("Changes:", color.FgCyan))
		fmt.Println(req.Diff)
	}
}

func (a *InteractiveApprover) readDecision() (*Response, error) {
	for {
		fmt.Println()
		fmt.Println(a.colorize("Allow this operation?", color.FgYellow, color.Bold))
		fmt.Println("  [y] Yes, run it")
		fmt.Println("  [n] No, cancel")
		fmt.Println("  [q] Quit")
		fmt.Print(a.colorize("Choice: ", color.FgCyan))

		input, err := a.in.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.TrimSpace(strings.ToLower(input)) {
		case "y", "yes":
			return &Response{Approved: true, Action: "approve", Message: "Approved by user"}, nil
		case "n", "no", "":
			return &Response{Approved: false, Action: "reject", Message: "Rejected by user"}, nil
		case "q", "quit":
			return &Response{Approved: false, Action: "quit", Message: "User requested quit"}, nil
		default:
			fmt.Println(a.colorize("Invalid choice. Please enter y, n, or q.", color.FgRed))
		}
	}
}

func (a *InteractiveApprover) colorize(text string, attrs ...color.Attribute) string {
	if !a.colorEnabled {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// NoOpApprover always approves; used in auto-accept mode and in tests.
type NoOpApprover struct{}

// NewNoOpApprover returns a new no-op approver.
func NewNoOpApprover() *NoOpApprover {
	return &NoOpApprover{}
}

// RequestApproval always approves.
func (a *NoOpApprover) RequestApproval(ctx context.Context, req *Request) (*Response, error) {
	return &Response{Approved: true, Action: "approve", Message: "Auto-approved"}, nil
}
