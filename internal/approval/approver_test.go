package approval

import (
	"bufio"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(input string, timeout time.Duration) *InteractiveApprover {
	return &InteractiveApprover{
		timeout: timeout,
		in:      bufio.NewReader(strings.NewReader(input)),
	}
}

func request() *Request {
	return &Request{
		Tool:      "file_write",
		Operation: "Write content to a file",
		FilePath:  "/tmp/a.txt",
		Summary:   "+3 lines",
	}
}

func TestInteractiveApprover_Approve(t *testing.T) {
	resp, err := scripted("y\n", 0).RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	assert.Equal(t, "approve", resp.Action)
}

func TestInteractiveApprover_Reject(t *testing.T) {
	resp, err := scripted("n\n", 0).RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Equal(t, "reject", resp.Action)
	assert.Equal(t, "Rejected by user", resp.Message)
}

func TestInteractiveApprover_Quit(t *testing.T) {
	resp, err := scripted("q\n", 0).RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Equal(t, "quit", resp.Action)
}

func TestInteractiveApprover_RepromptsOnInvalidInput(t *testing.T) {
	resp, err := scripted("maybe\nyes\n", 0).RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, resp.Approved)
}

func TestInteractiveApprover_EmptyInputRejects(t *testing.T) {
	resp, err := scripted("\n", 0).RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, resp.Approved)
}

func TestInteractiveApprover_TimeoutRejects(t *testing.T) {
	// A reader that never delivers a line simulates a user who walked away.
	blocked, _ := io.Pipe()
	approver := &InteractiveApprover{
		timeout: 50 * time.Millisecond,
		in:      bufio.NewReader(blocked),
	}

	resp, err := approver.RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.False(t, resp.Approved)
	assert.Equal(t, "reject", resp.Action)
	assert.Equal(t, "Approval timeout", resp.Message)
}

func TestNoOpApprover_AlwaysApproves(t *testing.T) {
	resp, err := NewNoOpApprover().RequestApproval(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, resp.Approved)
	assert.Equal(t, "Auto-approved", resp.Message)
}
