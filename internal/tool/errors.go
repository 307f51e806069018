package tool

import (
	"errors"
	"fmt"
)

// Kind classifies the structured failures that cross the core boundary.
// Every failure a caller can observe maps to exactly one kind.
type Kind int

const (
	// KindUnknownTool - the requested tool is not in the catalog.
	KindUnknownTool Kind = iota
	// KindMissingParameter - a required parameter was not supplied.
	KindMissingParameter
	// KindPermissionDenied - the current mode blocks the tool, or the user
	// denied confirmation.
	KindPermissionDenied
	// KindExecutionFailure - the underlying operation failed, timed out, or
	// panicked.
	KindExecutionFailure
	// KindSnapshotNotFound - a snapshot id did not resolve to a record.
	KindSnapshotNotFound
	// KindPartialRevert - a revert wrote some files but not all of them.
	KindPartialRevert
)

func (k Kind) String() string {
	switch k {
	case KindUnknownTool:
		return "unknown_tool"
	case KindMissingParameter:
		return "missing_parameter"
	case KindPermissionDenied:
		return "permission_denied"
	case KindExecutionFailure:
		return "execution_failure"
	case KindSnapshotNotFound:
		return "snapshot_not_found"
	case KindPartialRevert:
		return "partial_revert"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Callers match on Kind to render different
// guidance for, say, an unknown tool versus a missing parameter.
type Error struct {
	Kind    Kind
	Tool    string
	Param   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or KindExecutionFailure when err
// carries no explicit kind.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return KindExecutionFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// NewUnknownTool reports a tool name absent from the catalog.
func NewUnknownTool(name string) *Error {
	return &Error{
		Kind:    KindUnknownTool,
		Tool:    name,
		Message: fmt.Sprintf("Unknown tool: %s", name),
	}
}

// NewMissingParameter reports an absent required parameter.
func NewMissingParameter(toolName, param string) *Error {
	return &Error{
		Kind:    KindMissingParameter,
		Tool:    toolName,
		Param:   param,
		Message: fmt.Sprintf("Missing required parameter: %s", param),
	}
}

// NewPermissionDenied reports a mode block or a rejected confirmation.
func NewPermissionDenied(toolName, reason string) *Error {
	return &Error{
		Kind:    KindPermissionDenied,
		Tool:    toolName,
		Message: reason,
	}
}

// NewExecutionFailure wraps an underlying operation error.
func NewExecutionFailure(toolName string, err error) *Error {
	return &Error{
		Kind: KindExecutionFailure,
		Tool: toolName,
		Err:  err,
	}
}

// NewSnapshotNotFound reports an unresolvable snapshot id.
func NewSnapshotNotFound(id string, err error) *Error {
	return &Error{
		Kind:    KindSnapshotNotFound,
		Message: fmt.Sprintf("Snapshot not found: %s", id),
		Err:     err,
	}
}

// NewPartialRevert reports a revert that restored some files but not all of
// them.
func NewPartialRevert(snapshotID string, restored, failed int) *Error {
	return &Error{
		Kind: KindPartialRevert,
		Message: fmt.Sprintf("Revert of %s incomplete: %d file(s) restored, %d failed",
			snapshotID, restored, failed),
	}
}
