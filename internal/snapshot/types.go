// Package snapshot captures point-in-time file state so mutating tool calls
// can be diffed and undone.
package snapshot

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a snapshot id does not resolve to a record.
var ErrNotFound = errors.New("snapshot not found")

// FileSnapshot is one captured file. Once written into a Snapshot it is
// never mutated.
type FileSnapshot struct {
	Path    string    `json:"path"` // absolute
	Content string    `json:"content"`
	Hash    string    `json:"hash"` // sha256 of content, change detection only
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Meta records what triggered a snapshot.
type Meta struct {
	ToolUsed    string `json:"tool_used,omitempty"`
	UserMessage string `json:"user_message,omitempty"`
	WorkingDir  string `json:"working_dir,omitempty"`
}

// Snapshot is an immutable capture of one or more files. It is persisted at
// creation and never updated in place.
type Snapshot struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Reason    string         `json:"reason"`
	Files     []FileSnapshot `json:"files"`
	Meta      Meta           `json:"meta"`
}

// File returns the captured entry for path, if present.
func (s *Snapshot) File(path string) (FileSnapshot, bool) {
	for _, file := range s.Files {
		if file.Path == path {
			return file, true
		}
	}
	return FileSnapshot{}, false
}

// ListEntry is the lightweight listing projection of a Snapshot, used for
// enumeration without loading file contents into the caller's view.
type ListEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Reason    string    `json:"reason"`
	FileCount int       `json:"file_count"`
}

// Store persists snapshots durably, one record per id.
type Store interface {
	Save(snap *Snapshot) error
	Load(id string) (*Snapshot, error)
	LoadAll() ([]*Snapshot, error)
	Delete(id string) (bool, error)
}

// FileError is a per-file revert failure.
type FileError struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// RevertRequest selects what to restore from a snapshot.
type RevertRequest struct {
	SnapshotID string
	// Files optionally restricts the revert to a subset of captured paths.
	Files []string
	// CreateBackup captures current state before anything is overwritten.
	CreateBackup bool
}

// RevertResult reports per-file outcomes. Success is true iff Errors is
// empty; already-written files stay changed when later files fail.
type RevertResult struct {
	Success          bool        `json:"success"`
	FilesReverted    []string    `json:"files_reverted"`
	Errors           []FileError `json:"errors,omitempty"`
	BackupSnapshotID string      `json:"backup_snapshot_id,omitempty"`
}
