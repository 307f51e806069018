package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"warden/internal/logging"
)

// captureConcurrency bounds parallel file reads during capture.
const captureConcurrency = 8

// Manager creates, enumerates, restores, and retires snapshots on top of a
// durable Store. All operations are synchronous with respect to the caller.
type Manager struct {
	store  Store
	logger logging.Logger
	now    func() time.Time
}

// NewManager returns a manager backed by store.
func NewManager(store Store, logger logging.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

// CreateRequest describes a capture.
type CreateRequest struct {
	Reason      string
	SessionID   string
	Paths       []string
	WorkingDir  string
	ToolUsed    string
	UserMessage string
}

// Create captures the current content of each requested path and persists
// the snapshot. Unreadable or non-existent paths are silently omitted, not
// recorded as empty entries; the snapshot only references what it captured.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        newID(),
		SessionID: req.SessionID,
		CreatedAt: m.now(),
		Reason:    req.Reason,
		Meta: Meta{
			ToolUsed:    req.ToolUsed,
			UserMessage: req.UserMessage,
			WorkingDir:  req.WorkingDir,
		},
	}

	captured := make([]*FileSnapshot, len(req.Paths))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(captureConcurrency)
	for i, path := range req.Paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := captureFile(resolvePath(req.WorkingDir, path))
			if err != nil {
				m.logger.Debug("Skipping %s during capture: %v", path, err)
				return nil
			}
			mu.Lock()
			captured[i] = file
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("capture cancelled: %w", err)
	}

	snap.Files = make([]FileSnapshot, 0, len(captured))
	for _, file := range captured {
		if file != nil {
			snap.Files = append(snap.Files, *file)
		}
	}

	if err := m.store.Save(snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	m.logger.Info("Created snapshot %s (%d files): %s", snap.ID, len(snap.Files), snap.Reason)
	return snap, nil
}

// Load returns the full snapshot for id, or ErrNotFound.
func (m *Manager) Load(id string) (*Snapshot, error) {
	return m.store.Load(id)
}

// List enumerates snapshots most-recent-first, optionally filtered to a
// session. Only the listing projection is returned.
func (m *Manager) List(sessionID string) ([]ListEntry, error) {
	snaps, err := m.store.LoadAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].CreatedAt.After(snaps[j].CreatedAt)
	})
	entries := make([]ListEntry, 0, len(snaps))
	for _, snap := range snaps {
		if sessionID != "" && snap.SessionID != sessionID {
			continue
		}
		entries = append(entries, ListEntry{
			ID:        snap.ID,
			SessionID: snap.SessionID,
			CreatedAt: snap.CreatedAt,
			Reason:    snap.Reason,
			FileCount: len(snap.Files),
		})
	}
	return entries, nil
}

// Revert overwrites current file contents with those stored in a snapshot.
// With CreateBackup set, exactly one safety snapshot over the same file set
// is taken before any file is written, so the revert itself can be undone.
// Per-file failures are collected and do not abort remaining files; the
// revert is not transactional across files.
func (m *Manager) Revert(ctx context.Context, req RevertRequest) (*RevertResult, error) {
	target, err := m.store.Load(req.SnapshotID)
	if err != nil {
		return nil, err
	}

	files := target.Files
	if len(req.Files) > 0 {
		wanted := make(map[string]bool, len(req.Files))
		for _, path := range req.Files {
			wanted[resolvePath(target.Meta.WorkingDir, path)] = true
			wanted[path] = true
		}
		subset := files[:0:0]
		for _, file := range files {
			if wanted[file.Path] {
				subset = append(subset, file)
			}
		}
		files = subset
	}

	result := &RevertResult{}

	if req.CreateBackup {
		paths := make([]string, len(files))
		for i, file := range files {
			paths[i] = file.Path
		}
		backup, err := m.Create(ctx, CreateRequest{
			Reason:     fmt.Sprintf("Backup before reverting to %s", req.SnapshotID),
			SessionID:  target.SessionID,
			Paths:      paths,
			WorkingDir: target.Meta.WorkingDir,
			ToolUsed:   "revert",
		})
		if err != nil {
			return nil, fmt.Errorf("backup before revert: %w", err)
		}
		result.BackupSnapshotID = backup.ID
	}

	for _, file := range files {
		if err := restoreFile(file); err != nil {
			m.logger.Warn("Revert of %s failed: %v", file.Path, err)
			result.Errors = append(result.Errors, FileError{File: file.Path, Error: err.Error()})
			continue
		}
		result.FilesReverted = append(result.FilesReverted, file.Path)
	}

	result.Success = len(result.Errors) == 0
	m.logger.Info("Reverted to %s: %d files restored, %d errors",
		req.SnapshotID, len(result.FilesReverted), len(result.Errors))
	return result, nil
}

// Delete removes the snapshot for id, reporting false when absent.
func (m *Manager) Delete(id string) (bool, error) {
	return m.store.Delete(id)
}

// CleanOld keeps the most recent keepPerSession snapshots per session id
// and deletes the remainder, returning the number deleted. Sessions at or
// under the limit are untouched.
func (m *Manager) CleanOld(keepPerSession int) (int, error) {
	if keepPerSession < 0 {
		keepPerSession = 0
	}
	snaps, err := m.store.LoadAll()
	if err != nil {
		return 0, err
	}

	bySession := make(map[string][]*Snapshot)
	for _, snap := range snaps {
		bySession[snap.SessionID] = append(bySession[snap.SessionID], snap)
	}

	deleted := 0
	for _, group := range bySession {
		if len(group) <= keepPerSession {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].CreatedAt.After(group[j].CreatedAt)
		})
		for _, snap := range group[keepPerSession:] {
			ok, err := m.store.Delete(snap.ID)
			if err != nil {
				m.logger.Warn("Retention delete of %s failed: %v", snap.ID, err)
				continue
			}
			if ok {
				deleted++
			}
		}
	}
	return deleted, nil
}

func captureFile(path string) (*FileSnapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileSnapshot{
		Path:    path,
		Content: string(content),
		Hash:    HashContent(string(content)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func restoreFile(file FileSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(file.Path), 0755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}
	if err := os.WriteFile(file.Path, []byte(file.Content), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func resolvePath(workingDir, path string) string {
	if filepath.IsAbs(path) || workingDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(workingDir, path)
}

// HashContent returns the hex sha256 of content. Identical content always
// yields an identical hash; it is used for change detection, never as a
// security boundary.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// newID returns a time-ordered snapshot id with a stable prefix for display.
func newID() string {
	if v7, err := uuid.NewV7(); err == nil {
		return "snap-" + v7.String()
	}
	return "snap-" + uuid.NewString()
}
