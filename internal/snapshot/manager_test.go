package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore keeps snapshots in a map; enough to test the manager without a
// disk round-trip.
type memStore struct {
	snaps map[string]*Snapshot
}

func newMemStore() *memStore {
	return &memStore{snaps: make(map[string]*Snapshot)}
}

func (s *memStore) Save(snap *Snapshot) error {
	if _, exists := s.snaps[snap.ID]; exists {
		return fmt.Errorf("snapshot already exists: %s", snap.ID)
	}
	s.snaps[snap.ID] = snap
	return nil
}

func (s *memStore) Load(id string) (*Snapshot, error) {
	snap, ok := s.snaps[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return snap, nil
}

func (s *memStore) LoadAll() ([]*Snapshot, error) {
	all := make([]*Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		all = append(all, snap)
	}
	return all, nil
}

func (s *memStore) Delete(id string) (bool, error) {
	if _, ok := s.snaps[id]; !ok {
		return false, nil
	}
	delete(s.snaps, id)
	return true, nil
}

func newTestManager(t *testing.T) (*Manager, *memStore) {
	t.Helper()
	store := newMemStore()
	manager := NewManager(store, nil)

	// Deterministic, strictly increasing timestamps.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	manager.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return manager, store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestManager_CreateCapturesContentAndHash(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	writeFile(t, path, "package main\n")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason:    "Before file_edit",
		SessionID: "sess-1",
		Paths:     []string{path},
		ToolUsed:  "file_edit",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(snap.ID, "snap-"))
	require.Len(t, snap.Files, 1)
	assert.Equal(t, path, snap.Files[0].Path)
	assert.Equal(t, "package main\n", snap.Files[0].Content)
	assert.Equal(t, HashContent("package main\n"), snap.Files[0].Hash)
	assert.Equal(t, "file_edit", snap.Meta.ToolUsed)
}

func TestManager_CreateSkipsMissingAndDirectories(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	existing := filepath.Join(dir, "keep.txt")
	writeFile(t, existing, "kept")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason: "Before file_write",
		Paths:  []string{existing, filepath.Join(dir, "ghost.txt"), dir},
	})
	require.NoError(t, err)

	// Only the readable regular file is captured; the rest is omitted, not
	// recorded as empty entries.
	require.Len(t, snap.Files, 1)
	assert.Equal(t, existing, snap.Files[0].Path)
}

func TestManager_CreateResolvesRelativePaths(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.md"), "hello")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason:     "Before file_write",
		Paths:      []string{"notes.md"},
		WorkingDir: dir,
	})
	require.NoError(t, err)
	require.Len(t, snap.Files, 1)
	assert.Equal(t, filepath.Join(dir, "notes.md"), snap.Files[0].Path)
}

func TestManager_RevertRestoresExactContent(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	original := "threshold: 10\nname: prod\n"
	writeFile(t, path, original)

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason: "Before file_write",
		Paths:  []string{path},
	})
	require.NoError(t, err)

	writeFile(t, path, "threshold: 99\n")

	result, err := manager.Revert(context.Background(), RevertRequest{SnapshotID: snap.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{path}, result.FilesReverted)
	assert.Empty(t, result.Errors)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(restored))
	assert.Equal(t, snap.Files[0].Hash, HashContent(string(restored)))
}

func TestManager_RevertWithBackupCapturesPreRevertState(t *testing.T) {
	manager, store := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "app.go")
	writeFile(t, path, "v1")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason:    "Before file_edit",
		SessionID: "sess-1",
		Paths:     []string{path},
	})
	require.NoError(t, err)

	writeFile(t, path, "v2")

	result, err := manager.Revert(context.Background(), RevertRequest{
		SnapshotID:   snap.ID,
		CreateBackup: true,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotEmpty(t, result.BackupSnapshotID)

	// Exactly one extra snapshot: the original capture plus the backup.
	assert.Len(t, store.snaps, 2)

	backup, err := manager.Load(result.BackupSnapshotID)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("Backup before reverting to %s", snap.ID), backup.Reason)
	assert.Equal(t, "revert", backup.Meta.ToolUsed)
	assert.Equal(t, "sess-1", backup.SessionID)

	// The backup covers the same file set and holds the pre-revert content,
	// so the revert itself can be undone.
	require.Len(t, backup.Files, 1)
	assert.Equal(t, path, backup.Files[0].Path)
	assert.Equal(t, "v2", backup.Files[0].Content)

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(current))
}

func TestManager_RevertSubsetOfFiles(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	second := filepath.Join(dir, "b.txt")
	writeFile(t, first, "a1")
	writeFile(t, second, "b1")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason: "Before bash",
		Paths:  []string{first, second},
	})
	require.NoError(t, err)

	writeFile(t, first, "a2")
	writeFile(t, second, "b2")

	result, err := manager.Revert(context.Background(), RevertRequest{
		SnapshotID: snap.ID,
		Files:      []string{first},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, []string{first}, result.FilesReverted)

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	assert.Equal(t, "a1", string(a))
	assert.Equal(t, "b2", string(b), "files outside the subset stay untouched")
}

func TestManager_RevertUnknownSnapshot(t *testing.T) {
	manager, _ := newTestManager(t)

	_, err := manager.Revert(context.Background(), RevertRequest{SnapshotID: "snap-missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_RevertRecreatesDeletedFile(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "file.txt")
	writeFile(t, path, "content")

	snap, err := manager.Create(context.Background(), CreateRequest{
		Reason: "Before file_delete",
		Paths:  []string{path},
	})
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "nested")))

	result, err := manager.Revert(context.Background(), RevertRequest{SnapshotID: snap.ID})
	require.NoError(t, err)
	assert.True(t, result.Success)

	restored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "content", string(restored))
}

func TestManager_ListNewestFirstWithSessionFilter(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	writeFile(t, path, "x")

	var ids []string
	for i := 0; i < 3; i++ {
		session := "sess-a"
		if i == 1 {
			session = "sess-b"
		}
		snap, err := manager.Create(context.Background(), CreateRequest{
			Reason:    fmt.Sprintf("capture %d", i),
			SessionID: session,
			Paths:     []string{path},
		})
		require.NoError(t, err)
		ids = append(ids, snap.ID)
	}

	entries, err := manager.List("")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ids[2], entries[0].ID)
	assert.Equal(t, ids[1], entries[1].ID)
	assert.Equal(t, ids[0], entries[2].ID)

	filtered, err := manager.List("sess-b")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[1], filtered[0].ID)
}

func TestManager_CleanOldKeepsNewestPerSession(t *testing.T) {
	manager, store := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	writeFile(t, path, "x")

	idsBySession := map[string][]string{}
	for _, session := range []string{"sess-a", "sess-b"} {
		for i := 0; i < 4; i++ {
			snap, err := manager.Create(context.Background(), CreateRequest{
				Reason:    "capture",
				SessionID: session,
				Paths:     []string{path},
			})
			require.NoError(t, err)
			idsBySession[session] = append(idsBySession[session], snap.ID)
		}
	}

	deleted, err := manager.CleanOld(2)
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)
	assert.Len(t, store.snaps, 4)

	// Strictly the oldest are gone; the two newest of each session remain.
	for _, ids := range idsBySession {
		_, err := manager.Load(ids[0])
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = manager.Load(ids[1])
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = manager.Load(ids[2])
		assert.NoError(t, err)
		_, err = manager.Load(ids[3])
		assert.NoError(t, err)
	}

	// Sessions at or under the limit are untouched.
	deleted, err = manager.CleanOld(2)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestManager_Delete(t *testing.T) {
	manager, _ := newTestManager(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "x.txt")
	writeFile(t, path, "x")

	snap, err := manager.Create(context.Background(), CreateRequest{Reason: "capture", Paths: []string{path}})
	require.NoError(t, err)

	deleted, err := manager.Delete(snap.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = manager.Delete(snap.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestHashContent(t *testing.T) {
	assert.Equal(t, HashContent("same"), HashContent("same"))
	assert.NotEqual(t, HashContent("same"), HashContent("different"))
	assert.Len(t, HashContent(""), 64)
}

func TestSnapshot_File(t *testing.T) {
	snap := &Snapshot{Files: []FileSnapshot{{Path: "/tmp/a", Content: "a"}}}

	file, ok := snap.File("/tmp/a")
	assert.True(t, ok)
	assert.Equal(t, "a", file.Content)

	_, ok = snap.File("/tmp/b")
	assert.False(t, ok)
}
