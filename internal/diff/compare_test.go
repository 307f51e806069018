package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/snapshot"
)

type mapLoader map[string]*snapshot.Snapshot

func (m mapLoader) Load(id string) (*snapshot.Snapshot, error) {
	snap, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, id)
	}
	return snap, nil
}

func capture(id string, files map[string]string) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{ID: id}
	for path, content := range files {
		snap.Files = append(snap.Files, snapshot.FileSnapshot{
			Path:    path,
			Content: content,
			Hash:    snapshot.HashContent(content),
		})
	}
	return snap
}

func TestComparer_Compare_Modified(t *testing.T) {
	loader := mapLoader{
		"snap-a": capture("snap-a", map[string]string{"/w/main.go": "x\n"}),
		"snap-b": capture("snap-b", map[string]string{"/w/main.go": "y\n"}),
	}
	comparer := NewComparer(loader, NewGenerator(3, false))

	result, err := comparer.Compare("snap-b", "snap-a")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 1, result.Modified)
	assert.Equal(t, 0, result.Deleted)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, ChangeModified, result.Changes[0].Type)
	assert.Equal(t, "x\n", result.Changes[0].Before)
	assert.Equal(t, "y\n", result.Changes[0].After)
	assert.Contains(t, result.Changes[0].Diff, "-x")
	assert.Contains(t, result.Changes[0].Diff, "+y")
}

func TestComparer_Compare_IdenticalHashesNotReported(t *testing.T) {
	loader := mapLoader{
		"snap-a": capture("snap-a", map[string]string{"/w/same.go": "stable\n"}),
		"snap-b": capture("snap-b", map[string]string{"/w/same.go": "stable\n"}),
	}
	comparer := NewComparer(loader, nil)

	result, err := comparer.Compare("snap-b", "snap-a")
	require.NoError(t, err)
	assert.Empty(t, result.Changes)
}

func TestComparer_Compare_AddedAndDeleted(t *testing.T) {
	loader := mapLoader{
		"snap-a": capture("snap-a", map[string]string{"/w/old.go": "old\n"}),
		"snap-b": capture("snap-b", map[string]string{"/w/new.go": "new\n"}),
	}
	comparer := NewComparer(loader, nil)

	result, err := comparer.Compare("snap-b", "snap-a")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.Modified)
	assert.Equal(t, 1, result.Deleted)
	require.Len(t, result.Changes, 2)

	// Changes come back sorted by path.
	assert.Equal(t, "/w/new.go", result.Changes[0].Path)
	assert.Equal(t, ChangeAdded, result.Changes[0].Type)
	assert.Equal(t, "/w/old.go", result.Changes[1].Path)
	assert.Equal(t, ChangeDeleted, result.Changes[1].Type)
}

func TestComparer_Compare_NoPreviousMeansAllAdded(t *testing.T) {
	loader := mapLoader{
		"snap-b": capture("snap-b", map[string]string{
			"/w/a.go": "a\n",
			"/w/b.go": "b\n",
		}),
	}
	comparer := NewComparer(loader, nil)

	result, err := comparer.Compare("snap-b", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Modified)
	assert.Equal(t, 0, result.Deleted)
}

func TestComparer_Compare_UnknownSnapshot(t *testing.T) {
	comparer := NewComparer(mapLoader{}, nil)

	_, err := comparer.Compare("snap-missing", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, snapshot.ErrNotFound)
}

func TestComparer_FormatSummary(t *testing.T) {
	loader := mapLoader{
		"snap-a": capture("snap-a", map[string]string{"/w/main.go": "x\n"}),
		"snap-b": capture("snap-b", map[string]string{"/w/main.go": "y\n"}),
	}
	comparer := NewComparer(loader, nil)

	result, err := comparer.Compare("snap-b", "snap-a")
	require.NoError(t, err)

	summary := comparer.FormatSummary(result)
	assert.Contains(t, summary, "0 added, 1 modified, 0 deleted")
	assert.Contains(t, summary, "modified")
	assert.Contains(t, summary, "/w/main.go")

	full := comparer.FormatFull(result)
	assert.Contains(t, full, summary)
	assert.Contains(t, full, "--- a//w/main.go")
}
