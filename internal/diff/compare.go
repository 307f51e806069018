package diff

import (
	"fmt"
	"sort"
	"strings"

	"warden/internal/snapshot"
)

// ChangeType classifies a per-file change between two snapshots.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// FileChange is one changed file. Before/After carry the captured content
// where applicable; Diff is a rendered unified diff for review.
type FileChange struct {
	Path   string     `json:"path"`
	Type   ChangeType `json:"type"`
	Before string     `json:"before,omitempty"`
	After  string     `json:"after,omitempty"`
	Diff   string     `json:"diff,omitempty"`
}

// SnapshotDiff aggregates the changes between two snapshots. It is derived
// on demand and never persisted.
type SnapshotDiff struct {
	SnapshotID string       `json:"snapshot_id"`
	PreviousID string       `json:"previous_id,omitempty"`
	Changes    []FileChange `json:"changes"`
	Added      int          `json:"added"`
	Modified   int          `json:"modified"`
	Deleted    int          `json:"deleted"`
}

// Loader resolves snapshot ids to full snapshots. *snapshot.Manager
// satisfies it.
type Loader interface {
	Load(id string) (*snapshot.Snapshot, error)
}

// Comparer computes and formats snapshot diffs.
type Comparer struct {
	loader Loader
	gen    *Generator
}

// NewComparer returns a comparer rendering with gen.
func NewComparer(loader Loader, gen *Generator) *Comparer {
	if gen == nil {
		gen = NewGenerator(3, false)
	}
	return &Comparer{loader: loader, gen: gen}
}

// Compare diffs the target snapshot against a previous one. A path only in
// the target is added; in both with differing hashes, modified; only in the
// previous snapshot, deleted. With an empty previousID every target file
// degenerates to added.
func (c *Comparer) Compare(snapshotID, previousID string) (*SnapshotDiff, error) {
	target, err := c.loader.Load(snapshotID)
	if err != nil {
		return nil, err
	}

	previous := map[string]snapshot.FileSnapshot{}
	if previousID != "" {
		prev, err := c.loader.Load(previousID)
		if err != nil {
			return nil, err
		}
		for _, file := range prev.Files {
			previous[file.Path] = file
		}
	}

	result := &SnapshotDiff{SnapshotID: snapshotID, PreviousID: previousID}

	current := map[string]bool{}
	for _, file := range target.Files {
		current[file.Path] = true
		before, existed := previous[file.Path]
		switch {
		case !existed:
			result.Changes = append(result.Changes, FileChange{
				Path:  file.Path,
				Type:  ChangeAdded,
				After: file.Content,
				Diff:  c.gen.GenerateUnified("", file.Content, file.Path).UnifiedDiff,
			})
		case before.Hash != file.Hash:
			result.Changes = append(result.Changes, FileChange{
				Path:   file.Path,
				Type:   ChangeModified,
				Before: before.Content,
				After:  file.Content,
				Diff:   c.gen.GenerateUnified(before.Content, file.Content, file.Path).UnifiedDiff,
			})
		}
	}
	for path, before := range previous {
		if !current[path] {
			result.Changes = append(result.Changes, FileChange{
				Path:   path,
				Type:   ChangeDeleted,
				Before: before.Content,
				Diff:   c.gen.GenerateUnified(before.Content, "", path).UnifiedDiff,
			})
		}
	}

	sort.Slice(result.Changes, func(i, j int) bool {
		return result.Changes[i].Path < result.Changes[j].Path
	})
	for _, change := range result.Changes {
		switch change.Type {
		case ChangeAdded:
			result.Added++
		case ChangeModified:
			result.Modified++
		case ChangeDeleted:
			result.Deleted++
		}
	}
	return result, nil
}

// FormatSummary renders counts by type plus one line per changed file.
func (c *Comparer) FormatSummary(d *SnapshotDiff) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%d added, %d modified, %d deleted\n", d.Added, d.Modified, d.Deleted)
	for _, change := range d.Changes {
		fmt.Fprintf(&out, "  %-8s %s\n", change.Type, change.Path)
	}
	return out.String()
}

// FormatFull renders the summary followed by each file's diff body.
func (c *Comparer) FormatFull(d *SnapshotDiff) string {
	var out strings.Builder
	out.WriteString(c.FormatSummary(d))
	for _, change := range d.Changes {
		if change.Diff == "" {
			continue
		}
		out.WriteString("\n")
		out.WriteString(change.Diff)
	}
	return out.String()
}
