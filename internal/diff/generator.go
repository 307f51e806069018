// Package diff renders per-file unified diffs and compares snapshots.
package diff

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// maxDiffSize skips diff rendering for very large files.
const maxDiffSize = 10 * 1024 * 1024

// Generator renders unified diffs between two versions of a file.
type Generator struct {
	contextLines int
	colorEnabled bool
}

// NewGenerator returns a generator that keeps contextLines of unchanged
// context around changed runs.
func NewGenerator(contextLines int, colorEnabled bool) *Generator {
	if contextLines < 0 {
		contextLines = 0
	}
	return &Generator{
		contextLines: contextLines,
		colorEnabled: colorEnabled,
	}
}

// Result contains a rendered diff and its statistics.
type Result struct {
	UnifiedDiff  string
	AddedLines   int
	DeletedLines int
	IsBinary     bool
}

// GenerateUnified renders the diff between oldContent and newContent. The
// diff is for human review only; restoration goes through whole-file revert,
// never through applying this text.
func (g *Generator) GenerateUnified(oldContent, newContent, filename string) *Result {
	if oldContent == newContent {
		return &Result{}
	}

	if isBinary(oldContent) || isBinary(newContent) {
		return &Result{
			UnifiedDiff: fmt.Sprintf("Binary file %s has changed", filename),
			IsBinary:    true,
		}
	}

	if len(oldContent) > maxDiffSize || len(newContent) > maxDiffSize {
		return &Result{
			UnifiedDiff: fmt.Sprintf("--- a/%s\n+++ b/%s\n@@ Large file (>10MB), diff skipped @@\n",
				filename, filename),
		}
	}

	added, deleted := g.countChanges(oldContent, newContent)
	return &Result{
		UnifiedDiff:  g.renderLineDiff(oldContent, newContent, filename),
		AddedLines:   added,
		DeletedLines: deleted,
	}
}

// renderLineDiff walks both files with a line-equality scan: a shared
// prefix and suffix bound the changed run, and contextLines of unchanged
// text are kept on either side. This is intentionally not a minimal-edit
// diff; it is sufficient for review.
func (g *Generator) renderLineDiff(oldContent, newContent, filename string) string {
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")

	prefix := commonPrefix(oldLines, newLines)
	suffix := commonSuffix(oldLines[prefix:], newLines[prefix:])
	oldEnd := len(oldLines) - suffix
	newEnd := len(newLines) - suffix

	var out strings.Builder
	out.WriteString(g.colorize(fmt.Sprintf("--- a/%s\n", filename), color.FgRed))
	out.WriteString(g.colorize(fmt.Sprintf("+++ b/%s\n", filename), color.FgGreen))

	ctxStart := max(0, prefix-g.contextLines)
	hunkOldLen := (oldEnd - ctxStart) + min(suffix, g.contextLines)
	hunkNewLen := (newEnd - ctxStart) + min(suffix, g.contextLines)
	out.WriteString(g.colorize(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
		ctxStart+1, hunkOldLen, ctxStart+1, hunkNewLen), color.FgCyan))

	for i := ctxStart; i < prefix; i++ {
		out.WriteString(" " + oldLines[i] + "\n")
	}
	for i := prefix; i < oldEnd; i++ {
		out.WriteString(g.colorize("-"+oldLines[i]+"\n", color.FgRed))
	}
	for i := prefix; i < newEnd; i++ {
		out.WriteString(g.colorize("+"+newLines[i]+"\n", color.FgGreen))
	}
	for i := 0; i < suffix && i < g.contextLines; i++ {
		out.WriteString(" " + oldLines[oldEnd+i] + "\n")
	}

	return out.String()
}

// countChanges uses diffmatchpatch for accurate added/deleted line counts
// even when the rendered diff is the simplified scan above.
func (g *Generator) countChanges(oldContent, newContent string) (added, deleted int) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldContent, newContent, false))
	for _, d := range diffs {
		lines := strings.Count(d.Text, "\n")
		if !strings.HasSuffix(d.Text, "\n") && d.Text != "" {
			lines++
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += lines
		case diffmatchpatch.DiffDelete:
			deleted += lines
		}
	}
	return added, deleted
}

func (g *Generator) colorize(text string, attr color.Attribute) string {
	if !g.colorEnabled {
		return text
	}
	return color.New(attr).Sprint(text)
}

// FormatSummary returns a one-line summary of the change counts.
func (r *Result) FormatSummary() string {
	if r.IsBinary {
		return "Binary file changed"
	}
	if r.AddedLines == 0 && r.DeletedLines == 0 {
		return "No changes"
	}
	var parts []string
	if r.AddedLines > 0 {
		parts = append(parts, fmt.Sprintf("+%d lines", r.AddedLines))
	}
	if r.DeletedLines > 0 {
		parts = append(parts, fmt.Sprintf("-%d lines", r.DeletedLines))
	}
	return strings.Join(parts, ", ")
}

func commonPrefix(oldLines, newLines []string) int {
	n := min(len(oldLines), len(newLines))
	for i := 0; i < n; i++ {
		if oldLines[i] != newLines[i] {
			return i
		}
	}
	return n
}

func commonSuffix(oldLines, newLines []string) int {
	n := min(len(oldLines), len(newLines))
	for i := 1; i <= n; i++ {
		if oldLines[len(oldLines)-i] != newLines[len(newLines)-i] {
			return i - 1
		}
	}
	return n
}

func isBinary(content string) bool {
	checkLen := min(len(content), 8000)
	for i := 0; i < checkLen; i++ {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
