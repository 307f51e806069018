package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden/internal/snapshot"
	"warden/internal/tool"
)

func toolCall(name string, args map[string]any) tool.CallRequest {
	return tool.CallRequest{ID: "call-1", Name: name, Arguments: args}
}

func TestFileWrite_CreatesFileAndParents(t *testing.T) {
	dir := t.TempDir()

	write := NewFileWrite(Config{WorkDir: dir})
	result, err := write.Execute(context.Background(), toolCall("file_write", map[string]any{
		"path":    "deep/nested/out.txt",
		"content": "hello world",
	}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.Equal(t, "Wrote 11 bytes to deep/nested/out.txt", result.Content)
	assert.Equal(t, snapshot.HashContent("hello world"), result.Metadata["content_sha256"])

	written, err := os.ReadFile(filepath.Join(dir, "deep", "nested", "out.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(written))
}

func TestFileWrite_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	write := NewFileWrite(Config{WorkDir: dir})
	result, err := write.Execute(context.Background(), toolCall("file_write", map[string]any{
		"path":    "f.txt",
		"content": "new",
	}))
	require.NoError(t, err)
	require.NoError(t, result.Err)

	written, _ := os.ReadFile(path)
	assert.Equal(t, "new", string(written))
}

func TestFileRead_ReturnsContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("one\ntwo\n"), 0644))

	read := NewFileRead(Config{WorkDir: dir})
	result, err := read.Execute(context.Background(), toolCall("file_read", map[string]any{"path": "f.txt"}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.Equal(t, "one\ntwo\n", result.Content)
	assert.Equal(t, false, result.Metadata["truncated"])
}

func TestFileRead_RejectsDirectory(t *testing.T) {
	dir := t.TempDir()

	read := NewFileRead(Config{WorkDir: dir})
	result, err := read.Execute(context.Background(), toolCall("file_read", map[string]any{"path": "."}))
	require.NoError(t, err)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "is a directory")
}

func TestFileRead_MissingFile(t *testing.T) {
	read := NewFileRead(Config{WorkDir: t.TempDir()})
	result, err := read.Execute(context.Background(), toolCall("file_read", map[string]any{"path": "ghost.txt"}))
	require.NoError(t, err)
	assert.Error(t, result.Err)
}

func TestFileDelete_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	del := NewFileDelete(Config{WorkDir: dir})
	result, err := del.Execute(context.Background(), toolCall("file_delete", map[string]any{"path": "gone.txt"}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.NoFileExists(t, path)
}

func TestFileDelete_DirectoryNeedsRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "f.txt"), []byte("x"), 0644))

	del := NewFileDelete(Config{WorkDir: dir})
	result, err := del.Execute(context.Background(), toolCall("file_delete", map[string]any{"path": "sub"}))
	require.NoError(t, err)
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "recursive=true")
	assert.DirExists(t, sub)

	result, err = del.Execute(context.Background(), toolCall("file_delete", map[string]any{
		"path":      "sub",
		"recursive": true,
	}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.NoDirExists(t, sub)
}

func TestFileMove_Renames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("payload"), 0644))

	move := NewFileMove(Config{WorkDir: dir})
	result, err := move.Execute(context.Background(), toolCall("file_move", map[string]any{
		"source":      "old.txt",
		"destination": "sub/new.txt",
	}))
	require.NoError(t, err)
	require.NoError(t, result.Err)

	assert.NoFileExists(t, filepath.Join(dir, "old.txt"))
	moved, err := os.ReadFile(filepath.Join(dir, "sub", "new.txt"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(moved))
}

func TestFileCopy_PreservesSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src.txt"), []byte("payload"), 0644))

	cp := NewFileCopy(Config{WorkDir: dir})
	result, err := cp.Execute(context.Background(), toolCall("file_copy", map[string]any{
		"source":      "src.txt",
		"destination": "dst.txt",
	}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.Equal(t, int64(7), result.Metadata["bytes"])

	src, _ := os.ReadFile(filepath.Join(dir, "src.txt"))
	dst, _ := os.ReadFile(filepath.Join(dir, "dst.txt"))
	assert.Equal(t, "payload", string(src))
	assert.Equal(t, "payload", string(dst))
}

func TestDirCreate_IncludesParents(t *testing.T) {
	dir := t.TempDir()

	mk := NewDirCreate(Config{WorkDir: dir})
	result, err := mk.Execute(context.Background(), toolCall("dir_create", map[string]any{"path": "a/b/c"}))
	require.NoError(t, err)
	require.NoError(t, result.Err)
	assert.DirExists(t, filepath.Join(dir, "a", "b", "c"))
}

func TestListFiles_SortedWithSizes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("1"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "zdir"), 0755))

	ls := NewListFiles(Config{WorkDir: dir})
	result, err := ls.Execute(context.Background(), toolCall("list_files", nil))
	require.NoError(t, err)
	require.NoError(t, result.Err)

	assert.Equal(t, "a.txt (1 bytes)\nb.txt (5 bytes)\nzdir/\n", result.Content)
	assert.Equal(t, 1, result.Metadata["dirs"])
	assert.Equal(t, 2, result.Metadata["files"])
}

func TestStringArg_Missing(t *testing.T) {
	_, err := stringArg(toolCall("x", nil), "path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'path'")

	_, err = stringArg(toolCall("x", map[string]any{"path": 7}), "path")
	assert.Error(t, err)
}

func TestConfig_ResolvePath(t *testing.T) {
	cfg := Config{WorkDir: "/work"}
	assert.Equal(t, filepath.Join("/work", "rel.txt"), cfg.resolvePath("rel.txt"))
	assert.Equal(t, "/abs/file.txt", cfg.resolvePath("/abs/file.txt"))

	// Without a working directory the path is only cleaned.
	assert.Equal(t, "rel.txt", Config{}.resolvePath("./rel.txt"))
}
