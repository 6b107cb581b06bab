package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func srcFile(dir, rel string) SourceFile {
	return SourceFile{
		Path:       filepath.Join(dir, rel),
		Rel:        rel,
		OutputPath: filepath.Join(dir, replaceExt(rel, ".mkv")),
	}
}

func TestPreserve_MovesIntoMirroredTree(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, filepath.Join("sub", "clip.mp4"))
	p := NewPreserver(dir)
	src := srcFile(dir, filepath.Join("sub", "clip.mp4"))

	preserved, err := p.Preserve(src)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "old", "sub", "clip.mp4"), preserved)
	assert.FileExists(t, preserved)
	assert.NoFileExists(t, src.Path)
	assert.Equal(t, 1, p.ActiveCount())
}

func TestPreserve_SameBasenameDifferentSubdirs(t *testing.T) {
	// Preserved paths derive from the relative path, so equal filenames in
	// different subdirectories never collide under old/.
	dir := t.TempDir()
	touch(t, dir, filepath.Join("a", "clip.mp4"))
	touch(t, dir, filepath.Join("b", "clip.mp4"))
	p := NewPreserver(dir)

	_, err := p.Preserve(srcFile(dir, filepath.Join("a", "clip.mp4")))
	require.NoError(t, err)
	_, err = p.Preserve(srcFile(dir, filepath.Join("b", "clip.mp4")))
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "old", "a", "clip.mp4"))
	assert.FileExists(t, filepath.Join(dir, "old", "b", "clip.mp4"))
	assert.Equal(t, 2, p.ActiveCount())
}

func TestPreserve_MissingSourceLeavesNoRecord(t *testing.T) {
	dir := t.TempDir()
	p := NewPreserver(dir)

	_, err := p.Preserve(srcFile(dir, "ghost.mp4"))
	require.Error(t, err)
	assert.Equal(t, 0, p.ActiveCount())
}

func TestFinalize_RetiresRecordKeepsCopy(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mp4")
	p := NewPreserver(dir)
	src := srcFile(dir, "clip.mp4")

	preserved, err := p.Preserve(src)
	require.NoError(t, err)
	p.Finalize(src)

	// The record is retired but the original stays under old/ as a safety copy.
	assert.Equal(t, 0, p.ActiveCount())
	assert.FileExists(t, preserved)
}

func TestRollback_RestoresOriginal(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, filepath.Join("sub", "clip.mp4"))
	p := NewPreserver(dir)
	src := srcFile(dir, filepath.Join("sub", "clip.mp4"))

	preserved, err := p.Preserve(src)
	require.NoError(t, err)

	require.NoError(t, p.Rollback(src))

	assert.FileExists(t, src.Path)
	assert.NoFileExists(t, preserved)
	assert.Equal(t, 0, p.ActiveCount())

	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, "source-bytes", string(data))
}

func TestRollback_WithoutRecord(t *testing.T) {
	dir := t.TempDir()
	p := NewPreserver(dir)
	assert.Error(t, p.Rollback(srcFile(dir, "never-preserved.mp4")))
}

func TestCopyThenDelete(t *testing.T) {
	// Exercise the cross-volume branch directly; EXDEV itself cannot be
	// forced inside a single TempDir.
	dir := t.TempDir()
	src := touch(t, dir, "clip.mp4")
	dst := filepath.Join(dir, "moved.mp4")

	require.NoError(t, copyThenDelete(src, dst))

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "source-bytes", string(data))
}
