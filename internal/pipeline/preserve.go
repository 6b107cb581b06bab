package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
)

// Preserver moves originals into the preservation subtree and tracks every
// file currently relocated. A record exists exactly from the moment a file
// leaves its source path until it is finalized or rolled back, which is the
// invariant that guarantees no file is ever lost mid-run.
//
// Preserved paths mirror the source-relative path, so two files from
// different subdirectories never collide even when they share a filename.
type Preserver struct {
	dir string // <root>/old

	mu     sync.Mutex
	active map[string]string // source absolute path → preserved path
}

// NewPreserver returns a Preserver rooted at dir's preservation subtree.
func NewPreserver(root string) *Preserver {
	return &Preserver{
		dir:    filepath.Join(root, PreserveDirName),
		active: make(map[string]string),
	}
}

// PreservedPath returns the preservation location for a source file,
// derived deterministically from its relative path.
func (p *Preserver) PreservedPath(src SourceFile) string {
	return filepath.Join(p.dir, src.Rel)
}

// Preserve relocates the original into the preservation subtree and creates
// the tracking record. On failure the source file is untouched and no record
// exists.
func (p *Preserver) Preserve(src SourceFile) (string, error) {
	dst := p.PreservedPath(src)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create preservation directory: %w", err)
	}
	if err := moveFile(src.Path, dst); err != nil {
		return "", fmt.Errorf("preserve %s: %w", src.Rel, err)
	}

	p.mu.Lock()
	p.active[src.Path] = dst
	p.mu.Unlock()
	return dst, nil
}

// Finalize retires the record after a successful conversion. The preserved
// original is retained under old/ as a safety copy; only the in-memory
// tracking entry is removed.
func (p *Preserver) Finalize(src SourceFile) {
	p.mu.Lock()
	delete(p.active, src.Path)
	p.mu.Unlock()
}

// Rollback moves the preserved original back to its exact source path and
// retires the record. Called after a failed conversion, once any partial
// output has been removed.
func (p *Preserver) Rollback(src SourceFile) error {
	p.mu.Lock()
	dst, ok := p.active[src.Path]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no preservation record for %s", src.Rel)
	}

	if err := moveFile(dst, src.Path); err != nil {
		return fmt.Errorf("restore %s: %w", src.Rel, err)
	}

	p.mu.Lock()
	delete(p.active, src.Path)
	p.mu.Unlock()
	return nil
}

// ActiveCount returns the number of files currently tracked as relocated.
// Zero after a completed run means every file reached a terminal state.
func (p *Preserver) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

// moveFile relocates a file with an atomic rename. When src and dst are on
// different volumes (rename fails with EXDEV), it falls back to
// copy+sync+verify+delete so a half-completed move never leaves the file in
// an indeterminate location.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}
	return copyThenDelete(src, dst)
}

// copyThenDelete is the cross-volume branch of moveFile. The source is only
// removed after the copy is flushed and its size verified.
func copyThenDelete(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	dstInfo, err := os.Stat(dst)
	if err != nil {
		return err
	}
	if dstInfo.Size() != srcInfo.Size() {
		os.Remove(dst)
		return fmt.Errorf("cross-volume copy size mismatch: %d != %d", dstInfo.Size(), srcInfo.Size())
	}

	return os.Remove(src)
}
