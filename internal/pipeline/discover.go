package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// PreserveDirName is the subtree under the target directory that holds
// original files moved aside before conversion.
const PreserveDirName = "old"

// DefaultExtensions is the built-in set of video extensions matched when the
// user supplies no input formats (lowercase, with leading dot).
var DefaultExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".flv":  true,
	".wmv":  true,
	".ts":   true,
	".m4v":  true,
	".webm": true,
	".mpg":  true,
	".mpeg": true,
}

// SourceFile is one discovered input: its absolute path, its path relative
// to the walk root (used to mirror subdirectory structure), and the output
// path its conversion writes to.
type SourceFile struct {
	Path       string // Absolute source path.
	Rel        string // Path relative to the walk root.
	OutputPath string // Mirrored path under the root with the output extension.
}

// Discover walks root, collects files whose extension matches (case
// insensitive), and maps each to its output path. The preservation directory
// is pruned so a repeated run never reprocesses already-converted originals.
// A re-walk always re-enumerates current filesystem state; no caching.
//
// exts is the user's accepted-extension list; empty means [DefaultExtensions].
// Results are sorted lexicographically for deterministic dispatch order.
func Discover(root string, exts []string, outputExt string) ([]SourceFile, error) {
	match := DefaultExtensions
	if len(exts) > 0 {
		match = make(map[string]bool, len(exts))
		for _, e := range exts {
			match[strings.ToLower(e)] = true
		}
	}

	preserveDir := filepath.Join(root, PreserveDirName)

	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == preserveDir {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !match[ext] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, SourceFile{
			Path:       path,
			Rel:        rel,
			OutputPath: filepath.Join(root, replaceExt(rel, outputExt)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// replaceExt substitutes the file extension of a relative path.
func replaceExt(rel, ext string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ext
}
