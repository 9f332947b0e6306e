package sources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrDirectoryUnreadable is returned when the local source directory
// cannot be listed.
var ErrDirectoryUnreadable = errors.New("source directory unreadable")

// Index is a snapshot of the regular filenames in a source directory,
// sorted so lookups have a deterministic first match.
type Index struct {
	names []string
}

// ListDir reads dir once and returns its index. Subdirectories, and
// symlinks pointing at directories, are not candidates. When patterns are
// given only names matching at least one of them are kept.
func ListDir(dir string, patterns []string) (*Index, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid source file pattern %q", p)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDirectoryUnreadable, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if isDir(dir, e) {
			continue
		}
		if !matchesAny(e.Name(), patterns) {
			continue
		}
		names = append(names, e.Name())
	}
	return NewIndex(names), nil
}

// isDir reports whether e is a directory, following symlinks. A dangling
// symlink counts as a file.
func isDir(dir string, e fs.DirEntry) bool {
	if e.Type()&fs.ModeSymlink == 0 {
		return e.IsDir()
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

// NewIndex builds an index over an existing list of filenames.
func NewIndex(names []string) *Index {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	return &Index{names: sorted}
}

// Len returns the number of candidate files.
func (idx *Index) Len() int { return len(idx.names) }

// Lookup returns the first filename (in lexical order) that starts with
// stem. Matching is case-sensitive and not anchored at the end, so
// "zlib_1.2" also matches "zlib_1.2.13.orig.tar.gz".
func (idx *Index) Lookup(stem string) (string, bool) {
	// names is sorted, so every name with this prefix sits at or after
	// the insertion point of stem itself.
	i := sort.SearchStrings(idx.names, stem)
	if i < len(idx.names) && strings.HasPrefix(idx.names[i], stem) {
		return idx.names[i], true
	}
	return "", false
}

func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
