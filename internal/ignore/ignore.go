// Package ignore implements the pattern exclusion list the scanner
// consults (dms_ignore.json in the Doc directory).
package ignore

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ldmathes/dms/internal/fsutil"
)

// FileName is the exclusion list file inside the Doc directory.
const FileName = "dms_ignore.json"

type file struct {
	IgnoredFiles []string `json:"ignored_files"`
}

// Filter matches relative paths against glob patterns. Patterns apply to
// both the file's base name and its full relative path, so "*.log"
// excludes logs anywhere and "drafts/*" excludes one subtree.
type Filter struct {
	patterns []string
}

// New builds a filter from literal patterns.
func New(patterns []string) *Filter {
	return &Filter{patterns: patterns}
}

// Load reads dms_ignore.json from docDir. A missing file yields an empty
// filter; a malformed one is an error.
func Load(docDir string) (*Filter, error) {
	var f file
	if err := fsutil.ReadJSON(filepath.Join(docDir, FileName), &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Filter{}, nil
		}
		return nil, fmt.Errorf("load ignore list: %w", err)
	}
	return &Filter{patterns: f.IgnoredFiles}, nil
}

// WriteTemplate writes an empty exclusion list so users have a file to
// edit. Existing lists are left alone.
func WriteTemplate(docDir string) error {
	p := filepath.Join(docDir, FileName)
	if fsutil.FileExists(p) {
		return nil
	}
	return fsutil.WriteJSONAtomic(p, file{IgnoredFiles: []string{}})
}

// Len returns the number of loaded patterns.
func (f *Filter) Len() int {
	return len(f.patterns)
}

// Match reports whether relPath (with or without a leading "./") is
// excluded. Invalid patterns never match.
func (f *Filter) Match(relPath string) bool {
	rel := strings.TrimPrefix(relPath, "./")
	base := path.Base(rel)
	for _, pat := range f.patterns {
		if ok, err := path.Match(pat, base); err == nil && ok {
			return true
		}
		if ok, err := path.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
