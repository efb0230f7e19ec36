// Package state owns the persisted document manifest (.dms_state.json):
// the single source of truth every pipeline stage reads and exactly one
// stage at a time writes. Mutations are whole-file: load, change in
// memory, write back atomically.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/ldmathes/dms/internal/fsutil"
)

// FileName is the manifest file inside the Doc directory.
const FileName = ".dms_state.json"

// CatchAll is the category documents fall back to when theirs is
// unknown or deleted.
const CatchAll = "Junk"

// DefaultCategories seeds a freshly initialized store.
var DefaultCategories = []string{"Guides", "Workflows", "Scripts", "Models", "QuickRefs", CatchAll}

// Document is one tracked file, keyed in the store by its normalized
// "./relative" path.
type Document struct {
	Hash            string `json:"hash"`
	Category        string `json:"category"`
	Summary         string `json:"summary"`
	SummaryApproved bool   `json:"summary_approved,omitempty"`
	Title           string `json:"title"`
	FileMtime       string `json:"file_mtime,omitempty"`
	ReadableVersion string `json:"readable_version,omitempty"`
	LastProcessed   string `json:"last_processed,omitempty"`
}

type Metadata struct {
	Created   string `json:"created"`
	LastScan  string `json:"last_scan"`
	LastApply string `json:"last_apply"`
}

// Store is the root aggregate persisted as .dms_state.json.
type Store struct {
	Metadata   Metadata `json:"metadata"`
	Categories []string `json:"categories"`
	// ArchivedCategories still hold documents but are withheld from the
	// summarizer's candidate labels.
	ArchivedCategories []string            `json:"archived_categories,omitempty"`
	Documents          map[string]Document `json:"documents"`
}

// New returns an initialized store with the default category list.
func New() *Store {
	return &Store{
		Metadata:   Metadata{Created: time.Now().Format(time.RFC3339)},
		Categories: append([]string(nil), DefaultCategories...),
		Documents:  map[string]Document{},
	}
}

// Path returns the state file location for a Doc directory.
func Path(docDir string) string {
	return filepath.Join(docDir, FileName)
}

// Load reads the store from docDir. A missing state file is a fatal
// configuration error for every stage except scan; those use LoadOrEmpty.
func Load(docDir string) (*Store, error) {
	var st Store
	if err := fsutil.ReadJSON(Path(docDir), &st); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s not found (run: dms init)", Path(docDir))
		}
		return nil, err
	}
	if st.Documents == nil {
		st.Documents = map[string]Document{}
	}
	return &st, nil
}

// LoadOrEmpty reads the store, substituting an empty one when the file
// does not exist yet.
func LoadOrEmpty(docDir string) (*Store, error) {
	st, err := Load(docDir)
	if err != nil {
		if !fsutil.FileExists(Path(docDir)) {
			return &Store{Documents: map[string]Document{}}, nil
		}
		return nil, err
	}
	return st, nil
}

// Save writes the store back to docDir atomically.
func (s *Store) Save(docDir string) error {
	return fsutil.WriteJSONAtomic(Path(docDir), s)
}

// HasCategory reports whether name is in the declared category list.
func (s *Store) HasCategory(name string) bool {
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// CandidateCategories returns the declared categories minus archived
// ones, in declaration order. These are the labels offered to the
// summarization model.
func (s *Store) CandidateCategories() []string {
	archived := make(map[string]bool, len(s.ArchivedCategories))
	for _, c := range s.ArchivedCategories {
		archived[c] = true
	}
	var out []string
	for _, c := range s.Categories {
		if !archived[c] {
			out = append(out, c)
		}
	}
	return out
}

// CategoryCounts returns the number of documents per referenced category,
// including categories absent from the declared list.
func (s *Store) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, doc := range s.Documents {
		counts[doc.Category]++
	}
	return counts
}

// OrphanedCategories returns category names referenced by documents but
// missing from the declared list, sorted. They are reported to the
// operator, never repaired silently.
func (s *Store) OrphanedCategories() []string {
	var orphans []string
	for cat := range s.CategoryCounts() {
		if !s.HasCategory(cat) {
			orphans = append(orphans, cat)
		}
	}
	sort.Strings(orphans)
	return orphans
}

// SortedPaths returns document paths in stable order.
func (s *Store) SortedPaths() []string {
	paths := make([]string, 0, len(s.Documents))
	for p := range s.Documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// RemoveMissing deletes the given document entries from the store and
// returns how many were actually present. Callers gate this behind
// explicit operator confirmation; nothing prunes entries automatically.
func (s *Store) RemoveMissing(paths []string) int {
	removed := 0
	for _, p := range paths {
		if _, ok := s.Documents[p]; ok {
			delete(s.Documents, p)
			removed++
		}
	}
	return removed
}
