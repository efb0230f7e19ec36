package summarize

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ldmathes/dms/internal/fsutil"
)

// PendingFileName is the resumable summarization queue; ApprovedFileName
// holds the reviewed subset awaiting apply. Both are disposable caches
// of in-flight work, re-derivable by re-running scan and summarize.
const (
	PendingFileName  = ".dms_pending_summaries.json"
	ApprovedFileName = ".dms_pending_approved.json"
)

// FileRef pins a pending summary to the file identity it was computed
// from.
type FileRef struct {
	Path            string `json:"path"`
	Hash            string `json:"hash"`
	Size            int64  `json:"size"`
	FileMtime       string `json:"file_mtime,omitempty"`
	ReadableVersion string `json:"readable_version,omitempty"`
}

// Pending is one file's proposed summary awaiting human review.
type Pending struct {
	File          FileRef `json:"file"`
	Summary       string  `json:"summary"`
	Category      string  `json:"category"`
	IsNewCategory bool    `json:"is_new_category"`
	Title         string  `json:"title"`
	Timestamp     string  `json:"timestamp"`
}

// PendingList is the persisted queue shape shared by the pending and
// approved files.
type PendingList struct {
	Timestamp string    `json:"timestamp"`
	Summaries []Pending `json:"summaries"`
}

// DonePaths returns the set of file paths already recorded.
func (l *PendingList) DonePaths() map[string]bool {
	done := make(map[string]bool, len(l.Summaries))
	for _, s := range l.Summaries {
		done[s.File.Path] = true
	}
	return done
}

func PendingPath(docDir string) string  { return filepath.Join(docDir, PendingFileName) }
func ApprovedPath(docDir string) string { return filepath.Join(docDir, ApprovedFileName) }

// LoadPending reads the pending queue; missing file means empty queue.
func LoadPending(docDir string) (*PendingList, error) {
	return loadList(PendingPath(docDir))
}

// LoadApproved reads the approved batch; missing file means empty batch.
func LoadApproved(docDir string) (*PendingList, error) {
	return loadList(ApprovedPath(docDir))
}

func loadList(path string) (*PendingList, error) {
	var l PendingList
	if err := fsutil.ReadJSON(path, &l); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &PendingList{}, nil
		}
		return nil, err
	}
	return &l, nil
}

// SavePending checkpoints the queue atomically.
func (l *PendingList) SavePending(docDir string) error {
	return fsutil.WriteJSONAtomic(PendingPath(docDir), l)
}

// SaveApproved persists the approved batch atomically.
func (l *PendingList) SaveApproved(docDir string) error {
	return fsutil.WriteJSONAtomic(ApprovedPath(docDir), l)
}

// RemovePending deletes the pending file if present.
func RemovePending(docDir string) error {
	err := os.Remove(PendingPath(docDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveApproved deletes the approved file if present.
func RemoveApproved(docDir string) error {
	err := os.Remove(ApprovedPath(docDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
