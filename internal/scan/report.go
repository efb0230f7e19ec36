package scan

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/ldmathes/dms/internal/fsutil"
)

// ReportFileName is the persisted scan report inside the Doc directory.
// It is fully overwritten by each scan, never merged across runs.
const ReportFileName = ".dms_scan.json"

// FileEntry describes a file seen on disk but absent from state.
type FileEntry struct {
	Path      string `json:"path"`
	Hash      string `json:"hash"`
	Size      int64  `json:"size"`
	FileMtime string `json:"file_mtime,omitempty"`
}

// ChangeEntry describes a tracked file whose content hash moved.
type ChangeEntry struct {
	Path    string `json:"path"`
	OldHash string `json:"old_hash"`
	NewHash string `json:"new_hash"`
}

// MissingEntry describes a tracked file no longer present on disk.
type MissingEntry struct {
	Path        string `json:"path"`
	WasCategory string `json:"was_category"`
}

// Report is the transient diff between the state store and the
// filesystem, consumed by the convert and summarize stages.
type Report struct {
	Timestamp    string         `json:"timestamp"`
	NewFiles     []FileEntry    `json:"new_files"`
	ChangedFiles []ChangeEntry  `json:"changed_files"`
	MissingFiles []MissingEntry `json:"missing_files"`
}

// Total is the number of detected deltas.
func (r *Report) Total() int {
	return len(r.NewFiles) + len(r.ChangedFiles) + len(r.MissingFiles)
}

// ReportPath returns the scan report location for a Doc directory.
func ReportPath(docDir string) string {
	return filepath.Join(docDir, ReportFileName)
}

// LoadReport reads the last persisted scan report. A missing report
// yields an empty one: downstream stages then simply have nothing to do.
func LoadReport(docDir string) (*Report, error) {
	var r Report
	if err := fsutil.ReadJSON(ReportPath(docDir), &r); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Report{}, nil
		}
		return nil, err
	}
	return &r, nil
}

// Save persists the report atomically, superseding any previous one.
func (r *Report) Save(docDir string) error {
	return fsutil.WriteJSONAtomic(ReportPath(docDir), r)
}
