// Package scan walks the Doc directory, diffs it against the state
// store, and pairs conversion outputs with their originals. The scanner
// never mutates the state store; its only output is the scan report.
package scan

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ldmathes/dms/internal/config"
	"github.com/ldmathes/dms/internal/fsutil"
	"github.com/ldmathes/dms/internal/ignore"
	"github.com/ldmathes/dms/internal/state"
)

// DerivedDir is the subtree holding conversion outputs. Files under it
// are never scanned as first-class documents.
const DerivedDir = "md_outputs"

// Result is one scan cycle's findings.
type Result struct {
	Report *Report

	// ReadableVersions maps an original's relative path to its derived
	// text/markdown artifact, discovered by filename pairing.
	ReadableVersions map[string]string

	// Orphans are derived files with no matching original. They are
	// skipped, not errors.
	Orphans []string

	// Unreadable lists files that could not be hashed; the scan
	// continues past them.
	Unreadable []string

	Ignored int
}

// Scan enumerates docDir and classifies files against st. One consistent
// directory listing and one state snapshot feed the whole classification.
func Scan(docDir string, st *state.Store, filt *ignore.Filter, log *slog.Logger) (*Result, error) {
	if _, err := os.Stat(docDir); err != nil {
		return nil, fmt.Errorf("doc directory: %w", err)
	}

	res := &Result{
		Report:           &Report{Timestamp: time.Now().Format(time.RFC3339)},
		ReadableVersions: map[string]string{},
	}

	disk := map[string]string{} // rel path -> absolute path
	err := filepath.WalkDir(docDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != docDir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(name, ".") {
			return nil
		}
		rel, err := filepath.Rel(docDir, p)
		if err != nil {
			return err
		}
		relKey := "./" + filepath.ToSlash(rel)
		switch relKey {
		// Pipeline artifacts living in the Doc directory, not documents.
		case "./index.html", "./" + ignore.FileName, "./" + config.FileName:
			return nil
		}
		if filt.Match(relKey) {
			res.Ignored++
			return nil
		}
		disk[relKey] = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk doc directory: %w", err)
	}

	derivedPrefix := "./" + DerivedDir + "/"
	var originalPaths, derivedPaths []string
	for rel := range disk {
		if strings.HasPrefix(rel, derivedPrefix) {
			derivedPaths = append(derivedPaths, rel)
		} else {
			originalPaths = append(originalPaths, rel)
		}
	}
	sort.Strings(originalPaths)
	sort.Strings(derivedPaths)

	// Pair derived artifacts with originals by base name.
	originalNames := make([]string, 0, len(originalPaths))
	nameToPath := map[string]string{}
	for _, rel := range originalPaths {
		name := filepath.Base(rel)
		originalNames = append(originalNames, name)
		if _, ok := nameToPath[name]; !ok {
			nameToPath[name] = rel
		}
	}
	for _, rel := range derivedPaths {
		assoc, ok := MatchDerived(filepath.Base(rel), originalNames)
		if !ok {
			res.Orphans = append(res.Orphans, rel)
			continue
		}
		orig := nameToPath[assoc.Original]
		if _, taken := res.ReadableVersions[orig]; !taken {
			res.ReadableVersions[orig] = rel
		}
	}

	// New vs changed.
	for _, rel := range originalPaths {
		abs := disk[rel]
		hash, err := fsutil.HashFile(abs)
		if err != nil {
			log.Warn("cannot hash file, skipping", "path", rel, "error", err)
			res.Unreadable = append(res.Unreadable, rel)
			continue
		}

		doc, tracked := st.Documents[rel]
		if !tracked {
			entry := FileEntry{Path: rel, Hash: hash}
			if info, err := os.Stat(abs); err == nil {
				entry.Size = info.Size()
				entry.FileMtime = info.ModTime().Format(time.RFC3339)
			}
			res.Report.NewFiles = append(res.Report.NewFiles, entry)
			continue
		}
		// An empty stored hash means "not yet computed", not a change.
		if doc.Hash != "" && doc.Hash != hash {
			res.Report.ChangedFiles = append(res.Report.ChangedFiles, ChangeEntry{
				Path:    rel,
				OldHash: doc.Hash,
				NewHash: hash,
			})
		}
	}

	// Missing: tracked but gone from disk.
	for _, rel := range st.SortedPaths() {
		if _, onDisk := disk[rel]; !onDisk {
			was := st.Documents[rel].Category
			if was == "" {
				was = "Unknown"
			}
			res.Report.MissingFiles = append(res.Report.MissingFiles, MissingEntry{
				Path:        rel,
				WasCategory: was,
			})
		}
	}

	return res, nil
}
