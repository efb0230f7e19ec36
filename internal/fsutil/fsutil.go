// Package fsutil holds the small filesystem helpers shared by every
// pipeline stage: atomic JSON persistence, content hashing, and the
// word-budget truncation applied to summaries.
package fsutil

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ellipsis marks a summary that was cut at the word budget.
const Ellipsis = "…"

// FileExists reports whether path exists and is stat-able.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadJSON loads a JSON file into v.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteJSONAtomic writes v as pretty-printed JSON via a temp file in the
// same directory followed by a rename, so readers never observe a
// partially written artifact.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data via a temp file in the same directory
// followed by a rename.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".dms-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// HashFile computes the content fingerprint of a file as
// "sha256:<hex>" over the full byte stream.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// TruncateWords cuts s to at most max words, appending the ellipsis
// marker when anything was dropped. Returns the (possibly shortened)
// text and whether truncation happened.
func TruncateWords(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	words := strings.Fields(s)
	if len(words) <= max {
		return s, false
	}
	return strings.Join(words[:max], " ") + Ellipsis, true
}
