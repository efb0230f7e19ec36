// Package admin holds the maintenance operations that sit outside the
// scan/convert/summarize/review/apply pipeline: workspace setup, store
// cleanup, and metadata backfill.
package admin

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ldmathes/dms/internal/config"
	"github.com/ldmathes/dms/internal/fsutil"
	"github.com/ldmathes/dms/internal/ignore"
	"github.com/ldmathes/dms/internal/render"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/ui"
)

// Init prepares docDir for the pipeline: the directory itself, a store
// with the default categories, and editable config and ignore
// templates. Running it twice is harmless.
func Init(log *slog.Logger, out io.Writer, docDir string) error {
	if err := os.MkdirAll(docDir, 0o755); err != nil {
		return fmt.Errorf("create doc directory: %w", err)
	}

	if fsutil.FileExists(state.Path(docDir)) {
		fmt.Fprintf(out, "Already initialized: %s\n", state.Path(docDir))
	} else {
		if err := state.New().Save(docDir); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s created %s with categories: %s\n",
			ui.OK.Render("+"), state.FileName, strings.Join(state.DefaultCategories, ", "))
	}

	cfgPath := filepath.Join(docDir, config.FileName)
	if !fsutil.FileExists(cfgPath) {
		cfg, err := config.Load(docDir)
		if err != nil {
			return err
		}
		if err := fsutil.WriteJSONAtomic(cfgPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s created %s\n", ui.OK.Render("+"), config.FileName)
	}

	if err := ignore.WriteTemplate(docDir); err != nil {
		return err
	}

	if !fsutil.FileExists(render.IndexPath(docDir)) {
		st, err := state.Load(docDir)
		if err != nil {
			return err
		}
		if err := render.WriteIndex(docDir, st); err != nil {
			return err
		}
	}

	log.Info("initialized", "doc_dir", docDir)
	fmt.Fprintf(out, "\nNext step:\n  Drop files into %s and run: dms scan\n", docDir)
	return nil
}

// Cleanup removes store entries whose files have disappeared from
// disk. Missing files are never pruned implicitly; this is the one
// operation that does it, and it asks first unless yes is set.
func Cleanup(log *slog.Logger, out io.Writer, docDir string, yes bool, in io.Reader) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}

	var missing []string
	for _, path := range st.SortedPaths() {
		full := filepath.Join(docDir, strings.TrimPrefix(path, "./"))
		if !fsutil.FileExists(full) {
			missing = append(missing, path)
		}
	}
	if len(missing) == 0 {
		fmt.Fprintln(out, "Nothing to clean: every tracked file exists on disk.")
		return nil
	}

	fmt.Fprintf(out, "%d tracked file(s) no longer exist:\n", len(missing))
	for _, path := range missing {
		fmt.Fprintf(out, "  %s %s (%s)\n", ui.Warn.Render("-"), path, st.Documents[path].Category)
	}

	if !yes {
		fmt.Fprintf(out, "\nRemove these %d entry/entries from the store? [y/N]: ", len(missing))
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			fmt.Fprintln(out, "\nAborted.")
			return nil
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	removed := st.RemoveMissing(missing)
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("cleanup", "removed", removed)
	fmt.Fprintf(out, "Removed %d entry/entries.\n", removed)

	if err := render.WriteIndex(docDir, st); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return nil
}

// BackfillMtime fills in file modification times for store entries
// recorded before mtimes were tracked.
func BackfillMtime(log *slog.Logger, out io.Writer, docDir string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}

	filled, missing := 0, 0
	for _, path := range st.SortedPaths() {
		doc := st.Documents[path]
		if doc.FileMtime != "" {
			continue
		}
		full := filepath.Join(docDir, strings.TrimPrefix(path, "./"))
		info, err := os.Stat(full)
		if err != nil {
			missing++
			continue
		}
		doc.FileMtime = info.ModTime().Format(time.RFC3339)
		st.Documents[path] = doc
		filled++
	}

	if filled == 0 {
		fmt.Fprintf(out, "Nothing to backfill (%d entry/entries missing on disk).\n", missing)
		return nil
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("backfill mtime", "filled", filled, "missing_on_disk", missing)
	fmt.Fprintf(out, "Backfilled %d entry/entries (%d file(s) missing on disk).\n", filled, missing)
	return nil
}
