package scan

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/ldmathes/dms/internal/ignore"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/ui"
)

const previewLimit = 10

// Run executes one scan cycle: load state and ignore list, diff the
// directory, print the operator report, and persist the scan report
// unless statusOnly was requested or nothing changed.
func Run(log *slog.Logger, out io.Writer, docDir string, statusOnly bool) error {
	st, err := state.LoadOrEmpty(docDir)
	if err != nil {
		return err
	}
	filt, err := ignore.Load(docDir)
	if err != nil {
		return err
	}

	res, err := Scan(docDir, st, filt, log)
	if err != nil {
		return err
	}

	printReport(out, res, statusOnly)

	if res.Report.Total() == 0 || statusOnly {
		return nil
	}

	if err := res.Report.Save(docDir); err != nil {
		return fmt.Errorf("save scan report: %w", err)
	}
	fmt.Fprintf(out, "\nScan results saved to %s\n", ReportPath(docDir))
	printNextSteps(out, res)
	return nil
}

func printReport(out io.Writer, res *Result, statusOnly bool) {
	r := res.Report
	fmt.Fprintf(out, "\n%s\n\n", ui.Header.Render("=== DMS SCAN REPORT ==="))

	fmt.Fprintf(out, "New files: %d\n", len(r.NewFiles))
	if !statusOnly {
		for i, f := range r.NewFiles {
			if i == previewLimit {
				fmt.Fprintf(out, "  ... and %d more\n", len(r.NewFiles)-previewLimit)
				break
			}
			fmt.Fprintf(out, "  + %s\n", f.Path)
		}
	}

	fmt.Fprintf(out, "\nChanged files: %d\n", len(r.ChangedFiles))
	if !statusOnly {
		for i, f := range r.ChangedFiles {
			if i == previewLimit {
				fmt.Fprintf(out, "  ... and %d more\n", len(r.ChangedFiles)-previewLimit)
				break
			}
			fmt.Fprintf(out, "  ~ %s\n", f.Path)
		}
	}

	fmt.Fprintf(out, "\nMissing files: %d\n", len(r.MissingFiles))
	if !statusOnly {
		for i, f := range r.MissingFiles {
			if i == previewLimit {
				fmt.Fprintf(out, "  ... and %d more\n", len(r.MissingFiles)-previewLimit)
				break
			}
			fmt.Fprintf(out, "  - %s (was %s)\n", f.Path, f.WasCategory)
		}
	}

	if res.Ignored > 0 {
		fmt.Fprintf(out, "\nIgnored files: %d\n", res.Ignored)
	}
	if len(res.Unreadable) > 0 {
		fmt.Fprintf(out, "\nUnreadable files (skipped): %d\n", len(res.Unreadable))
		for _, p := range res.Unreadable {
			fmt.Fprintf(out, "  ! %s\n", p)
		}
	}
	if len(res.Orphans) > 0 {
		fmt.Fprintf(out, "\nOrphaned conversion outputs (no original, skipped): %d\n", len(res.Orphans))
	}

	fmt.Fprintf(out, "\nTotal changes: %d\n", r.Total())
	if r.Total() == 0 {
		fmt.Fprintln(out, ui.OK.Render("No changes detected. Index is up to date."))
	}
}

// hasConvertible mirrors the convert stage's extension registry closely
// enough to suggest the right next step.
func hasConvertible(r *Report) bool {
	for _, f := range r.NewFiles {
		if convertibleExt(f.Path) {
			return true
		}
	}
	for _, f := range r.ChangedFiles {
		if convertibleExt(f.Path) {
			return true
		}
	}
	return false
}

func convertibleExt(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tiff",
		".pdf", ".docx", ".doc", ".xlsx":
		return true
	}
	return false
}

func printNextSteps(out io.Writer, res *Result) {
	fmt.Fprintf(out, "\nNext steps:\n")
	if hasConvertible(res.Report) {
		fmt.Fprintln(out, "  1. Run: dms convert     (produce text for images/PDFs/DOCX)")
		fmt.Fprintln(out, "  2. Run: dms summarize")
	} else {
		fmt.Fprintln(out, "  1. Run: dms summarize")
	}
	fmt.Fprintln(out, "  3. Run: dms review")
	fmt.Fprintln(out, "  4. Run: dms apply")

	if len(res.Report.MissingFiles) > 0 {
		fmt.Fprintf(out, "\n%s\n", ui.Warn.Render("Missing files detected."))
		fmt.Fprintln(out, "  These entries are in the index but no longer on disk.")
		fmt.Fprintln(out, "  To remove them explicitly, run: dms cleanup")
	}
}
