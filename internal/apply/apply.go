// Package apply commits approved summaries to the document store.
// The merge is all-or-nothing at the file level: the store is written
// atomically, and the approved batch file is only removed once the
// store is safely on disk.
package apply

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ldmathes/dms/internal/render"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/summarize"
	"github.com/ldmathes/dms/internal/ui"
)

// Run merges the approved batch into the store and regenerates the
// index page. A render failure leaves the store update in place.
func Run(log *slog.Logger, out io.Writer, docDir string) error {
	approved, err := summarize.LoadApproved(docDir)
	if err != nil {
		return err
	}
	if len(approved.Summaries) == 0 {
		fmt.Fprintln(out, "No approved summaries to apply. Run: dms review")
		return nil
	}

	st, err := state.LoadOrEmpty(docDir)
	if err != nil {
		return err
	}

	now := time.Now().Format(time.RFC3339)
	newCategories := 0
	for _, p := range approved.Summaries {
		if added := st.EnsureCategory(p.Category); added {
			newCategories++
			fmt.Fprintf(out, "%s new category: %s\n", ui.OK.Render("+"), p.Category)
		}

		doc := st.Documents[p.File.Path]
		doc.Hash = p.File.Hash
		doc.Category = p.Category
		doc.Summary = p.Summary
		doc.SummaryApproved = true
		doc.Title = p.Title
		doc.LastProcessed = now
		if p.File.FileMtime != "" {
			doc.FileMtime = p.File.FileMtime
		}
		if p.File.ReadableVersion != "" {
			doc.ReadableVersion = p.File.ReadableVersion
		}
		st.Documents[p.File.Path] = doc
	}
	st.Metadata.LastApply = now

	if err := st.Save(docDir); err != nil {
		return fmt.Errorf("save document store: %w", err)
	}
	if err := summarize.RemoveApproved(docDir); err != nil {
		return fmt.Errorf("remove approved batch: %w", err)
	}

	log.Info("applied batch", "documents", len(approved.Summaries), "new_categories", newCategories)
	fmt.Fprintf(out, "Applied %d document(s)", len(approved.Summaries))
	if newCategories > 0 {
		fmt.Fprintf(out, ", %d new category/categories", newCategories)
	}
	fmt.Fprintln(out)

	if err := render.WriteIndex(docDir, st); err != nil {
		// The store is already committed; only the page is stale.
		fmt.Fprintf(out, "%s store updated but index rendering failed\n", ui.Warn.Render("!"))
		return fmt.Errorf("render index: %w", err)
	}
	fmt.Fprintf(out, "Index regenerated: %s\n", render.IndexPath(docDir))
	return nil
}
