package admin

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ldmathes/dms/internal/render"
	"github.com/ldmathes/dms/internal/state"
	"github.com/ldmathes/dms/internal/ui"
)

// ListCategories prints every category with its document count.
// Categories that only exist on documents are flagged as orphaned.
func ListCategories(out io.Writer, docDir string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	counts := st.CategoryCounts()

	fmt.Fprintf(out, "\n%s\n\n", ui.Header.Render("=== CATEGORIES ==="))
	for _, name := range st.Categories {
		fmt.Fprintf(out, "  %-16s %d document(s)\n", name, counts[name])
	}
	for _, name := range st.OrphanedCategories() {
		fmt.Fprintf(out, "  %-16s %d document(s) %s\n", name, counts[name], ui.Warn.Render("(orphaned)"))
	}
	return nil
}

// AddCategory registers a new empty category.
func AddCategory(log *slog.Logger, out io.Writer, docDir, name string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	if err := st.AddCategory(name); err != nil {
		return err
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("category added", "name", name)
	fmt.Fprintf(out, "%s added category %s\n", ui.OK.Render("+"), name)
	return nil
}

// RenameCategory renames a category and relabels its documents.
func RenameCategory(log *slog.Logger, out io.Writer, docDir, oldName, newName string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	moved, err := st.RenameCategory(oldName, newName)
	if err != nil {
		return err
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("category renamed", "from", oldName, "to", newName, "documents", moved)
	fmt.Fprintf(out, "Renamed %s to %s (%d document(s) relabeled)\n", oldName, newName, moved)
	return render.WriteIndex(docDir, st)
}

// MoveDocument reassigns one document to another category.
func MoveDocument(log *slog.Logger, out io.Writer, docDir, path, category string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	old, err := st.MoveDocument(path, category)
	if err != nil {
		return err
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("document moved", "path", path, "from", old, "to", category)
	fmt.Fprintf(out, "Moved %s: %s -> %s\n", path, old, category)
	return render.WriteIndex(docDir, st)
}

// MoveAll reassigns every document in one category to another.
func MoveAll(log *slog.Logger, out io.Writer, docDir, from, to string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	moved, err := st.MoveAll(from, to)
	if err != nil {
		return err
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("category bulk move", "from", from, "to", to, "documents", moved)
	fmt.Fprintf(out, "Moved %d document(s): %s -> %s\n", moved, from, to)
	return render.WriteIndex(docDir, st)
}

// DeleteCategory removes a category, reassigning its documents to the
// catch-all.
func DeleteCategory(log *slog.Logger, out io.Writer, docDir, name string) error {
	st, err := state.Load(docDir)
	if err != nil {
		return err
	}
	moved, err := st.DeleteCategory(name)
	if err != nil {
		return err
	}
	if err := st.Save(docDir); err != nil {
		return err
	}
	log.Info("category deleted", "name", name, "reassigned", moved)
	fmt.Fprintf(out, "Deleted %s (%d document(s) moved to %s)\n", name, moved, state.CatchAll)
	return render.WriteIndex(docDir, st)
}
