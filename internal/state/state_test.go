package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testStore() *Store {
	st := New()
	st.Documents["./a.txt"] = Document{Hash: "sha256:aa", Category: "Guides", Summary: "A.", Title: "a"}
	st.Documents["./b.txt"] = Document{Hash: "sha256:bb", Category: "Guides", Summary: "B.", Title: "b"}
	st.Documents["./c.txt"] = Document{Hash: "sha256:cc", Category: "Scripts", Summary: "C.", Title: "c"}
	return st
}

func TestNew_DefaultCategories(t *testing.T) {
	st := New()
	if len(st.Categories) != 6 {
		t.Fatalf("expected 6 default categories, got %d", len(st.Categories))
	}
	if !st.HasCategory(CatchAll) {
		t.Error("expected catch-all category in defaults")
	}
	if len(st.Documents) != 0 {
		t.Error("expected empty documents")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := testStore()
	if err := st.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Documents) != 3 {
		t.Errorf("expected 3 documents, got %d", len(got.Documents))
	}
	doc := got.Documents["./a.txt"]
	if doc.Hash != "sha256:aa" || doc.Category != "Guides" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing state file")
	}
	if !strings.Contains(err.Error(), "dms init") {
		t.Errorf("expected hint to run init, got: %v", err)
	}
}

func TestLoadOrEmpty_MissingFile(t *testing.T) {
	st, err := LoadOrEmpty(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Documents) != 0 || len(st.Categories) != 0 {
		t.Errorf("expected empty store, got %+v", st)
	}
}

func TestLoadOrEmpty_CorruptFileIsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrEmpty(dir); err == nil {
		t.Error("expected error for corrupt state file")
	}
}

func TestAddCategory(t *testing.T) {
	st := New()
	if err := st.AddCategory("Receipts"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.HasCategory("Receipts") {
		t.Error("category not added")
	}
	if err := st.AddCategory("Receipts"); err == nil {
		t.Error("expected duplicate rejection")
	}
}

func TestEnsureCategory_Idempotent(t *testing.T) {
	st := New()
	if !st.EnsureCategory("Receipts") {
		t.Error("expected first ensure to insert")
	}
	if st.EnsureCategory("Receipts") {
		t.Error("expected second ensure to be a no-op")
	}
	n := 0
	for _, c := range st.Categories {
		if c == "Receipts" {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected exactly one entry, got %d", n)
	}
}

func TestRenameCategory(t *testing.T) {
	st := testStore()
	updated, err := st.RenameCategory("Guides", "Handbooks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated != 2 {
		t.Errorf("expected 2 documents updated, got %d", updated)
	}
	if st.HasCategory("Guides") || !st.HasCategory("Handbooks") {
		t.Errorf("category list not updated: %v", st.Categories)
	}
	if st.Documents["./a.txt"].Category != "Handbooks" {
		t.Errorf("document not reassigned: %+v", st.Documents["./a.txt"])
	}
}

func TestRenameCategory_Collision(t *testing.T) {
	st := testStore()
	if _, err := st.RenameCategory("Guides", "Scripts"); err == nil {
		t.Error("expected collision error")
	}
	if _, err := st.RenameCategory("Nope", "X"); err == nil {
		t.Error("expected not-found error")
	}
}

func TestMoveDocument(t *testing.T) {
	st := testStore()
	old, err := st.MoveDocument("./a.txt", "Scripts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if old != "Guides" {
		t.Errorf("old category = %q", old)
	}
	if st.Documents["./a.txt"].Category != "Scripts" {
		t.Error("document not moved")
	}

	if _, err := st.MoveDocument("./missing.txt", "Scripts"); err == nil {
		t.Error("expected error for unknown document")
	}
	if _, err := st.MoveDocument("./a.txt", "NoSuchCategory"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestMoveAll(t *testing.T) {
	st := testStore()
	moved, err := st.MoveAll("Guides", "QuickRefs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 moved, got %d", moved)
	}
	if st.Documents["./b.txt"].Category != "QuickRefs" {
		t.Error("bulk move did not reassign")
	}
}

func TestDeleteCategory_ReassignsToCatchAll(t *testing.T) {
	st := testStore()
	before := st.Documents["./a.txt"]

	moved, err := st.DeleteCategory("Guides")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved != 2 {
		t.Errorf("expected 2 reassigned, got %d", moved)
	}
	if st.HasCategory("Guides") {
		t.Error("category still declared after delete")
	}

	// No data loss: everything except category survives.
	after := st.Documents["./a.txt"]
	if after.Category != CatchAll {
		t.Errorf("expected catch-all, got %q", after.Category)
	}
	if after.Hash != before.Hash || after.Summary != before.Summary || after.Title != before.Title {
		t.Errorf("fields lost on delete: before=%+v after=%+v", before, after)
	}
}

func TestDeleteCategory_CatchAllProtected(t *testing.T) {
	st := testStore()
	if _, err := st.DeleteCategory(CatchAll); err == nil {
		t.Error("expected refusal to delete catch-all")
	}
}

func TestOrphanedCategories(t *testing.T) {
	st := testStore()
	st.Documents["./odd.txt"] = Document{Hash: "sha256:dd", Category: "Mystery"}

	orphans := st.OrphanedCategories()
	if len(orphans) != 1 || orphans[0] != "Mystery" {
		t.Errorf("orphans = %v", orphans)
	}

	counts := st.CategoryCounts()
	if counts["Mystery"] != 1 || counts["Guides"] != 2 {
		t.Errorf("counts = %v", counts)
	}
}

func TestRemoveMissing(t *testing.T) {
	st := testStore()
	removed := st.RemoveMissing([]string{"./a.txt", "./not-there.txt"})
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}
	if _, ok := st.Documents["./a.txt"]; ok {
		t.Error("entry not removed")
	}
}
