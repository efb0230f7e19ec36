package serve

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ldmathes/dms/internal/state"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(dir, log), dir
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestIndexServedFromDisk(t *testing.T) {
	s, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>on disk</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "on disk") {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestIndexRenderedWhenMissing(t *testing.T) {
	s, dir := newTestServer(t)
	st := state.New()
	st.Documents["./a.txt"] = state.Document{Hash: "sha256:a", Category: "Guides", Summary: "A note."}
	if err := st.Save(dir); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "A note.") {
		t.Error("live-rendered index should list the document")
	}
}

func TestServeRawFile(t *testing.T) {
	s, dir := newTestServer(t)
	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/files/note.txt")
	if rec.Code != http.StatusOK || rec.Body.String() != "plain text" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestServeMarkdownRendered(t *testing.T) {
	s, dir := newTestServer(t)
	if err := os.MkdirAll(filepath.Join(dir, "md_outputs"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "md_outputs", "doc.md"), []byte("# Title\n\nBody."), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/files/md_outputs/doc.md")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h1") || !strings.Contains(body, "Title") {
		t.Errorf("markdown not rendered: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
}

func TestDotfilesBlocked(t *testing.T) {
	s, dir := newTestServer(t)
	if err := state.New().Save(dir); err != nil {
		t.Fatal(err)
	}
	rec := get(t, s, "/files/"+state.FileName)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("dotfile request status = %d, want 404", rec.Code)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s, dir := newTestServer(t)
	outside := filepath.Join(filepath.Dir(dir), "secret.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Remove(outside) })

	for _, p := range []string{"/files/../secret.txt", "/files/..%2fsecret.txt"} {
		rec := get(t, s, p)
		if rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), "secret") {
			t.Errorf("path %q escaped the doc directory", p)
		}
	}
}
