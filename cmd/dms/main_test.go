package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ldmathes/dms/internal/state"
)

// stubOllama answers the tags probe and wraps every generate call in
// the code-fenced JSON real models tend to produce.
func stubOllama(t *testing.T, model string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]string{{"name": model}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		suggestion := "```json\n{\"summary\":\"A note.\",\"category\":\"Guides\",\"is_new_category\":false}\n```"
		json.NewEncoder(w).Encode(map[string]string{"response": suggestion})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, docDir string, args ...string) {
	t.Helper()
	app := newApp(io.Discard)
	full := append([]string{"dms", "--doc", docDir}, args...)
	if err := app.Run(full); err != nil {
		t.Fatalf("dms %s: %v", strings.Join(args, " "), err)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	docDir := filepath.Join(t.TempDir(), "Doc")
	stub := stubOllama(t, "phi4:14b")
	t.Setenv("DMS_OLLAMA_HOST", stub.URL)
	t.Setenv("DMS_OLLAMA_MODEL", "phi4:14b")

	runCmd(t, docDir, "init")
	if err := os.WriteFile(filepath.Join(docDir, "note.txt"), []byte("Remember the milk."), 0o644); err != nil {
		t.Fatal(err)
	}

	runCmd(t, docDir, "scan")
	runCmd(t, docDir, "summarize")
	runCmd(t, docDir, "review", "--all")
	runCmd(t, docDir, "apply")

	st, err := state.Load(docDir)
	if err != nil {
		t.Fatal(err)
	}
	doc, ok := st.Documents["./note.txt"]
	if !ok {
		t.Fatalf("note.txt missing from store; have %v", st.SortedPaths())
	}
	if doc.Category != "Guides" || doc.Summary != "A note." {
		t.Errorf("doc = %+v", doc)
	}
	if !doc.SummaryApproved {
		t.Error("applied document must be approved")
	}
	if !strings.HasPrefix(doc.Hash, "sha256:") {
		t.Errorf("hash = %q", doc.Hash)
	}

	index, err := os.ReadFile(filepath.Join(docDir, "index.html"))
	if err != nil {
		t.Fatalf("index.html not rendered: %v", err)
	}
	if !strings.Contains(string(index), "A note.") {
		t.Error("index should list the applied document")
	}
}

func TestRescanAfterApplyIsQuiet(t *testing.T) {
	docDir := filepath.Join(t.TempDir(), "Doc")
	stub := stubOllama(t, "phi4:14b")
	t.Setenv("DMS_OLLAMA_HOST", stub.URL)
	t.Setenv("DMS_OLLAMA_MODEL", "phi4:14b")

	runCmd(t, docDir, "init")
	if err := os.WriteFile(filepath.Join(docDir, "note.txt"), []byte("Same bytes."), 0o644); err != nil {
		t.Fatal(err)
	}
	runCmd(t, docDir, "scan")
	runCmd(t, docDir, "summarize")
	runCmd(t, docDir, "review", "--all")
	runCmd(t, docDir, "apply")

	// An unchanged tree must not re-enter the pipeline.
	runCmd(t, docDir, "scan")
	runCmd(t, docDir, "summarize")
	st, err := state.Load(docDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Documents) != 1 {
		t.Errorf("documents = %d, want 1", len(st.Documents))
	}
}

func TestScanRequiresDocDir(t *testing.T) {
	app := newApp(io.Discard)
	err := app.Run([]string{"dms", "--doc", filepath.Join(t.TempDir(), "absent"), "scan"})
	if err == nil {
		t.Fatal("scanning a missing directory must fail")
	}
}
