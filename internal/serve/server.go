// Package serve exposes the Doc directory over HTTP for local
// browsing: the generated index page at the root, and the documents
// themselves under /files/, with markdown rendered to HTML on the fly.
package serve

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"

	"github.com/ldmathes/dms/internal/render"
	"github.com/ldmathes/dms/internal/state"
)

// Server is the read-only HTTP view over one Doc directory.
type Server struct {
	router chi.Router
	docDir string
	log    *slog.Logger
	md     goldmark.Markdown
}

// NewServer builds a server rooted at docDir.
func NewServer(docDir string, log *slog.Logger) *Server {
	s := &Server{
		docDir: docDir,
		log:    log,
		md:     goldmark.New(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Get("/files/*", s.handleFile)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleIndex serves the generated index page, rendering a fresh one
// from the store when no page has been written yet.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	indexPath := render.IndexPath(s.docDir)
	if _, err := os.Stat(indexPath); err == nil {
		http.ServeFile(w, r, indexPath)
		return
	}

	st, err := state.LoadOrEmpty(s.docDir)
	if err != nil {
		http.Error(w, "load document store: "+err.Error(), http.StatusInternalServerError)
		return
	}
	page, err := render.Render(st)
	if err != nil {
		http.Error(w, "render index: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleFile serves a document from the Doc directory. Markdown is
// rendered to HTML; everything else is served as-is. Dotfiles and
// paths escaping the Doc directory are refused.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	clean, ok := s.resolve(rel)
	if !ok {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(s.docDir, filepath.FromSlash(clean))
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	ext := strings.ToLower(path.Ext(clean))
	if ext == ".md" || ext == ".markdown" {
		s.serveMarkdown(w, full)
		return
	}
	http.ServeFile(w, r, full)
}

// resolve normalizes a requested path and rejects anything hidden or
// outside the served tree.
func (s *Server) resolve(rel string) (string, bool) {
	clean := path.Clean("/" + rel)
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", false
	}
	for _, part := range strings.Split(clean, "/") {
		if strings.HasPrefix(part, ".") {
			return "", false
		}
	}
	return clean, true
}

func (s *Server) serveMarkdown(w http.ResponseWriter, full string) {
	src, err := os.ReadFile(full)
	if err != nil {
		http.Error(w, "read file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n",
		html.EscapeString(filepath.Base(full)))
	if err := s.md.Convert(src, w); err != nil {
		s.log.Warn("markdown conversion failed", "path", full, "error", err)
		fmt.Fprintf(w, "<pre>%s</pre>", html.EscapeString(string(src)))
	}
	fmt.Fprint(w, "\n</body></html>\n")
}
