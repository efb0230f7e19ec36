// Package render turns the document store into the static index.html
// that sits at the top of the Doc directory. Rendering is a pure
// function of the store: the same store always produces the same page.
package render

import (
	"fmt"
	"html/template"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ldmathes/dms/internal/fsutil"
	"github.com/ldmathes/dms/internal/state"
)

const IndexFileName = "index.html"

type docView struct {
	Title           string
	Path            string
	Summary         string
	ReadableVersion string
	LastProcessed   string
}

type sectionView struct {
	Name     string
	Orphaned bool
	Docs     []docView
}

type pageView struct {
	Generated string
	DocCount  int
	Sections  []sectionView
}

// Render produces the index page for st.
func Render(st *state.Store) ([]byte, error) {
	page := buildPage(st, time.Now())
	var sb strings.Builder
	if err := indexTemplate.Execute(&sb, page); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return []byte(sb.String()), nil
}

// WriteIndex renders st and writes docDir/index.html atomically.
func WriteIndex(docDir string, st *state.Store) error {
	data, err := Render(st)
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(IndexPath(docDir), data)
}

func IndexPath(docDir string) string {
	return filepath.Join(docDir, IndexFileName)
}

// buildPage groups documents by category. Known categories come first
// in store order; categories that only exist on documents follow,
// marked orphaned so the page can flag them.
func buildPage(st *state.Store, now time.Time) pageView {
	byCategory := make(map[string][]docView)
	for _, path := range st.SortedPaths() {
		doc := st.Documents[path]
		title := doc.Title
		if title == "" {
			base := filepath.Base(path)
			title = strings.TrimSuffix(base, filepath.Ext(base))
		}
		byCategory[doc.Category] = append(byCategory[doc.Category], docView{
			Title:           title,
			Path:            strings.TrimPrefix(path, "./"),
			Summary:         doc.Summary,
			ReadableVersion: strings.TrimPrefix(doc.ReadableVersion, "./"),
			LastProcessed:   doc.LastProcessed,
		})
	}

	page := pageView{Generated: now.Format("2006-01-02 15:04")}
	for _, name := range st.Categories {
		docs := byCategory[name]
		if len(docs) == 0 {
			continue
		}
		page.Sections = append(page.Sections, newSection(name, docs, false))
		page.DocCount += len(docs)
		delete(byCategory, name)
	}

	var orphaned []string
	for name := range byCategory {
		orphaned = append(orphaned, name)
	}
	sort.Strings(orphaned)
	for _, name := range orphaned {
		docs := byCategory[name]
		page.Sections = append(page.Sections, newSection(name, docs, true))
		page.DocCount += len(docs)
	}
	return page
}

func newSection(name string, docs []docView, orphaned bool) sectionView {
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Title != docs[j].Title {
			return docs[i].Title < docs[j].Title
		}
		return docs[i].Path < docs[j].Path
	})
	return sectionView{Name: name, Orphaned: orphaned, Docs: docs}
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Document Index</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
h1 { border-bottom: 2px solid #ddd; padding-bottom: .3rem; }
h2 { margin-top: 2rem; color: #345; }
.orphaned h2::after { content: " (uncategorized)"; color: #a60; font-size: .8em; }
.doc { margin: .8rem 0; padding: .6rem .8rem; border-left: 3px solid #cde; background: #fafbfc; }
.doc .title { font-weight: 600; }
.doc .summary { margin: .3rem 0 0; color: #444; }
.doc .links { font-size: .85em; margin-top: .3rem; }
.doc .links a { color: #267; margin-right: .8rem; }
.meta { color: #888; font-size: .85em; }
</style>
</head>
<body>
<h1>Document Index</h1>
<p class="meta">{{.DocCount}} document(s) &middot; generated {{.Generated}}</p>
{{range .Sections}}<section{{if .Orphaned}} class="orphaned"{{end}}>
<h2>{{.Name}}</h2>
{{range .Docs}}<div class="doc">
<div class="title">{{.Title}}</div>
{{if .Summary}}<p class="summary">{{.Summary}}</p>{{end}}
<div class="links"><a href="files/{{.Path}}">original</a>{{if .ReadableVersion}}<a href="files/{{.ReadableVersion}}">readable</a>{{end}}{{if .LastProcessed}}<span class="meta">processed {{.LastProcessed}}</span>{{end}}</div>
</div>
{{end}}</section>
{{end}}</body>
</html>
`))
