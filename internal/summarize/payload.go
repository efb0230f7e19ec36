package summarize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ldmathes/dms/internal/convert"
	"github.com/ldmathes/dms/internal/scan"
	"golang.org/x/net/html"
)

// textExtensions are formats read directly (bounded) for summarization.
var textExtensions = map[string]bool{
	".txt": true, ".md": true, ".markdown": true,
	".html": true, ".htm": true,
	".py": true, ".js": true, ".go": true, ".sh": true,
	".json": true, ".yaml": true, ".yml": true, ".csv": true,
}

// Payload is the text handed to the model for one file, plus where it
// came from.
type Payload struct {
	Content string
	// ReadableVersion is set when a derived conversion supplied the
	// text; it becomes the document's back-reference on apply.
	ReadableVersion string
}

// resolvePayload picks the best text for relPath: a derived conversion
// when one exists and the format needs it, a bounded read of the raw
// file for text formats, or a binary placeholder.
func resolvePayload(docDir, relPath string, maxBytes int) Payload {
	name := filepath.Base(relPath)
	full := filepath.Join(docDir, strings.TrimPrefix(relPath, "./"))
	ext := strings.ToLower(filepath.Ext(name))

	if convert.IsConvertible(name) {
		if content, derived, ok := findConversion(docDir, name, maxBytes); ok {
			return Payload{Content: content, ReadableVersion: derived}
		}
	}

	if textExtensions[ext] {
		data, err := os.ReadFile(full)
		if err != nil {
			return Payload{Content: fmt.Sprintf("[Error reading file: %v]", err)}
		}
		text := string(data)
		if ext == ".html" || ext == ".htm" {
			if extracted := extractHTMLText(text); extracted != "" {
				text = extracted
			}
		}
		return Payload{Content: excerpt(text, maxBytes)}
	}

	return Payload{Content: fmt.Sprintf("[Binary file: %s]", name)}
}

// findConversion looks in the derived subtree for this file's text
// rendition, trying the full-name and stem-named conventions in both
// conversion formats.
func findConversion(docDir, name string, maxBytes int) (content, derivedRel string, ok bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	candidates := []string{
		name + ".txt",
		name + ".md",
		stem + ".txt",
		stem + ".md",
	}
	for _, cand := range candidates {
		p := filepath.Join(docDir, scan.DerivedDir, cand)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		return excerpt(string(data), maxBytes), "./" + scan.DerivedDir + "/" + cand, true
	}
	return "", "", false
}

// extractHTMLText pulls visible text out of an HTML document so markup
// does not eat the payload budget.
func extractHTMLText(src string) string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return sb.String()
}
