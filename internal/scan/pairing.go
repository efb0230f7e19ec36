package scan

import (
	"sort"
	"strings"
)

// Confidence grades how a derived artifact was matched to its original.
type Confidence string

const (
	// MatchExact means the derived name minus its .txt/.md suffix equals
	// the original's file name ("report.pdf.md" -> "report.pdf").
	MatchExact Confidence = "exact"
	// MatchPrefix means the original's name merely starts with the
	// stripped base ("IMG_4666.txt" -> "IMG_4666.jpeg"). A heuristic:
	// stem-named conversion outputs drop the original extension.
	MatchPrefix Confidence = "prefix"
)

// Association links a derived conversion output back to an original file.
type Association struct {
	Original   string // original file name
	Derived    string // derived file name
	Confidence Confidence
}

// derivedBase strips the conversion suffix from a derived file name.
// Returns false when the name is not a conversion artifact.
func derivedBase(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, ".txt"):
		return strings.TrimSuffix(name, ".txt"), true
	case strings.HasSuffix(name, ".md"):
		return strings.TrimSuffix(name, ".md"), true
	}
	return "", false
}

// MatchDerived resolves the original file a derived .txt/.md artifact
// belongs to. An exact match on the stripped base wins; otherwise the
// shortest original name starting with the base is chosen, which keeps
// the prefix heuristic deterministic when several candidates qualify.
// Returns false for orphans (no plausible original).
func MatchDerived(derived string, originals []string) (Association, bool) {
	base, ok := derivedBase(derived)
	if !ok || base == "" {
		return Association{}, false
	}

	var prefixMatches []string
	for _, orig := range originals {
		if orig == base {
			return Association{Original: orig, Derived: derived, Confidence: MatchExact}, true
		}
		if strings.HasPrefix(orig, base) {
			prefixMatches = append(prefixMatches, orig)
		}
	}
	if len(prefixMatches) == 0 {
		return Association{}, false
	}
	sort.Slice(prefixMatches, func(i, j int) bool {
		if len(prefixMatches[i]) != len(prefixMatches[j]) {
			return len(prefixMatches[i]) < len(prefixMatches[j])
		}
		return prefixMatches[i] < prefixMatches[j]
	})
	return Association{Original: prefixMatches[0], Derived: derived, Confidence: MatchPrefix}, true
}
