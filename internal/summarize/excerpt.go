package summarize

import "strings"

// excerpt bounds text to maxBytes for the model payload, preferring to
// cut at a paragraph boundary, then a sentence end, then a word break.
// A hard byte cut is the last resort for unbroken text.
func excerpt(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	head := s[:maxBytes]

	if idx := strings.LastIndex(head, "\n\n"); idx > maxBytes/2 {
		return strings.TrimSpace(head[:idx])
	}
	if idx := lastSentenceEnd(head); idx > maxBytes/2 {
		return strings.TrimSpace(head[:idx])
	}
	if idx := strings.LastIndexAny(head, " \t\n"); idx > maxBytes/2 {
		return strings.TrimSpace(head[:idx])
	}
	return head
}

// lastSentenceEnd finds the byte offset just past the final sentence
// terminator in s, or -1 when there is none.
func lastSentenceEnd(s string) int {
	end := -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' {
				end = i + 1
			}
		}
	}
	return end
}
