package scan

import "testing"

func TestMatchDerived(t *testing.T) {
	originals := []string{
		"IMG_4666.jpeg",
		"IMG_4666 copy.jpeg",
		"report.pdf",
		"notes.txt",
	}

	tests := []struct {
		name       string
		derived    string
		wantOrig   string
		wantConf   Confidence
		wantFound  bool
	}{
		{"full-name txt output", "IMG_4666.jpeg.txt", "IMG_4666.jpeg", MatchExact, true},
		{"stem-named txt output", "IMG_4666.txt", "IMG_4666.jpeg", MatchPrefix, true},
		{"stem with space", "IMG_4666 copy.txt", "IMG_4666 copy.jpeg", MatchPrefix, true},
		{"pdf markdown output", "report.pdf.md", "report.pdf", MatchExact, true},
		{"stem-named pdf output", "report.md", "report.pdf", MatchPrefix, true},
		{"orphan", "nothing-here.txt", "", "", false},
		{"not a conversion artifact", "photo.jpeg", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assoc, found := MatchDerived(tt.derived, originals)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if assoc.Original != tt.wantOrig {
				t.Errorf("original = %q, want %q", assoc.Original, tt.wantOrig)
			}
			if assoc.Confidence != tt.wantConf {
				t.Errorf("confidence = %q, want %q", assoc.Confidence, tt.wantConf)
			}
		})
	}
}

func TestMatchDerived_PrefersShortestPrefix(t *testing.T) {
	// Deterministic rule: among prefix candidates the shortest name wins.
	originals := []string{"scan.jpeg.backup", "scan.jpeg"}
	assoc, found := MatchDerived("scan.txt", originals)
	if !found {
		t.Fatal("expected a match")
	}
	if assoc.Original != "scan.jpeg" {
		t.Errorf("expected shortest candidate, got %q", assoc.Original)
	}
}

func TestMatchDerived_ExactBeatsPrefix(t *testing.T) {
	originals := []string{"scan", "scan.jpeg"}
	assoc, found := MatchDerived("scan.txt", originals)
	if !found {
		t.Fatal("expected a match")
	}
	if assoc.Confidence != MatchExact || assoc.Original != "scan" {
		t.Errorf("expected exact match on %q, got %+v", "scan", assoc)
	}
}
