package fsutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHashFile_Stable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("hello world\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable: %q vs %q", h1, h2)
	}
	if !strings.HasPrefix(h1, "sha256:") {
		t.Errorf("expected sha256: prefix, got %q", h1)
	}
}

func TestHashFile_ChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	h1, _ := HashFile(path)

	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	h2, _ := HashFile(path)

	if h1 == h2 {
		t.Error("expected different hashes for different content")
	}
}

func TestWriteJSONAtomic_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	in := map[string]int{"a": 1, "b": 2}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out map[string]int
	if err := ReadJSON(path, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Errorf("round trip mismatch: %v", out)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".dms-tmp-") {
			t.Errorf("leftover temp file: %s", e.Name())
		}
	}
}

func TestWriteJSONAtomic_PrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSONAtomic(path, map[string]string{"key": "value"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"key\"") {
		t.Errorf("expected 2-space indented output, got:\n%s", data)
	}
}

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		max       int
		want      string
		truncated bool
	}{
		{"under budget", "one two three", 5, "one two three", false},
		{"exactly budget", "one two three", 3, "one two three", false},
		{"over budget", "one two three four", 3, "one two three" + Ellipsis, true},
		{"single word over", "one two", 1, "one" + Ellipsis, true},
		{"zero budget disables", "one two three", 0, "one two three", false},
		{"empty input", "", 3, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, truncated := TruncateWords(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if truncated != tt.truncated {
				t.Errorf("truncated = %v, want %v", truncated, tt.truncated)
			}
		})
	}
}

func TestTruncateWords_ExactWordCount(t *testing.T) {
	// Truncation law: output has exactly max words plus one marker.
	long := strings.Repeat("word ", 80)
	got, truncated := TruncateWords(long, 50)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("expected ellipsis suffix, got %q", got[len(got)-10:])
	}
	if n := len(strings.Fields(strings.TrimSuffix(got, Ellipsis))); n != 50 {
		t.Errorf("expected exactly 50 words, got %d", n)
	}
}
