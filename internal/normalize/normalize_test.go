package normalize

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase", "Shape Of You", "shape of you"},
		{"punctuation stripped", "Don't Stop Me Now!!!", "dont stop me now"},
		{"whitespace collapsed", "  Bohemian    Rhapsody  ", "bohemian rhapsody"},
		{"feat removed", "Shape of You (feat. Ed Sheeran)!!", "shape of you ed sheeran"},
		{"ft removed", "shape of you ft Ed Sheeran", "shape of you ed sheeran"},
		{"featuring collapses to feat plus remainder", "Song featuring Artist", "song uring artist"},
		{"digits kept", "99 Luftballons", "99 luftballons"},
		{"empty", "", ""},
		{"only punctuation", "?!*&", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	// Pairs that must dedup to the same row.
	pairs := [][2]string{
		{"Shape of You (feat. Ed Sheeran)!!", "shape of you ft Ed Sheeran"},
		{"HUMBLE.", "humble"},
		{"Mr. Brightside", "mr brightside"},
		{"Crazy In Love ft. Jay-Z", "crazy in love jayz"},
	}

	for _, p := range pairs {
		if a, b := Normalize(p[0]), Normalize(p[1]); a != b {
			t.Errorf("expected %q and %q to normalize equally, got %q vs %q", p[0], p[1], a, b)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Some Song (feat. Someone)"
	first := Normalize(in)
	for i := 0; i < 10; i++ {
		if got := Normalize(in); got != first {
			t.Fatalf("Normalize not deterministic: %q vs %q", got, first)
		}
	}
	// Idempotent: normalizing a normalized string is a no-op.
	if again := Normalize(first); again != first {
		t.Errorf("Normalize not idempotent: %q -> %q", first, again)
	}
}

func TestKey(t *testing.T) {
	song, artist := Key("Shape Of You!", "Ed Sheeran")
	if song != "shape of you" {
		t.Errorf("Expected song key %q, got %q", "shape of you", song)
	}
	if artist != "ed sheeran" {
		t.Errorf("Expected artist key %q, got %q", "ed sheeran", artist)
	}
}
