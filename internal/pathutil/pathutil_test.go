package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Song", "My Song"},
		{"  My   Song  ", "My Song"},
		{"AC/DC", "AC-DC"},
		{"Song: Part 2", "Song- Part 2"},
		{`What? "Really" <now>|`, "What Really now"},
		{".hidden", "hidden"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSanitizeNameNormalizesToNFC(t *testing.T) {
	decomposed := norm.NFD.String("Beyoncé")
	got := SanitizeName(decomposed)
	if got != "Beyoncé" {
		t.Fatalf("expected NFC form, got %q", got)
	}
	if got == decomposed {
		t.Fatal("input should have been recomposed")
	}
}

func TestResolveSingleSong(t *testing.T) {
	layout, err := Resolve("/sessions", "Artist", "Song", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if layout.OutputDir != filepath.Join("/sessions", "Artist", "Song") {
		t.Fatalf("OutputDir = %q", layout.OutputDir)
	}
	if layout.SessionFile != filepath.Join(layout.OutputDir, "Song.ptx") {
		t.Fatalf("SessionFile = %q", layout.SessionFile)
	}
}

func TestResolveAlbumMode(t *testing.T) {
	layout, err := Resolve("/sessions", "Artist", "Track 01", "Debut EP")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join("/sessions", "Artist", "Debut EP", "Track 01")
	if layout.OutputDir != want {
		t.Fatalf("OutputDir = %q, want %q", layout.OutputDir, want)
	}
}

func TestResolveRejectsEmptyNames(t *testing.T) {
	if _, err := Resolve("/sessions", "???", "Song", ""); err == nil {
		t.Fatal("artist that sanitizes to empty must be rejected")
	}
	if _, err := Resolve("/sessions", "Artist", "  ", ""); err == nil {
		t.Fatal("blank song must be rejected")
	}
}

func TestEnsureUnique(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Song")

	if got := EnsureUnique(dir); got != dir {
		t.Fatalf("free path should be returned unchanged, got %q", got)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if got := EnsureUnique(dir); got != dir+" 2" {
		t.Fatalf("first collision should suffix 2, got %q", got)
	}

	if err := os.MkdirAll(dir+" 2", 0o755); err != nil {
		t.Fatal(err)
	}
	if got := EnsureUnique(dir); got != dir+" 3" {
		t.Fatalf("second collision should suffix 3, got %q", got)
	}
}
