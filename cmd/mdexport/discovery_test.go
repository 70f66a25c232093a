package main

import (
	"errors"
	"path/filepath"
	"testing"

	mdexport "github.com/alnah/go-mdexport"
)

// ---------------------------------------------------------------------------
// TestDiscoverNotes - Files and directory walks
// ---------------------------------------------------------------------------

func TestDiscoverNotes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeNotes(t, dir, map[string]string{
		"A.md":              "a",
		"b/B.markdown":      "b",
		"b/C.MD":            "c",
		"b/image.png":       "x",
		".obsidian/conf.md": "x",
		"b/.hidden.md":      "x",
	})

	notes, err := discoverNotes([]string{dir})
	if err != nil {
		t.Fatalf("discoverNotes() error: %v", err)
	}

	got := map[string]string{}
	for _, n := range notes {
		rel, _ := filepath.Rel(dir, n.Source)
		got[filepath.ToSlash(rel)] = n.Base
	}
	for _, want := range []string{"A.md", "b/B.markdown", "b/C.MD"} {
		if base, ok := got[want]; !ok || base != dir {
			t.Errorf("missing %s (base %q) in %v", want, base, got)
		}
	}
	if len(got) != 3 {
		t.Errorf("got %v, want 3 notes", got)
	}
}

func TestDiscoverNotes_ExplicitFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeNotes(t, dir, map[string]string{"N.md": "n", "x.txt": "x"})

	notes, err := discoverNotes([]string{filepath.Join(dir, "N.md")})
	if err != nil || len(notes) != 1 || notes[0].Base != "" {
		t.Errorf("discoverNotes() = %+v, %v", notes, err)
	}

	if _, err := discoverNotes([]string{filepath.Join(dir, "x.txt")}); !errors.Is(err, ErrInvalidExtension) {
		t.Errorf("error = %v, want ErrInvalidExtension", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveOutputPath
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()

	docx, err := mdexport.LookupFormat("docx")
	if err != nil {
		t.Fatal(err)
	}
	vault := filepath.FromSlash("/vault")
	out := filepath.FromSlash("/out")

	tests := []struct {
		name      string
		note      noteFile
		outputDir string
		want      string
	}{
		{
			name: "no output dir",
			note: noteFile{Source: filepath.Join(vault, "A.md")},
			want: "",
		},
		{
			name:      "explicit file",
			note:      noteFile{Source: filepath.Join(vault, "sub", "A.md")},
			outputDir: out,
			want:      filepath.Join(out, "A.docx"),
		},
		{
			name:      "keeps relative directory",
			note:      noteFile{Source: filepath.Join(vault, "sub", "A.md"), Base: vault},
			outputDir: out,
			want:      filepath.Join(out, "sub", "A.docx"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveOutputPath(tt.note, tt.outputDir, docx); got != tt.want {
				t.Errorf("resolveOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}
