package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// htmlRenderer treats note source as already-rendered HTML.
type htmlRenderer struct {
	err   error
	calls int
}

func (r *htmlRenderer) Render(_ context.Context, source, _ string) (*Fragment, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return ParseFragment(source)
}

func mustFragment(t *testing.T, content string) *Fragment {
	t.Helper()

	frag, err := ParseFragment(content)
	if err != nil {
		t.Fatalf("ParseFragment() error: %v", err)
	}
	return frag
}

func mustHTML(t *testing.T, frag *Fragment) string {
	t.Helper()

	out, err := frag.HTML()
	if err != nil {
		t.Fatalf("HTML() error: %v", err)
	}
	return out
}

// writeNotes creates files under dir; keys are slash-separated relative paths.
func writeNotes(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestProcessor(t *testing.T, opts ...ProcessorOption) *Processor {
	t.Helper()

	p, err := NewProcessor(&htmlRenderer{}, opts...)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	return p
}

func linkSettings(mode LinkMode, ext string) Settings {
	s := DefaultSettings()
	s.LinkMode = mode
	s.AddExtension = ext
	return s
}
