package mdexport

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/alnah/go-mdexport/internal/pandoc"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

// fakeConverter stands in for the converter process. It records what the
// exporter handed over and writes the -o file when write is non-nil.
type fakeConverter struct {
	stdout []byte
	stderr string
	err    error
	write  []byte

	calls    int
	args     []string
	dir      string
	stdin    string
	hasStdin bool
	metadata string
}

func (f *fakeConverter) Run(_ context.Context, cmd pandoc.Command) ([]byte, string, error) {
	f.calls++
	f.args = cmd.Args
	f.dir = cmd.Dir
	if cmd.Stdin != nil {
		f.hasStdin = true
		data, _ := io.ReadAll(cmd.Stdin)
		f.stdin = string(data)
	}
	// The metadata file is removed once the run returns.
	if i := slices.Index(cmd.Args, "--metadata-file"); i >= 0 {
		data, _ := os.ReadFile(cmd.Args[i+1])
		f.metadata = string(data)
	}
	if f.write != nil {
		if i := slices.Index(cmd.Args, "-o"); i >= 0 {
			_ = os.WriteFile(cmd.Args[i+1], f.write, 0o644)
		}
	}
	return f.stdout, f.stderr, f.err
}

func lookPandoc(name string) (string, error) {
	if name == pandoc.DefaultBinary {
		return "/usr/bin/pandoc", nil
	}
	return "", errors.New("executable file not found in $PATH")
}

type fakeRasterizer struct {
	calls int
	err   error
}

func (r *fakeRasterizer) Rasterize(_ context.Context, _ string, _ float64) (*Raster, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &Raster{PNG: []byte("png"), Width: 10, Height: 10}, nil
}

type fakePrinter struct {
	document string
	pdf      []byte
	err      error
}

func (p *fakePrinter) PrintPDF(_ context.Context, document string) ([]byte, error) {
	p.document = document
	return p.pdf, p.err
}

type errRenderer struct{ err error }

func (r errRenderer) Render(context.Context, string, string) (*Fragment, error) {
	return nil, r.err
}

type panicRenderer struct{}

func (panicRenderer) Render(context.Context, string, string) (*Fragment, error) {
	panic("renderer exploded")
}

// newTestExporter builds an Exporter that never launches a browser or a
// real converter.
func newTestExporter(t *testing.T, conv *fakeConverter, opts ...Option) *Exporter {
	t.Helper()

	if conv == nil {
		conv = &fakeConverter{}
	}
	base := []Option{
		WithRasterizer(&fakeRasterizer{}),
		withPrinter(&fakePrinter{pdf: []byte("%PDF-1.7")}),
		withConverterOptions(pandoc.WithRunner(conv), pandoc.WithLookPath(lookPandoc)),
		withClock(func() time.Time { return fixedNow }),
	}
	e, err := NewExporter(append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewExporter() error: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// writeNote writes a note and returns its path.
func writeNote(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var _ pipeline.Rasterizer = (*fakeRasterizer)(nil)
