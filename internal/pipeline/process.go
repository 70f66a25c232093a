package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// ErrNilRenderer indicates a Processor was built without a renderer.
var ErrNilRenderer = errors.New("pipeline: nil renderer")

// Processor runs the post-processing stages on rendered fragments.
// It holds no per-document state and may be shared by sequential exports.
type Processor struct {
	renderer   Renderer
	rasterizer Rasterizer
	logger     *slog.Logger
	readFile   func(string) ([]byte, error)
	stat       func(string) (fs.FileInfo, error)
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRasterizer sets the rasterizer used for non-HTML formats.
// Without one, diagrams stay vector in every format.
func WithRasterizer(r Rasterizer) ProcessorOption {
	return func(p *Processor) { p.rasterizer = r }
}

// WithLogger sets the logger receiving degraded-path warnings.
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// withFS replaces file access (tests).
func withFS(readFile func(string) ([]byte, error), stat func(string) (fs.FileInfo, error)) ProcessorOption {
	return func(p *Processor) {
		p.readFile = readFile
		p.stat = stat
	}
}

// NewProcessor creates a Processor rendering embeds with renderer.
func NewProcessor(renderer Renderer, opts ...ProcessorOption) (*Processor, error) {
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	p := &Processor{
		renderer: renderer,
		logger:   slog.New(slog.DiscardHandler),
		readFile: os.ReadFile,
		stat:     os.Stat,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Render renders source with the host renderer and post-processes it.
// A renderer failure is returned as is; everything else degrades into
// warnings.
func (p *Processor) Render(ctx context.Context, dc DocumentContext, source string) (*Fragment, []string, error) {
	frag, err := p.renderer.Render(ctx, source, dc.Dir)
	if err != nil {
		return nil, nil, err
	}
	warnings, err := p.PostProcess(ctx, dc, frag)
	if err != nil {
		return nil, warnings, err
	}
	return frag, warnings, nil
}

// PostProcess runs, in order: embed expansion, link resolution, header
// block removal and diagram processing. Embedded documents go through the
// same stages before being spliced in.
func (p *Processor) PostProcess(ctx context.Context, dc DocumentContext, frag *Fragment) ([]string, error) {
	return p.expand(ctx, dc, frag, p.finish)
}

// finish runs the stages that follow embed expansion on one document.
func (p *Processor) finish(ctx context.Context, dc DocumentContext, frag *Fragment) []string {
	ResolveLinks(frag, dc)
	if !dc.Settings.DisplayFrontmatter {
		RemoveFrontmatter(frag)
	}
	return p.processDiagrams(ctx, dc, frag)
}

// RemoveFrontmatter drops the header block the renderer left in the body.
func RemoveFrontmatter(frag *Fragment) {
	nodes := collect(frag.Root(), false, func(n *html.Node) bool {
		return hasClass(n, "frontmatter") || hasClass(n, "frontmatter-container")
	})
	for _, n := range nodes {
		removeNode(n)
	}
}

// formatWarning renders a log call as a single line for ExportResult.
func formatWarning(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
	}
	return b.String()
}
