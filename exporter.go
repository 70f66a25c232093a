package mdexport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdexport/internal/assets"
	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/pandoc"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

var (
	_ pipeline.Renderer    = (*pipeline.GoldmarkRenderer)(nil)
	_ pipeline.StyleSource = (*assets.AssetResolver)(nil)
)

const (
	defaultTimeout        = 30 * time.Second
	defaultHighlightStyle = "github"

	// baseStyleName is the registry key of the host application stylesheet.
	baseStyleName = "app"
)

// Exporter turns notes into documents. Create with NewExporter, call
// Export for each note and Close when done. An Exporter must not be used
// by more than one goroutine at a time; see ExporterPool.
type Exporter struct {
	settings  Settings
	renderer  pipeline.Renderer
	styles    *pipeline.StyleRegistry
	assetPath string
	highlight string
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time

	rasterizer    pipeline.Rasterizer
	printer       pdfPrinter
	converterOpts []pandoc.Option

	session   *browserSession
	processor *pipeline.Processor
	assembler *pipeline.CSSAssembler
	converter *pandoc.Converter
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithSettings replaces the default settings.
func WithSettings(s Settings) Option {
	return func(e *Exporter) { e.settings = s }
}

// WithRenderer replaces the default goldmark renderer.
func WithRenderer(r Renderer) Option {
	return func(e *Exporter) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithRasterizer replaces the headless browser rasterizer.
func WithRasterizer(r Rasterizer) Option {
	return func(e *Exporter) {
		if r != nil {
			e.rasterizer = r
		}
	}
}

// WithAssetPath sets a directory whose palettes, themes and base styles
// override the embedded ones.
func WithAssetPath(path string) Option {
	return func(e *Exporter) { e.assetPath = path }
}

// WithStyleRegistry sets the registry holding contributed stylesheets.
// The exporter adds its own base and highlighting styles to it.
func WithStyleRegistry(reg *pipeline.StyleRegistry) Option {
	return func(e *Exporter) {
		if reg != nil {
			e.styles = reg
		}
	}
}

// WithHighlightStyle sets the chroma style of code blocks.
func WithHighlightStyle(name string) Option {
	return func(e *Exporter) {
		if name != "" {
			e.highlight = name
		}
	}
}

// WithLogger sets the logger receiving degraded-path warnings.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithTimeout bounds browser page loads.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// withConverterOptions passes options to the converter (tests).
func withConverterOptions(opts ...pandoc.Option) Option {
	return func(e *Exporter) { e.converterOpts = append(e.converterOpts, opts...) }
}

// withPrinter replaces the browser PDF printer (tests).
func withPrinter(p pdfPrinter) Option {
	return func(e *Exporter) { e.printer = p }
}

// withClock fixes the time used for "date: auto" (tests).
func withClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// NewExporter creates an Exporter. It fails on invalid settings or an
// unusable asset path; the browser is only launched when first needed.
func NewExporter(opts ...Option) (*Exporter, error) {
	e := &Exporter{
		settings:  DefaultSettings(),
		renderer:  pipeline.NewGoldmarkRenderer(),
		highlight: defaultHighlightStyle,
		logger:    slog.New(slog.DiscardHandler),
		timeout:   defaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.settings.Validate(); err != nil {
		return nil, err
	}

	resolver, err := assets.NewAssetResolver(e.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}

	if e.styles == nil {
		e.styles = pipeline.NewStyleRegistry()
	}
	if base, err := resolver.Base(); err == nil {
		e.styles.Register(baseStyleName, base)
	} else {
		e.logger.Warn("base stylesheet unavailable", "err", err)
	}
	if err := pipeline.RegisterHighlightStyle(e.styles, e.highlight); err != nil {
		return nil, err
	}

	e.session = newBrowserSession(e.timeout)
	if e.rasterizer == nil {
		e.rasterizer = newRodRasterizer(e.session)
	}
	if e.printer == nil {
		e.printer = newRodPrinter(e.session)
	}

	e.processor, err = pipeline.NewProcessor(e.renderer,
		pipeline.WithRasterizer(e.rasterizer),
		pipeline.WithLogger(e.logger),
	)
	if err != nil {
		return nil, err
	}
	e.assembler = pipeline.NewCSSAssembler(resolver, e.styles, e.logger)

	convOpts := append([]pandoc.Option{pandoc.WithPDFLatex(e.settings.PDFLatex)}, e.converterOpts...)
	e.converter = pandoc.NewConverter(e.settings.Converter, convOpts...)

	return e, nil
}

// Settings returns the settings the Exporter was built with.
func (e *Exporter) Settings() Settings {
	return e.settings
}

// Converter returns the converter binary name or path.
func (e *Exporter) Converter() string {
	return e.converter.Binary()
}

// ConverterVersion reports the first line of the converter's version output.
func (e *Exporter) ConverterVersion(ctx context.Context) (string, error) {
	return e.converter.Version(ctx)
}

// Export runs one export. Degraded steps (failed embeds, missing styles,
// diagrams left vector) are reported in ExportResult.Warnings; converter
// diagnostics set StatusWarnings. Recovers from internal panics.
func (e *Exporter) Export(ctx context.Context, req Request) (result *ExportResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	format, src, err := e.validateRequest(req)
	if err != nil {
		return nil, err
	}
	out := e.outputPath(req, format, src)

	if e.settings.ExportFrom == ExportFromMarkdown {
		return e.exportMarkdown(ctx, src, format, out)
	}

	data, err := os.ReadFile(src) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	source := string(data)

	meta := pipeline.ExtractMetadata(source, src, e.now())

	dc, err := pipeline.NewDocumentContext(src, format.ID, format.HTMLNative, e.settings.pipeline())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	dc = dc.WithDiagramCSS(e.assembler.Variables(dc.Settings))

	frag, warnings, err := e.processor.Render(ctx, dc, source)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("rendering %s: %w", src, err)
	}

	if format.Browser {
		if err := pipeline.RewriteFileURLs(frag, dc.Dir); err != nil {
			return nil, fmt.Errorf("rewriting file URLs: %w", err)
		}
	}

	body, err := frag.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	css, cssWarnings := e.assembler.Assemble(dc, body)
	info := meta.Info()
	document := pipeline.Wrap(body, info.Title, css)
	e.logger.Debug("rendered", "path", src, "title", info.Title, "fields", meta.Keys())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &ExportResult{
		Warnings: append(warnings, cssWarnings...),
		Status:   StatusSuccess,
	}

	switch {
	case format.HTMLNative:
		err = e.emit(res, out, []byte(document))
	case format.Browser:
		err = e.emitBrowserPDF(ctx, res, out, document)
	default:
		err = e.emitConverted(ctx, res, meta, format, out, dc.Dir, document)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// exportMarkdown hands the note file to the converter untouched.
func (e *Exporter) exportMarkdown(ctx context.Context, src string, format Format, out string) (*ExportResult, error) {
	if format.Browser {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFrom, format.ID)
	}

	job := pandoc.Job{
		From:       pandoc.FromMarkdown,
		To:         format.Writer,
		Standalone: format.Standalone,
		InputPath:  src,
		OutputPath: out,
		ExtraArgs:  e.settings.ExtraArgs,
		Dir:        filepath.Dir(src),
	}
	return e.runConverter(ctx, &ExportResult{Status: StatusSuccess}, job)
}

// emitConverted feeds document to the converter, with the header fields
// in a side-channel metadata file.
func (e *Exporter) emitConverted(ctx context.Context, res *ExportResult, meta pipeline.Metadata, format Format, out, dir, document string) error {
	metaYAML, err := meta.YAML()
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	metaPath, cleanup, err := fileutil.WriteTempFile(string(metaYAML), "yaml")
	if err != nil {
		return fmt.Errorf("writing metadata file: %w", err)
	}
	defer cleanup()

	job := pandoc.Job{
		From:       pandoc.FromHTML,
		To:         format.Writer,
		Standalone: format.Standalone,
		Stdin:      document,
		OutputPath: out,
		Metadata:   metaPath,
		ExtraArgs:  e.settings.ExtraArgs,
		Dir:        dir,
	}
	_, err = e.runConverter(ctx, res, job)
	return err
}

func (e *Exporter) runConverter(ctx context.Context, res *ExportResult, job pandoc.Job) (*ExportResult, error) {
	if job.OutputPath != "" {
		if err := fileutil.EnsureParentDir(job.OutputPath); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}

	run, err := e.converter.Run(ctx, job)
	if err != nil {
		return nil, err
	}

	res.Args = run.Args
	res.Diagnostics = run.Stderr
	if job.OutputPath == "" {
		res.Content = run.Stdout
	} else {
		res.Path = job.OutputPath
	}
	if strings.TrimSpace(run.Stderr) != "" {
		res.Status = StatusWarnings
		e.logger.Warn("converter reported diagnostics", "path", job.InputPath, "output", job.OutputPath, "diagnostics", strings.TrimSpace(run.Stderr))
	}
	return res, nil
}

func (e *Exporter) emitBrowserPDF(ctx context.Context, res *ExportResult, out, document string) error {
	pdf, err := e.printer.PrintPDF(ctx, document)
	if err != nil {
		return err
	}
	return e.emit(res, out, pdf)
}

// emit writes data to out, or keeps it in res when out is empty.
func (e *Exporter) emit(res *ExportResult, out string, data []byte) error {
	if out == "" {
		res.Content = data
		return nil
	}
	if err := fileutil.EnsureParentDir(out); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil { // #nosec G306 -- exported documents are meant to be shared
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	res.Path = out
	return nil
}

// Close releases the browser, if one was launched.
func (e *Exporter) Close() error {
	if e.session != nil {
		return e.session.Close()
	}
	return nil
}

// validateRequest checks the request and resolves its source path.
//
// This is a TRUST BOUNDARY for library users building requests by hand.
// The CLI validates its flags earlier, both paths converge here.
func (e *Exporter) validateRequest(req Request) (Format, string, error) {
	if strings.TrimSpace(req.Source) == "" {
		return Format{}, "", ErrEmptySource
	}
	format, err := LookupFormat(req.Format)
	if err != nil {
		return Format{}, "", err
	}
	src, err := filepath.Abs(req.Source)
	if err != nil {
		return Format{}, "", fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	return format, src, nil
}

// outputPath derives the destination: Request.Output wins, then the
// output folder, then the source directory. Empty means in memory.
// The converter runs in the document directory, so the path is absolute.
func (e *Exporter) outputPath(req Request, format Format, src string) string {
	out := req.Output
	switch out {
	case Stdout:
		return ""
	case "":
		dir := filepath.Dir(src)
		if e.settings.OutputFolder != "" {
			dir = e.settings.OutputFolder
		}
		out = filepath.Join(dir, fileutil.BaseName(src)+"."+format.Extension)
	}
	if abs, err := filepath.Abs(out); err == nil {
		return abs
	}
	return out
}
