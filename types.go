package mdexport

import (
	"fmt"
	"strings"

	"github.com/alnah/go-mdexport/internal/pandoc"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

// LinkMode controls links between notes. See the LinkMode constants.
type LinkMode = pipeline.LinkMode

// AppCSS selects the palette of standalone documents.
type AppCSS = pipeline.AppCSS

// Link modes.
const (
	LinkModeLink      = pipeline.LinkModeLink
	LinkModeText      = pipeline.LinkModeText
	LinkModeStrip     = pipeline.LinkModeStrip
	LinkModeUnchanged = pipeline.LinkModeUnchanged
)

// App CSS modes.
const (
	AppCSSNone    = pipeline.AppCSSNone
	AppCSSLight   = pipeline.AppCSSLight
	AppCSSDark    = pipeline.AppCSSDark
	AppCSSCurrent = pipeline.AppCSSCurrent
)

// ExportSource selects what the converter reads.
type ExportSource string

const (
	// ExportFromHTML renders the note and feeds the normalized HTML.
	ExportFromHTML ExportSource = "html"
	// ExportFromMarkdown hands the note file to the converter as is.
	ExportFromMarkdown ExportSource = "md"
)

// Settings is the frozen configuration of an Exporter.
type Settings struct {
	LinkMode           LinkMode
	AddExtension       string // without the dot; empty disables insertion
	AppCSS             AppCSS
	InjectTheme        bool
	Theme              string
	HostTheme          string // "light" or "dark"
	HighDPIDiagrams    bool
	DisplayFrontmatter bool
	CustomCSS          string
	VaultRoot          string

	OutputFolder string // empty = next to the source
	ExportFrom   ExportSource
	Converter    string // converter binary, empty = pandoc
	PDFLatex     string // LaTeX engine path, its directory goes on PATH
	ExtraArgs    string // appended to the converter command line
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	p := pipeline.DefaultSettings()
	return Settings{
		LinkMode:        p.LinkMode,
		AddExtension:    p.AddExtension,
		AppCSS:          p.AppCSS,
		HostTheme:       p.HostTheme,
		HighDPIDiagrams: p.HighDPIDiagrams,
		ExportFrom:      ExportFromHTML,
	}
}

// Validate checks enumerated fields.
func (s Settings) Validate() error {
	if err := s.pipeline().Validate(); err != nil {
		return err
	}
	switch s.ExportFrom {
	case ExportFromHTML, ExportFromMarkdown:
	default:
		return fmt.Errorf("invalid export source %q (expected html or md)", s.ExportFrom)
	}
	if strings.HasPrefix(s.AddExtension, ".") {
		return fmt.Errorf("invalid link extension %q (give it without the dot)", s.AddExtension)
	}
	return nil
}

func (s Settings) pipeline() pipeline.Settings {
	return pipeline.Settings{
		LinkMode:           s.LinkMode,
		AddExtension:       s.AddExtension,
		AppCSS:             s.AppCSS,
		InjectTheme:        s.InjectTheme,
		Theme:              s.Theme,
		HostTheme:          s.HostTheme,
		HighDPIDiagrams:    s.HighDPIDiagrams,
		DisplayFrontmatter: s.DisplayFrontmatter,
		CustomCSS:          s.CustomCSS,
		VaultRoot:          s.VaultRoot,
	}
}

// Stdout as Request.Output asks for the result in memory.
const Stdout = "-"

// Request is one export.
type Request struct {
	Source string // path of the note
	Format string // format ID, see Formats
	Output string // destination; empty derives it from Source, Stdout keeps it in memory
}

// Status is the outcome of a successful export.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusWarnings Status = "warnings"
)

// ExportResult describes a finished export.
type ExportResult struct {
	Path        string   // written file; empty for in-memory exports
	Content     []byte   // in-memory result
	Args        []string // converter command line, when one ran
	Diagnostics string   // converter diagnostics
	Warnings    []string // degraded pipeline steps (failed embeds, missing CSS, ...)
	Status      Status
}

// Command renders Args as a command line.
func (r *ExportResult) Command() string {
	if r == nil || len(r.Args) == 0 {
		return ""
	}
	return pandoc.Command{Name: r.Args[0], Args: r.Args[1:]}.String()
}

// Fragment is a parsed HTML fragment, the unit renderers produce.
type Fragment = pipeline.Fragment

// ParseFragment parses HTML in body context.
func ParseFragment(content string) (*Fragment, error) {
	return pipeline.ParseFragment(content)
}

// Renderer turns note source into a fragment.
type Renderer = pipeline.Renderer

// Rasterizer turns SVG markup into PNG.
type Rasterizer = pipeline.Rasterizer

// Raster is a rasterized diagram.
type Raster = pipeline.Raster
