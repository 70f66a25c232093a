package mdexport

import (
	"errors"

	"github.com/alnah/go-mdexport/internal/pandoc"
	"github.com/alnah/go-mdexport/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptySource      = errors.New("source path cannot be empty")
	ErrSourceRead       = errors.New("failed to read source")
	ErrUnknownFormat    = errors.New("unknown export format")
	ErrUnsupportedFrom  = errors.New("format cannot be exported from markdown source")
	ErrWrite            = errors.New("failed to write output")
	ErrInvalidAssetPath = errors.New("invalid asset path")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRasterize      = errors.New("diagram rasterization failed")

	// Renderer failure, as returned by the host renderer.
	ErrRender = pipeline.ErrRender

	// Converter errors.
	ErrConverterNotFound = pandoc.ErrConverterNotFound
	ErrConversionFailed  = pandoc.ErrConversionFailed
	ErrOutputMissing     = pandoc.ErrOutputMissing
	ErrEmptyOutput       = pandoc.ErrEmptyOutput
)
