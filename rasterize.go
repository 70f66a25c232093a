package mdexport

import (
	"context"
	"fmt"
	"math"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-mdexport/internal/pipeline"
)

var _ pipeline.Rasterizer = (*rodRasterizer)(nil)

// Viewport used to lay out a diagram before it is measured. Diagrams wider
// than this are clipped.
const (
	rasterViewportWidth  = 1600
	rasterViewportHeight = 1200
)

const rasterPage = `<!DOCTYPE html><html><head><meta charset="utf-8">` +
	`<style>html,body{margin:0;padding:0;background:#fff}svg{display:block}</style>` +
	`</head><body>%s</body></html>`

const measureScript = `() => { const r = this.getBoundingClientRect(); return {w: r.width, h: r.height} }`

// rodRasterizer renders diagrams in an off-screen page. Each diagram gets
// its own page, closed as soon as the screenshot is taken.
type rodRasterizer struct {
	session *browserSession
}

func newRodRasterizer(session *browserSession) *rodRasterizer {
	return &rodRasterizer{session: session}
}

// Rasterize screenshots svg at the given device scale factor. The returned
// size is in CSS pixels.
func (r *rodRasterizer) Rasterize(ctx context.Context, svg string, scale float64) (*pipeline.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := r.session.get()
	if err != nil {
		return nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()
	page = page.Context(ctx)

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             rasterViewportWidth,
		Height:            rasterViewportHeight,
		DeviceScaleFactor: scale,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	if err := page.SetDocumentContent(fmt.Sprintf(rasterPage, svg)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	el, err := page.Element("svg")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	box, err := el.Eval(measureScript)
	if err != nil {
		return nil, fmt.Errorf("%w: measuring: %v", ErrRasterize, err)
	}
	width := box.Value.Get("w").Num()
	height := box.Value.Get("h").Num()
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return nil, fmt.Errorf("%w: diagram has no size", ErrRasterize)
	}

	png, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterize, err)
	}

	return &pipeline.Raster{PNG: png, Width: width, Height: height}, nil
}
