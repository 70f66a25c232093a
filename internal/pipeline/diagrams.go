package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ArrowheadID is the local marker every diagram arrow points to.
const ArrowheadID = "mdexport_arrowhead"

// ErrEmptyRaster indicates a rasterizer returned no image.
var ErrEmptyRaster = errors.New("rasterizer returned an empty image")

// Raster is a rasterized diagram. Width and Height are CSS pixels of the
// original vector; the PNG itself is scaled by the device scale factor.
type Raster struct {
	PNG    []byte
	Width  float64
	Height float64
}

// Rasterizer renders standalone SVG markup off-screen to PNG.
type Rasterizer interface {
	Rasterize(ctx context.Context, svg string, scale float64) (*Raster, error)
}

// Host renderers point arrows at a marker living in their own page,
// e.g. url(app://local/index.html#arrowhead12).
var hostArrowhead = regexp.MustCompile(`app://local/[^"'()\s#]*#arrowhead\d*`)

// processDiagrams styles every top-level SVG of frag and, for formats that
// cannot carry vector diagrams, replaces it with a PNG image.
func (p *Processor) processDiagrams(ctx context.Context, dc DocumentContext, frag *Fragment) []string {
	svgs := collect(frag.Root(), false, func(n *html.Node) bool {
		return n.DataAtom == atom.Svg
	})

	var warnings []string
	for _, svg := range svgs {
		if dc.DiagramCSS != "" {
			InjectDiagramCSS(svg, dc.DiagramCSS)
		}
		EnsureArrowhead(svg)

		if dc.HTMLNative || p.rasterizer == nil {
			continue
		}
		if err := p.rasterize(ctx, svg, dc.Settings.DiagramScale()); err != nil {
			p.logger.Warn("diagram kept as vector", "path", dc.Path, "err", err)
			warnings = append(warnings, formatWarning("diagram kept as vector", "path", dc.Path, "err", err))
		}
	}
	return warnings
}

func (p *Processor) rasterize(ctx context.Context, svg *html.Node, scale float64) error {
	markup, err := renderNode(svg)
	if err != nil {
		return err
	}
	r, err := p.rasterizer.Rasterize(ctx, markup, scale)
	if err != nil {
		return err
	}
	if r == nil || len(r.PNG) == 0 {
		return ErrEmptyRaster
	}

	attrs := []html.Attribute{
		{Key: "src", Val: "data:image/png;base64," + base64.StdEncoding.EncodeToString(r.PNG)},
	}
	if r.Width > 0 && r.Height > 0 {
		attrs = append(attrs,
			html.Attribute{Key: "width", Val: strconv.Itoa(int(math.Ceil(r.Width)))},
			html.Attribute{Key: "height", Val: strconv.Itoa(int(math.Ceil(r.Height)))},
		)
	}
	if label := getAttr(svg, "aria-label"); label != "" {
		attrs = append(attrs, html.Attribute{Key: "alt", Val: label})
	}
	attrs = append(attrs, html.Attribute{Key: "class", Val: "diagram"})

	replaceNode(svg, newElement("img", atom.Img, attrs...))
	return nil
}

// InjectDiagramCSS appends css to the first <style> of svg, creating one
// as the first child when the diagram has none.
func InjectDiagramCSS(svg *html.Node, css string) {
	style := firstDescendant(svg, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "style"
	})
	if style == nil {
		style = &html.Node{Type: html.ElementNode, Data: "style", Namespace: svg.Namespace}
		svg.InsertBefore(style, svg.FirstChild)
	}
	style.AppendChild(newText("\n" + css + "\n"))
}

// EnsureArrowhead makes the local arrowhead marker exist in svg and points
// host marker references at it.
func EnsureArrowhead(svg *html.Node) {
	rewriteArrowheadRefs(svg)

	exists := firstDescendant(svg, func(n *html.Node) bool {
		return n.Type == html.ElementNode && getAttr(n, "id") == ArrowheadID
	})
	if exists != nil {
		return
	}

	defs := firstDescendant(svg, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "defs"
	})
	if defs == nil {
		defs = &html.Node{Type: html.ElementNode, Data: "defs", Namespace: svg.Namespace}
		svg.InsertBefore(defs, svg.FirstChild)
	}
	defs.AppendChild(arrowheadMarker(svg.Namespace))
}

func rewriteArrowheadRefs(n *html.Node) {
	local := "#" + ArrowheadID
	switch n.Type {
	case html.TextNode:
		n.Data = hostArrowhead.ReplaceAllString(n.Data, local)
	case html.ElementNode:
		for i, a := range n.Attr {
			n.Attr[i].Val = hostArrowhead.ReplaceAllString(a.Val, local)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteArrowheadRefs(c)
	}
}

func arrowheadMarker(ns string) *html.Node {
	marker := &html.Node{
		Type:      html.ElementNode,
		Data:      "marker",
		Namespace: ns,
		Attr: []html.Attribute{
			{Key: "id", Val: ArrowheadID},
			{Key: "viewBox", Val: "0 0 10 10"},
			{Key: "refX", Val: "9"},
			{Key: "refY", Val: "5"},
			{Key: "markerUnits", Val: "userSpaceOnUse"},
			{Key: "markerWidth", Val: "12"},
			{Key: "markerHeight", Val: "12"},
			{Key: "orient", Val: "auto"},
		},
	}
	marker.AppendChild(&html.Node{
		Type:      html.ElementNode,
		Data:      "path",
		Namespace: ns,
		Attr: []html.Attribute{
			{Key: "d", Val: "M 0 0 L 10 5 L 0 10 z"},
			{Key: "class", Val: "arrowheadPath"},
			{Key: "style", Val: "stroke-width: 1; stroke-dasharray: 1, 0;"},
		},
	})
	return marker
}

func firstDescendant(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := firstDescendant(c, match); found != nil {
			return found
		}
	}
	return nil
}
