package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// ErrRender indicates the host renderer failed.
var ErrRender = errors.New("rendering failed")

// HighlightStyleName is the registry key of the syntax highlighting CSS.
const HighlightStyleName = "highlighting"

// Renderer turns note source into an HTML fragment. baseDir is the
// directory of the note, for renderers that resolve relative references.
type Renderer interface {
	Render(ctx context.Context, source, baseDir string) (*Fragment, error)
}

// GoldmarkRenderer is the default host renderer. It emits the same shapes
// as the host application: host-scheme links, embed spans, header blocks
// as <pre class="frontmatter"> and mermaid fences as <div class="mermaid">.
type GoldmarkRenderer struct {
	md  goldmark.Markdown
	pre *HostMarkup
}

// NewGoldmarkRenderer creates a GoldmarkRenderer with GFM, footnotes and
// syntax highlighting. Raw HTML is kept: notes carry inline SVG diagrams.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
				highlighting.WithWrapperRenderer(mermaidWrapper),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)
	return &GoldmarkRenderer{md: md, pre: &HostMarkup{}}
}

// Render converts source to a fragment. Goldmark does not take a context,
// so conversion runs in a goroutine raced against ctx.
func (r *GoldmarkRenderer) Render(ctx context.Context, source, _ string) (*Fragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		frag *Fragment
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(r.pre.Preprocess(source)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		frag, err := ParseFragment(buf.String())
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrRender, err)}
			return
		}
		done <- result{frag: frag}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.frag, res.err
	}
}

// mermaidWrapper turns ```mermaid fences into divs a diagram library can
// hydrate, and falls back to plain pre/code for other unhighlighted blocks.
func mermaidWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if ctx.Highlighted() {
		return
	}

	lang, _ := ctx.Language()
	if strings.EqualFold(strings.TrimSpace(string(lang)), "mermaid") {
		if entering {
			_, _ = w.WriteString(`<div class="mermaid">`)
		} else {
			_, _ = w.WriteString("</div>\n")
		}
		return
	}

	if entering {
		_, _ = w.WriteString("<pre><code")
		if len(bytes.TrimSpace(lang)) > 0 {
			_, _ = w.WriteString(` class="language-`)
			_, _ = w.Write(util.EscapeHTML(lang))
			_, _ = w.WriteString(`"`)
		}
		_, _ = w.WriteString(">")
		return
	}
	_, _ = w.WriteString("</code></pre>\n")
}

// RegisterHighlightStyle generates the CSS of the named chroma style and
// registers it under HighlightStyleName. Unknown names use chroma's
// fallback style.
func RegisterHighlightStyle(reg *StyleRegistry, name string) error {
	style := styles.Get(name)
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, style); err != nil {
		return fmt.Errorf("generating highlight CSS: %w", err)
	}
	reg.Register(HighlightStyleName, buf.String())
	return nil
}
