package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// MaxEmbedDepth bounds nested transclusion independently of cycle detection.
const MaxEmbedDepth = 32

var (
	ErrEmbedDepth    = errors.New("embed depth limit reached")
	ErrEmbedNotFound = errors.New("embedded note not found")
)

const embedClass = "internal-embed"

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".webp": true, ".bmp": true,
}

// attachmentExts are vault files that are never transcluded as notes.
var attachmentExts = map[string]bool{
	".pdf": true, ".csv": true, ".json": true, ".canvas": true, ".zip": true,
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true, ".flac": true, ".3gp": true,
	".mp4": true, ".webm": true, ".mov": true, ".mkv": true, ".ogv": true,
	".html": true, ".htm": true, ".docx": true, ".xlsx": true, ".pptx": true,
}

// noteFile returns the markdown file a reference names. A name without a
// recognized extension is a note written without ".md", so "v1.2 notes"
// names "v1.2 notes.md". ok is false for images and attachments.
func noteFile(name string) (file string, ok bool) {
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case ext == ".md" || ext == ".markdown":
		return name, true
	case imageExts[ext] || attachmentExts[ext]:
		return name, false
	default:
		return name + ".md", true
	}
}

// embedFrame is one document on the expansion stack.
type embedFrame struct {
	dc      DocumentContext
	frag    *Fragment
	pending []*html.Node // embeds not yet handled, document order
	target  *html.Node   // element of the parent frame receiving frag
}

// expand inlines every embed of frag, depth first, using an explicit stack.
// finish runs on each frame once all its embeds are handled, before the
// frame is spliced into its parent.
func (p *Processor) expand(ctx context.Context, dc DocumentContext, frag *Fragment, finish func(context.Context, DocumentContext, *Fragment) []string) ([]string, error) {
	var warnings []string
	warn := func(msg string, args ...any) {
		p.logger.Warn(msg, args...)
		warnings = append(warnings, formatWarning(msg, args...))
	}

	stack := []*embedFrame{{dc: dc, frag: frag, pending: findEmbeds(frag)}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return warnings, err
		}

		top := stack[len(stack)-1]
		if len(top.pending) == 0 {
			warnings = append(warnings, finish(ctx, top.dc, top.frag)...)
			stack = stack[:len(stack)-1]
			if top.target != nil {
				removeChildren(top.target)
				top.frag.moveInto(top.target)
				setAttr(top.target, attrEmbed, embedResolved)
			}
			continue
		}

		el := top.pending[0]
		top.pending = top.pending[1:]
		src := getAttr(el, "src")

		if isImageEmbed(src) {
			replaceNode(el, imageFromEmbed(el, src))
			continue
		}
		if name := embedName(src); name != "" {
			if _, ok := noteFile(name); !ok {
				p.logger.Debug("attachment embed left as is", "path", top.dc.Path, "src", src)
				continue
			}
		}

		path, err := p.resolveEmbed(src, top.dc)
		if err != nil {
			warn("embed skipped", "path", top.dc.Path, "src", src, "err", err)
			failEmbed(el)
			continue
		}

		if top.dc.InChain(path) {
			replaceNode(el, cycleLink(el, path, top.dc.Settings.AddExtension))
			continue
		}

		if top.dc.Depth() >= MaxEmbedDepth {
			warn("embed skipped", "path", top.dc.Path, "src", src, "err", ErrEmbedDepth)
			failEmbed(el)
			continue
		}

		child := top.dc.Child(path)
		childFrag, err := p.renderFile(ctx, child)
		if err != nil {
			if ctx.Err() != nil {
				return warnings, ctx.Err()
			}
			warn("embed skipped", "path", top.dc.Path, "src", src, "err", err)
			failEmbed(el)
			continue
		}

		stack = append(stack, &embedFrame{
			dc:      child,
			frag:    childFrag,
			pending: findEmbeds(childFrag),
			target:  el,
		})
	}

	return warnings, nil
}

// renderFile reads and renders an embedded note.
func (p *Processor) renderFile(ctx context.Context, dc DocumentContext) (*Fragment, error) {
	data, err := p.readFile(dc.Path)
	if err != nil {
		return nil, err
	}
	return p.renderer.Render(ctx, string(data), dc.Dir)
}

// resolveEmbed maps an embed reference to an absolute markdown path:
// first next to the current document, then anywhere under the vault root.
func (p *Processor) resolveEmbed(src string, dc DocumentContext) (string, error) {
	name := embedName(src)
	if name == "" {
		// ![[#heading]] points into the document itself.
		return dc.Path, nil
	}
	name, _ = noteFile(name)

	candidate := filepath.FromSlash(name)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dc.Dir, candidate)
	}
	candidate = filepath.Clean(candidate)

	if p.exists(candidate) || dc.Settings.VaultRoot == "" {
		return candidate, nil
	}
	if found := findInVault(dc.Settings.VaultRoot, name); found != "" {
		return found, nil
	}
	return "", fmt.Errorf("%w: %s", ErrEmbedNotFound, name)
}

func (p *Processor) exists(path string) bool {
	info, err := p.stat(path)
	return err == nil && info.Mode().IsRegular()
}

// findInVault returns the first file under root whose path ends with name,
// in lexical walk order. Hidden directories are not searched.
func findInVault(root, name string) string {
	suffix := string(filepath.Separator) + filepath.Clean(filepath.FromSlash(name))
	var found string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(norm.NFC.String(path), suffix) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// embedName strips the heading and display parts of an embed reference.
func embedName(src string) string {
	name := src
	if i := strings.IndexAny(name, "#|"); i >= 0 {
		name = name[:i]
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return norm.NFC.String(strings.TrimSpace(name))
}

func findEmbeds(frag *Fragment) []*html.Node {
	return collect(frag.Root(), false, func(n *html.Node) bool {
		return hasClass(n, embedClass) && hasAttr(n, "src") && getAttr(n, attrEmbed) == ""
	})
}

func isImageEmbed(src string) bool {
	if i := strings.IndexAny(src, "#|"); i >= 0 {
		src = src[:i]
	}
	return imageExts[strings.ToLower(filepath.Ext(src))]
}

// imageFromEmbed turns an image transclusion the host left as a span into
// an <img> using the host scheme, so link resolution makes it absolute.
func imageFromEmbed(el *html.Node, src string) *html.Node {
	alt := getAttr(el, "alt")
	if alt == "" {
		alt = src
	}
	if i := strings.IndexByte(src, '|'); i >= 0 {
		src = src[:i]
	}
	img := newElement("img", atom.Img,
		html.Attribute{Key: "src", Val: HostScheme + src},
		html.Attribute{Key: "alt", Val: alt},
	)
	if w := getAttr(el, "width"); w != "" {
		setAttr(img, "width", w)
	}
	return img
}

// cycleLink replaces an embed whose target is already being expanded with
// a link to the exported target. The link is final: it stays a link
// whatever the link mode.
func cycleLink(el *html.Node, path, ext string) *html.Node {
	label := strings.TrimSpace(textContent(el))
	if label == "" {
		label = getAttr(el, "src")
	}
	ref := hostRef{path: strings.TrimSuffix(path, filepath.Ext(path)), bare: true}
	a := newElement("a", atom.A,
		html.Attribute{Key: "class", Val: "internal-link"},
		html.Attribute{Key: "href", Val: ref.href(ext)},
	)
	a.AppendChild(newText(label))
	return a
}

func failEmbed(el *html.Node) {
	removeChildren(el)
	setAttr(el, attrEmbed, embedFailed)
}
