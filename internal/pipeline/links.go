package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// HostScheme prefixes every reference the host renderer emits for vault
// files. It only exists in memory and never survives an export.
const HostScheme = "app://local/"

// IsHostRef reports whether ref uses the host scheme.
func IsHostRef(ref string) bool {
	return strings.HasPrefix(ref, HostScheme)
}

// hostRef is a host reference split into a filesystem path and an optional
// heading fragment.
type hostRef struct {
	path     string // absolute, OS separators
	fragment string // without '#'
	bare     bool   // a note named without its extension
}

// parseHostRef resolves a host reference against dir. A remainder starting
// with "/" (or a volume) is already absolute. Percent-escapes are decoded
// and the query string is dropped.
func parseHostRef(ref, dir string) hostRef {
	rest := strings.TrimPrefix(ref, HostScheme)

	var frag string
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest, frag = rest[:i], rest[i+1:]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	if decoded, err := url.PathUnescape(rest); err == nil {
		rest = decoded
	}
	rest = norm.NFC.String(rest)

	if rest == "" {
		return hostRef{fragment: frag}
	}

	if len(rest) > 2 && rest[0] == '/' && rest[2] == ':' {
		rest = rest[1:] // /C:/x
	}
	p := filepath.FromSlash(rest)
	if !strings.HasPrefix(rest, "/") && !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	p = filepath.Clean(p)

	file, note := noteFile(p)
	return hostRef{
		path:     p,
		fragment: frag,
		bare:     note && file != p,
	}
}

// href renders the reference, inserting ext before the fragment when the
// path has none: note#h -> note.html#h.
func (r hostRef) href(ext string) string {
	p := filepath.ToSlash(r.path)
	if p != "" && r.bare && ext != "" {
		p += "." + strings.TrimPrefix(ext, ".")
	}
	if r.fragment != "" {
		return p + "#" + r.fragment
	}
	return p
}

// ResolveLinks rewrites host references in frag. Anchors follow the link
// mode; images are always rewritten to absolute paths and marked so they
// are never rewritten twice. Elements of resolved embeds are skipped.
func ResolveLinks(frag *Fragment, dc DocumentContext) {
	s := dc.Settings

	targets := collect(frag.Root(), true, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.A:
			return IsHostRef(getAttr(n, "href"))
		case atom.Img:
			return IsHostRef(getAttr(n, "src")) && getAttr(n, attrTouched) == ""
		}
		return false
	})

	for _, n := range targets {
		if n.DataAtom == atom.Img {
			ref := parseHostRef(getAttr(n, "src"), dc.Dir)
			setAttr(n, "src", ref.href(""))
			setAttr(n, attrTouched, "true")
			continue
		}
		resolveAnchor(n, dc.Dir, s)
	}
}

func resolveAnchor(n *html.Node, dir string, s Settings) {
	switch s.LinkMode {
	case LinkModeText:
		replaceNode(n, newText(textContent(n)))
	case LinkModeStrip:
		removeNode(n)
	case LinkModeUnchanged:
		if n.Parent != nil {
			n.Parent.InsertBefore(newText("[["), n)
			n.Parent.InsertBefore(newText("]]"), n.NextSibling)
		}
	default:
		ref := parseHostRef(getAttr(n, "href"), dir)
		setAttr(n, "href", ref.href(s.AddExtension))
	}
}
