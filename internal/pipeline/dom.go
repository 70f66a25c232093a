package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attributes set by the pipeline on host elements.
const (
	attrEmbed   = "data-embed"
	attrTouched = "data-touched"

	embedResolved = "resolved"
	embedFailed   = "failed"
)

// Fragment is a rendered document body. Its nodes hang under a synthetic
// document node so stages can walk and replace top-level elements uniformly.
type Fragment struct {
	root *html.Node
}

// ParseFragment parses HTML in <body> context.
func ParseFragment(content string) (*Fragment, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, err
	}

	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return &Fragment{root: root}, nil
}

// Root returns the synthetic document node.
func (f *Fragment) Root() *html.Node {
	return f.root
}

// HTML renders the fragment without any <html>/<body> wrapper.
func (f *Fragment) HTML() (string, error) {
	var buf strings.Builder
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// moveInto detaches every top-level node of f and appends it to parent.
// f is empty afterwards.
func (f *Fragment) moveInto(parent *html.Node) {
	for c := f.root.FirstChild; c != nil; {
		next := c.NextSibling
		f.root.RemoveChild(c)
		parent.AppendChild(c)
		c = next
	}
}

// collect walks the tree in document order and returns matching elements.
// Subtrees of resolved embeds are skipped: their content was finished by
// the embedded document's own pass. When descend is false the walk does not
// enter matched elements.
func collect(root *html.Node, descend bool, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if getAttr(c, attrEmbed) == embedResolved {
				continue
			}
			if match(c) {
				found = append(found, c)
				if !descend {
					continue
				}
			}
			walk(c)
		}
	}
	walk(root)
	return found
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// replaceNode puts repl where old was. old is detached.
func replaceNode(old, repl *html.Node) {
	if old.Parent == nil {
		return
	}
	old.Parent.InsertBefore(repl, old)
	old.Parent.RemoveChild(old)
}

func removeNode(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func newElement(tag string, a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: a, Attr: attrs}
}

func newText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// renderNode returns the outer HTML of n.
func renderNode(n *html.Node) (string, error) {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
