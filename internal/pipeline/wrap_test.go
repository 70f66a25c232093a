package pipeline

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestWrap(t *testing.T) {
	t.Parallel()

	doc := Wrap("<p>body &amp; more</p>", "Note", "body{color:red}")

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Note</title>",
		`<meta charset="utf-8">`,
		"<style>\nbody{color:red}\n</style>",
		"<body>\n<p>body &amp; more</p>\n</body>",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Wrap() missing %q in %q", want, doc)
		}
	}
}

func TestWrap_EscapesTitle(t *testing.T) {
	t.Parallel()

	doc := Wrap("", "<b>A & B</b>", "")
	if !strings.Contains(doc, "<title>&lt;b&gt;A &amp; B&lt;/b&gt;</title>") {
		t.Errorf("title not escaped: %q", doc)
	}
}

func TestWrap_CSSCannotCloseStyle(t *testing.T) {
	t.Parallel()

	doc := Wrap("<p>x</p>", "T", "a{}</style><script>alert(1)</script>")

	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	var scripts int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			scripts++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	if scripts != 0 {
		t.Errorf("CSS escaped its style element: %q", doc)
	}
}

func TestWrap_PlaceholdersInBodyKept(t *testing.T) {
	t.Parallel()

	doc := Wrap("<code>{{title}}</code>", "Real", "")
	if !strings.Contains(doc, "<code>{{title}}</code>") {
		t.Errorf("body must be inserted verbatim: %q", doc)
	}
}
