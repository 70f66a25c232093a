package pipeline

import (
	"html"
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress multiple blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// ![[target|alt]]
	embedPattern = regexp.MustCompile(`!\[\[([^\]|\n]+)(?:\|([^\]\n]*))?\]\]`)

	// [[target|alias]]
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|\n]+)(?:\|([^\]\n]*))?\]\]`)

	// ==text==
	highlightPattern = regexp.MustCompile(`==([^=\n]+?)==`)

	// `code`
	inlineCodePattern = regexp.MustCompile("`[^`\n]*`")
)

var hrefEscaper = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	`"`, "%22",
	"<", "%3C",
	">", "%3E",
)

// HostMarkup rewrites note syntax goldmark does not know into the HTML
// shapes the host application renders. Fenced code and inline code spans
// are left untouched.
type HostMarkup struct{}

// Preprocess applies every rewrite to source.
func (h *HostMarkup) Preprocess(source string) string {
	source = crlfOrCR.ReplaceAllString(source, "\n")

	var out strings.Builder
	if header, body, ok := SplitHeader(source); ok {
		out.WriteString(`<pre class="frontmatter">`)
		out.WriteString(html.EscapeString(header))
		out.WriteString("</pre>\n\n")
		source = body
	}

	var fence string
	for i, line := range strings.Split(source, "\n") {
		if i > 0 {
			out.WriteByte('\n')
		}

		trimmed := strings.TrimLeft(line, " \t")
		if marker := fenceMarker(trimmed); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			out.WriteString(line)
			continue
		}
		if fence != "" {
			out.WriteString(line)
			continue
		}

		out.WriteString(rewriteLine(line))
	}

	return multipleBlankLines.ReplaceAllString(out.String(), "\n\n")
}

func fenceMarker(line string) string {
	for _, m := range []string{"```", "~~~"} {
		if strings.HasPrefix(line, m) {
			return m
		}
	}
	return ""
}

// rewriteLine transforms the parts of line outside inline code spans.
// An embed alone on its line becomes a block so embedded content never
// ends up inside a paragraph.
func rewriteLine(line string) string {
	if m := embedPattern.FindStringSubmatchIndex(line); m != nil &&
		strings.TrimSpace(line[:m[0]]) == "" && strings.TrimSpace(line[m[1]:]) == "" {
		return embedBlock(line[m[0]:m[1]]) + "\n"
	}

	var b strings.Builder
	last := 0
	for _, loc := range inlineCodePattern.FindAllStringIndex(line, -1) {
		b.WriteString(rewriteText(line[last:loc[0]]))
		b.WriteString(line[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(rewriteText(line[last:]))
	return b.String()
}

func rewriteText(s string) string {
	s = embedPattern.ReplaceAllStringFunc(s, func(m string) string {
		target, alt := splitTarget(embedPattern.FindStringSubmatch(m))
		return `<span class="internal-embed" src="` + html.EscapeString(target) +
			`" alt="` + html.EscapeString(alt) + `"></span>`
	})
	s = wikiLinkPattern.ReplaceAllStringFunc(s, func(m string) string {
		target, alias := splitTarget(wikiLinkPattern.FindStringSubmatch(m))
		return `<a class="internal-link" data-href="` + html.EscapeString(target) +
			`" href="` + HostScheme + hrefEscaper.Replace(target) + `">` +
			html.EscapeString(alias) + `</a>`
	})
	return highlightPattern.ReplaceAllString(s, "<mark>$1</mark>")
}

func embedBlock(m string) string {
	target, alt := splitTarget(embedPattern.FindStringSubmatch(m))
	return `<div class="internal-embed markdown-embed" src="` + html.EscapeString(target) +
		`" alt="` + html.EscapeString(alt) + `"></div>` + "\n"
}

// splitTarget returns the target of a wiki reference and its display text,
// which defaults to the target itself.
func splitTarget(groups []string) (target, display string) {
	target = strings.TrimSpace(groups[1])
	display = strings.TrimSpace(groups[2])
	if display == "" {
		display = target
	}
	return target, display
}
