package pipeline

import (
	"html"
	"strings"
)

const documentTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{title}}</title>
<meta charset="utf-8">
<style>
{{css}}
</style>
</head>
<body>
{{body}}
</body>
</html>
`

// Wrap builds a standalone document around body. The title is escaped and
// CSS cannot close its <style> element; body is inserted verbatim.
func Wrap(body, title, css string) string {
	r := strings.NewReplacer(
		"{{title}}", html.EscapeString(title),
		"{{css}}", sanitizeCSS(css),
		"{{body}}", body,
	)
	return r.Replace(documentTemplate)
}

// sanitizeCSS prevents "</style>" (or any "</") inside CSS from ending the
// style element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
