package mdexport

import (
	"fmt"
	"strings"
)

// Format is an export target.
type Format struct {
	ID         string // what users type
	Name       string // display name
	Extension  string // of the output file, without the dot
	Writer     string // converter writer; empty for formats written directly
	Standalone bool   // the writer needs -s to produce a complete document
	HTMLNative bool   // the wrapped HTML is the output
	Browser    bool   // printed to PDF by the headless browser
}

// FormatHTML is the host's native format, written without the converter.
const FormatHTML = "html"

var formats = []Format{
	{ID: FormatHTML, Name: "HTML", Extension: "html", Writer: "html", Standalone: true, HTMLNative: true},
	{ID: "pdf", Name: "PDF (LaTeX)", Extension: "pdf", Writer: "pdf"},
	{ID: "pdf-browser", Name: "PDF (browser)", Extension: "pdf", Browser: true},
	{ID: "docx", Name: "Word Document", Extension: "docx", Writer: "docx"},
	{ID: "odt", Name: "OpenDocument", Extension: "odt", Writer: "odt"},
	{ID: "rtf", Name: "Rich Text Format", Extension: "rtf", Writer: "rtf"},
	{ID: "epub", Name: "ePub", Extension: "epub", Writer: "epub"},
	{ID: "pptx", Name: "PowerPoint", Extension: "pptx", Writer: "pptx"},
	{ID: "revealjs", Name: "Reveal.js Slides", Extension: "reveal.html", Writer: "revealjs", Standalone: true},
	{ID: "latex", Name: "LaTeX", Extension: "tex", Writer: "latex", Standalone: true},
	{ID: "beamer", Name: "Beamer Slides", Extension: "beamer.tex", Writer: "beamer", Standalone: true},
	{ID: "markdown", Name: "Markdown", Extension: "pandoc.md", Writer: "markdown"},
	{ID: "gfm", Name: "GitHub Markdown", Extension: "gfm.md", Writer: "gfm"},
	{ID: "rst", Name: "reStructuredText", Extension: "rst", Writer: "rst"},
	{ID: "asciidoc", Name: "AsciiDoc", Extension: "adoc", Writer: "asciidoc"},
	{ID: "org", Name: "Org Mode", Extension: "org", Writer: "org"},
	{ID: "dokuwiki", Name: "DokuWiki", Extension: "txt", Writer: "dokuwiki"},
	{ID: "mediawiki", Name: "MediaWiki", Extension: "mediawiki", Writer: "mediawiki"},
	{ID: "plain", Name: "Plain Text", Extension: "txt", Writer: "plain"},
}

// Formats returns every supported format, in display order.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// LookupFormat finds a format by ID, case-insensitively.
func LookupFormat(id string) (Format, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	for _, f := range formats {
		if f.ID == key {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, id)
}

// FormatIDs returns the IDs of every format.
func FormatIDs() []string {
	ids := make([]string, len(formats))
	for i, f := range formats {
		ids[i] = f.ID
	}
	return ids
}
