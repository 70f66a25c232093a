package pipeline

import (
	"fmt"
	"path/filepath"
	"slices"
)

// DocumentContext describes one document being processed. It is immutable:
// Child derives a new context for an embedded document.
type DocumentContext struct {
	Path       string // absolute source path
	Dir        string
	Format     string // output format identifier
	HTMLNative bool   // diagrams stay vector when true
	Settings   Settings
	DiagramCSS string // variables injected into every diagram

	ancestors []string
}

// NewDocumentContext creates the context of a top-level export.
func NewDocumentContext(path, format string, htmlNative bool, s Settings) (DocumentContext, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return DocumentContext{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	return DocumentContext{
		Path:       abs,
		Dir:        filepath.Dir(abs),
		Format:     format,
		HTMLNative: htmlNative,
		Settings:   s,
	}, nil
}

// WithDiagramCSS returns a copy carrying the diagram variable block.
func (c DocumentContext) WithDiagramCSS(css string) DocumentContext {
	c.DiagramCSS = css
	return c
}

// Ancestors returns the documents currently being expanded above this one,
// outermost first.
func (c DocumentContext) Ancestors() []string {
	return slices.Clone(c.ancestors)
}

// Depth is the number of ancestors.
func (c DocumentContext) Depth() int {
	return len(c.ancestors)
}

// InChain reports whether path is this document or one of its ancestors.
func (c DocumentContext) InChain(path string) bool {
	clean := filepath.Clean(path)
	return clean == c.Path || slices.Contains(c.ancestors, clean)
}

// Child derives the context of a document embedded in this one.
func (c DocumentContext) Child(path string) DocumentContext {
	child := c
	child.Path = filepath.Clean(path)
	child.Dir = filepath.Dir(child.Path)
	child.ancestors = append(slices.Clone(c.ancestors), c.Path)
	return child
}
