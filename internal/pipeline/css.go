package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// MathMarker appears in rendered HTML when math was typeset with CommonHTML
// output, which needs the math font faces.
const MathMarker = `jax="CHTML"`

// StyleSource provides the built-in stylesheets.
type StyleSource interface {
	Palette(name string) (string, error)
	Theme(name string) (string, error)
	MathFonts() (string, error)
}

// CSSAssembler builds the stylesheet of standalone documents.
type CSSAssembler struct {
	source   StyleSource
	registry *StyleRegistry
	logger   *slog.Logger
	readFile func(string) ([]byte, error)
}

// NewCSSAssembler creates an assembler. A nil registry means DefaultStyles.
func NewCSSAssembler(source StyleSource, registry *StyleRegistry, logger *slog.Logger) *CSSAssembler {
	if registry == nil {
		registry = DefaultStyles()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CSSAssembler{
		source:   source,
		registry: registry,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Variables returns the palette block injected into diagrams. It ignores
// AppCSS "none": diagrams always get their variables.
func (a *CSSAssembler) Variables(s Settings) string {
	css, err := a.source.Palette(s.diagramPalette())
	if err != nil {
		a.logger.Warn("diagram palette unavailable", "palette", s.diagramPalette(), "err", err)
		return ""
	}
	return css
}

// Assemble concatenates, in order: palette variables, the named theme,
// registered fragments, math fonts when body holds math, and the custom
// CSS file. Sources that fail are skipped with a warning.
func (a *CSSAssembler) Assemble(dc DocumentContext, body string) (string, []string) {
	s := dc.Settings
	var parts, warnings []string
	warn := func(msg string, args ...any) {
		a.logger.Warn(msg, args...)
		warnings = append(warnings, formatWarning(msg, args...))
	}

	if palette := s.palette(); palette != "" {
		if css, err := a.source.Palette(palette); err != nil {
			warn("palette unavailable", "palette", palette, "err", err)
		} else {
			parts = append(parts, css)
		}
	}

	if s.InjectTheme && s.Theme != "" {
		if css, err := a.source.Theme(s.Theme); err != nil {
			warn("theme unavailable", "theme", s.Theme, "err", err)
		} else {
			parts = append(parts, css)
		}
	}

	if s.AppCSS != AppCSSNone {
		parts = append(parts, a.registry.CSS())
	}

	if strings.Contains(body, MathMarker) {
		if css, err := a.source.MathFonts(); err != nil {
			warn("math fonts unavailable", "err", err)
		} else {
			parts = append(parts, css)
		}
	}

	if s.CustomCSS != "" {
		if css, ok := a.customCSS(s.CustomCSS, s.VaultRoot, dc.Dir); ok {
			parts = append(parts, css)
		} else {
			warn("custom CSS not found", "path", s.CustomCSS)
		}
	}

	return joinCSS(parts), warnings
}

// customCSS tries path as given, then under the vault root, then next to
// the document.
func (a *CSSAssembler) customCSS(path, vaultRoot, docDir string) (string, bool) {
	var candidates []string
	if filepath.IsAbs(path) {
		candidates = append(candidates, path)
	}
	if vaultRoot != "" {
		candidates = append(candidates, filepath.Join(vaultRoot, path))
	}
	candidates = append(candidates, filepath.Join(docDir, path))

	for _, c := range candidates {
		data, err := a.readFile(c) // #nosec G304 -- user-provided path
		if err == nil {
			return string(data), true
		}
	}
	return "", false
}

func joinCSS(parts []string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, "\n\n")
}
