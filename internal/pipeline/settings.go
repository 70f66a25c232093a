package pipeline

import (
	"errors"
	"fmt"
)

// LinkMode controls what happens to links using the host scheme.
type LinkMode string

const (
	// LinkModeLink rewrites the link to an absolute filesystem path.
	LinkModeLink LinkMode = "link"
	// LinkModeText replaces the link with its text.
	LinkModeText LinkMode = "text"
	// LinkModeStrip removes the link and its text.
	LinkModeStrip LinkMode = "strip"
	// LinkModeUnchanged keeps the link and wraps it in [[ ]].
	LinkModeUnchanged LinkMode = "unchanged"
)

// AppCSS selects the palette injected into standalone documents.
type AppCSS string

const (
	AppCSSNone    AppCSS = "none"
	AppCSSLight   AppCSS = "light"
	AppCSSDark    AppCSS = "dark"
	AppCSSCurrent AppCSS = "current"
)

// Palette names known to the style source.
const (
	PaletteLight = "light"
	PaletteDark  = "dark"
)

var (
	ErrInvalidLinkMode = errors.New("invalid link mode")
	ErrInvalidAppCSS   = errors.New("invalid app CSS mode")
)

// Settings is the frozen configuration read by every stage.
// It is passed by value and never mutated by the pipeline.
type Settings struct {
	LinkMode           LinkMode
	AddExtension       string // without the dot; empty disables insertion
	AppCSS             AppCSS
	InjectTheme        bool
	Theme              string
	HostTheme          string // palette of the host when AppCSS is "current"
	HighDPIDiagrams    bool
	DisplayFrontmatter bool
	CustomCSS          string
	VaultRoot          string
}

// DefaultSettings mirrors the defaults of the export command.
func DefaultSettings() Settings {
	return Settings{
		LinkMode:        LinkModeText,
		AddExtension:    "html",
		AppCSS:          AppCSSLight,
		HostTheme:       PaletteLight,
		HighDPIDiagrams: true,
	}
}

// Validate checks enumerated fields.
func (s Settings) Validate() error {
	switch s.LinkMode {
	case LinkModeLink, LinkModeText, LinkModeStrip, LinkModeUnchanged:
	default:
		return fmt.Errorf("%w: %q (expected link, text, strip or unchanged)", ErrInvalidLinkMode, s.LinkMode)
	}
	switch s.AppCSS {
	case AppCSSNone, AppCSSLight, AppCSSDark, AppCSSCurrent:
	default:
		return fmt.Errorf("%w: %q (expected none, light, dark or current)", ErrInvalidAppCSS, s.AppCSS)
	}
	return nil
}

// DiagramScale is the device scale factor used when rasterizing diagrams.
func (s Settings) DiagramScale() float64 {
	if s.HighDPIDiagrams {
		return 2
	}
	return 1
}

// palette returns the palette for standalone CSS; empty when disabled.
func (s Settings) palette() string {
	switch s.AppCSS {
	case AppCSSNone:
		return ""
	case AppCSSDark:
		return PaletteDark
	case AppCSSCurrent:
		if s.HostTheme == PaletteDark {
			return PaletteDark
		}
		return PaletteLight
	default:
		return PaletteLight
	}
}

// diagramPalette never returns empty: diagrams need their variables even
// when standalone CSS is off. Anything ambiguous resolves to light.
func (s Settings) diagramPalette() string {
	if p := s.palette(); p != "" {
		return p
	}
	return PaletteLight
}
