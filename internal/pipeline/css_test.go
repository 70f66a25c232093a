package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	lightVars = ":root{--palette:light}"
	darkVars  = ":root{--palette:dark}"
	mathCSS   = "@font-face{font-family:MJX}"
)

type fakeStyles struct{}

func (fakeStyles) Palette(name string) (string, error) {
	switch name {
	case PaletteLight:
		return lightVars, nil
	case PaletteDark:
		return darkVars, nil
	}
	return "", errors.New("unknown palette")
}

func (fakeStyles) Theme(name string) (string, error) {
	if name == "minimal" {
		return ".theme-minimal{}", nil
	}
	return "", errors.New("theme not found")
}

func (fakeStyles) MathFonts() (string, error) {
	return mathCSS, nil
}

func cssContext(dir string, s Settings) DocumentContext {
	return DocumentContext{Path: filepath.Join(dir, "Note.md"), Dir: dir, Format: "html", HTMLNative: true, Settings: s}
}

// ---------------------------------------------------------------------------
// TestAssemble - Source order and switches
// ---------------------------------------------------------------------------

func TestAssemble_Order(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeNotes(t, dir, map[string]string{"custom.css": ".custom{}"})

	reg := NewStyleRegistry()
	reg.Register("plugin", ".plugin{}")

	s := DefaultSettings()
	s.InjectTheme = true
	s.Theme = "minimal"
	s.CustomCSS = "custom.css"

	css, warnings := NewCSSAssembler(fakeStyles{}, reg, nil).
		Assemble(cssContext(dir, s), `<mjx-container jax="CHTML">x</mjx-container>`)

	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	order := []string{lightVars, ".theme-minimal{}", ".plugin{}", mathCSS, ".custom{}"}
	last := -1
	for _, part := range order {
		i := strings.Index(css, part)
		if i < 0 {
			t.Fatalf("css missing %q: %q", part, css)
		}
		if i < last {
			t.Errorf("%q out of order in %q", part, css)
		}
		last = i
	}
}

func TestAssemble_Palette(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		appCSS    AppCSS
		hostTheme string
		want      string
		wantNone  bool
	}{
		{name: "light", appCSS: AppCSSLight, want: lightVars},
		{name: "dark", appCSS: AppCSSDark, want: darkVars},
		{name: "current dark", appCSS: AppCSSCurrent, hostTheme: PaletteDark, want: darkVars},
		{name: "current ambiguous is light", appCSS: AppCSSCurrent, hostTheme: "", want: lightVars},
		{name: "none", appCSS: AppCSSNone, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSettings()
			s.AppCSS = tt.appCSS
			s.HostTheme = tt.hostTheme

			css, _ := NewCSSAssembler(fakeStyles{}, NewStyleRegistry(), nil).Assemble(cssContext(t.TempDir(), s), "")
			if tt.wantNone {
				if strings.Contains(css, "--palette") {
					t.Errorf("css = %q, want no palette", css)
				}
				return
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("css = %q, want %q", css, tt.want)
			}
		})
	}
}

func TestAssemble_NoneSkipsRegistry(t *testing.T) {
	t.Parallel()

	reg := NewStyleRegistry()
	reg.Register("plugin", ".plugin{}")
	s := DefaultSettings()
	s.AppCSS = AppCSSNone

	css, _ := NewCSSAssembler(fakeStyles{}, reg, nil).Assemble(cssContext(t.TempDir(), s), "")
	if css != "" {
		t.Errorf("css = %q, want empty", css)
	}
}

func TestAssemble_MathFontsOnlyWithMath(t *testing.T) {
	t.Parallel()

	css, _ := NewCSSAssembler(fakeStyles{}, NewStyleRegistry(), nil).
		Assemble(cssContext(t.TempDir(), DefaultSettings()), "<p>no math</p>")
	if strings.Contains(css, mathCSS) {
		t.Errorf("math fonts included without math: %q", css)
	}
}

// ---------------------------------------------------------------------------
// TestAssemble_CustomCSS - Resolution order and failure
// ---------------------------------------------------------------------------

func TestAssemble_CustomCSS(t *testing.T) {
	t.Parallel()

	vault := t.TempDir()
	docDir := filepath.Join(vault, "notes")
	writeNotes(t, vault, map[string]string{
		"styles/print.css":       ".vault{}",
		"notes/styles/print.css": ".doc{}",
		"notes/local.css":        ".local{}",
	})
	abs := filepath.Join(vault, "styles", "print.css")

	tests := []struct {
		name  string
		path  string
		vault string
		want  string
	}{
		{name: "absolute path", path: abs, want: ".vault{}"},
		{name: "vault root first", path: "styles/print.css", vault: vault, want: ".vault{}"},
		{name: "document directory without vault", path: "styles/print.css", want: ".doc{}"},
		{name: "document directory fallback", path: "local.css", vault: vault, want: ".local{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSettings()
			s.CustomCSS = tt.path
			s.VaultRoot = tt.vault

			css, warnings := NewCSSAssembler(fakeStyles{}, NewStyleRegistry(), nil).Assemble(cssContext(docDir, s), "")
			if len(warnings) != 0 {
				t.Errorf("unexpected warnings: %v", warnings)
			}
			if !strings.Contains(css, tt.want) {
				t.Errorf("css = %q, want %q", css, tt.want)
			}
		})
	}
}

func TestAssemble_CustomCSSMissing(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.CustomCSS = "nope.css"

	css, warnings := NewCSSAssembler(fakeStyles{}, NewStyleRegistry(), nil).Assemble(cssContext(t.TempDir(), s), "")

	if len(warnings) != 1 || !strings.Contains(warnings[0], "nope.css") {
		t.Errorf("warnings = %v, want custom CSS warning", warnings)
	}
	if css != lightVars {
		t.Errorf("css = %q, want palette only", css)
	}
}

func TestAssemble_ThemeMissing(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.InjectTheme = true
	s.Theme = "ghost"

	_, warnings := NewCSSAssembler(fakeStyles{}, NewStyleRegistry(), nil).Assemble(cssContext(t.TempDir(), s), "")
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want theme warning", warnings)
	}
}

// ---------------------------------------------------------------------------
// TestStyleRegistry
// ---------------------------------------------------------------------------

func TestStyleRegistry(t *testing.T) {
	t.Parallel()

	reg := NewStyleRegistry()
	reg.Register("a", ".a{}")
	reg.Register("b", ".b{}")
	reg.Register("a", ".a2{}")

	if got := reg.CSS(); got != ".a2{}\n.b{}" {
		t.Errorf("CSS() = %q, want replaced fragment in original position", got)
	}

	reg.Unregister("a")
	reg.Unregister("missing")
	if got := reg.Names(); len(got) != 1 || got[0] != "b" {
		t.Errorf("Names() = %v, want [b]", got)
	}
}

func TestRegisterHighlightStyle(t *testing.T) {
	t.Parallel()

	reg := NewStyleRegistry()
	if err := RegisterHighlightStyle(reg, "github"); err != nil {
		t.Fatalf("RegisterHighlightStyle() error: %v", err)
	}
	if !strings.Contains(reg.CSS(), ".chroma") {
		t.Errorf("highlight CSS should target .chroma classes")
	}
}

func TestCustomCSS_ReadsFromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.css")
	if err := os.WriteFile(path, []byte(".x{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := NewCSSAssembler(fakeStyles{}, nil, nil)
	if css, ok := a.customCSS(path, "", "/nowhere"); !ok || css != ".x{}" {
		t.Errorf("customCSS() = %q, %v", css, ok)
	}
}
