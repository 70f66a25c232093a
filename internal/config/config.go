package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/pipeline"
	"github.com/alnah/go-mdexport/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength      = 4096
	MaxNameLength      = 100 // theme, highlight style, binary name
	MaxExtensionLength = 16
	MaxExtraArgsLength = 2000
)

// Config holds all configuration for exports.
type Config struct {
	Input       InputConfig       `yaml:"input"`
	Output      OutputConfig      `yaml:"output"`
	Links       LinksConfig       `yaml:"links"`
	CSS         CSSConfig         `yaml:"css"`
	Diagrams    DiagramsConfig    `yaml:"diagrams"`
	Frontmatter FrontmatterConfig `yaml:"frontmatter"`
	Converter   ConverterConfig   `yaml:"converter"`
	Host        HostConfig        `yaml:"host"`
	Assets      AssetsConfig      `yaml:"assets"`
	Log         LogConfig         `yaml:"log"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = next to the source
	Format     string `yaml:"format"`     // Format id, see "mdexport formats"
}

// LinksConfig defines what happens to links between notes.
type LinksConfig struct {
	Mode         string `yaml:"mode"`         // link, text, strip, unchanged
	AddExtension string `yaml:"addExtension"` // Appended to extensionless targets in link mode
}

// CSSConfig defines the stylesheet of standalone documents.
type CSSConfig struct {
	App         string `yaml:"app"`         // none, light, dark, current
	Theme       string `yaml:"theme"`       // Theme name in assets/themes
	InjectTheme bool   `yaml:"injectTheme"` // Include the theme
	Custom      string `yaml:"custom"`      // Path to a user stylesheet
	Highlight   string `yaml:"highlight"`   // Chroma style for code blocks
}

// DiagramsConfig defines diagram rasterization options.
type DiagramsConfig struct {
	HighDPI bool `yaml:"highDPI"`
}

// FrontmatterConfig defines header block options.
type FrontmatterConfig struct {
	Display bool `yaml:"display"` // Keep the header block in the body
}

// ConverterConfig defines how the document converter is invoked.
type ConverterConfig struct {
	Binary     string `yaml:"binary"`     // Converter executable (default: pandoc)
	PDFLatex   string `yaml:"pdflatex"`   // Path to the LaTeX engine, prepended to PATH
	ExtraArgs  string `yaml:"extraArgs"`  // Split like a shell line
	ExportFrom string `yaml:"exportFrom"` // html (rendered) or md (source)
}

// HostConfig describes the note collection being exported.
type HostConfig struct {
	Theme     string `yaml:"theme"`     // light or dark, used by css.app "current"
	VaultRoot string `yaml:"vaultRoot"` // Root of the note collection
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// LogConfig defines diagnostic output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Export sources.
const (
	ExportFromHTML     = "html"
	ExportFromMarkdown = "md"
)

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	lengths := []struct {
		field string
		value string
		max   int
	}{
		{"input.defaultDir", c.Input.DefaultDir, MaxPathLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"output.format", c.Output.Format, MaxNameLength},
		{"links.addExtension", c.Links.AddExtension, MaxExtensionLength},
		{"css.theme", c.CSS.Theme, MaxNameLength},
		{"css.custom", c.CSS.Custom, MaxPathLength},
		{"css.highlight", c.CSS.Highlight, MaxNameLength},
		{"converter.binary", c.Converter.Binary, MaxPathLength},
		{"converter.pdflatex", c.Converter.PDFLatex, MaxPathLength},
		{"converter.extraArgs", c.Converter.ExtraArgs, MaxExtraArgsLength},
		{"host.vaultRoot", c.Host.VaultRoot, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
	}
	for _, l := range lengths {
		if err := validateFieldLength(l.field, l.value, l.max); err != nil {
			return err
		}
	}

	if strings.ContainsAny(c.Links.AddExtension, "./\\#") {
		return fmt.Errorf("%w: links.addExtension %q (give the extension without a dot)", ErrInvalidValue, c.Links.AddExtension)
	}

	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}

	switch c.Converter.ExportFrom {
	case "", ExportFromHTML, ExportFromMarkdown:
	default:
		return fmt.Errorf("%w: converter.exportFrom %q (must be html or md)", ErrInvalidValue, c.Converter.ExportFrom)
	}

	switch c.Host.Theme {
	case "", pipeline.PaletteLight, pipeline.PaletteDark:
	default:
		return fmt.Errorf("%w: host.theme %q (must be light or dark)", ErrInvalidValue, c.Host.Theme)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level %q", ErrInvalidValue, c.Log.Level)
	}

	return nil
}

// Settings projects the pipeline-facing part of the configuration.
func (c *Config) Settings() pipeline.Settings {
	return pipeline.Settings{
		LinkMode:           pipeline.LinkMode(c.Links.Mode),
		AddExtension:       c.Links.AddExtension,
		AppCSS:             pipeline.AppCSS(c.CSS.App),
		InjectTheme:        c.CSS.InjectTheme,
		Theme:              c.CSS.Theme,
		HostTheme:          c.Host.Theme,
		HighDPIDiagrams:    c.Diagrams.HighDPI,
		DisplayFrontmatter: c.Frontmatter.Display,
		CustomCSS:          c.CSS.Custom,
		VaultRoot:          c.Host.VaultRoot,
	}
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
// Loaded files override it field by field.
func DefaultConfig() *Config {
	s := pipeline.DefaultSettings()
	return &Config{
		Output:    OutputConfig{Format: "html"},
		Links:     LinksConfig{Mode: string(s.LinkMode), AddExtension: s.AddExtension},
		CSS:       CSSConfig{App: string(s.AppCSS), Highlight: "github"},
		Diagrams:  DiagramsConfig{HighDPI: s.HighDPIDiagrams},
		Converter: ConverterConfig{Binary: "pandoc", ExportFrom: ExportFromHTML},
		Host:      HostConfig{Theme: s.HostTheme},
		Log:       LogConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-mdexport/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-mdexport", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
