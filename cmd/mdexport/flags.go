package main

import (
	"errors"
	"fmt"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdexport/internal/config"
)

// errUsage marks command line mistakes cobra reports as plain errors.
var errUsage = errors.New("usage error")

// ErrInvalidWorkerCount indicates a negative --workers value.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	color   string
}

// linkFlags holds link rewriting flags.
type linkFlags struct {
	mode         string
	addExtension string
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	app         string
	theme       string
	injectTheme bool
	hostTheme   string
	custom      string
	highlight   string
	assetPath   string
}

// converterFlags holds converter invocation flags.
type converterFlags struct {
	binary    string
	pdfLatex  string
	extraArgs string
	from      string
}

// exportFlags holds all flags for the export command.
type exportFlags struct {
	format      string
	output      string
	outputDir   string
	vault       string
	workers     int
	timeout     string
	highDPI     bool
	frontmatter bool
	showCommand bool
	links       linkFlags
	style       styleFlags
	converter   converterFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and converter diagnostics")
	fs.StringVar(&f.color, "color", "auto", "colorize output: auto, always, never")
}

// addExportFlags adds export flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "target format (see 'mdexport formats')")
	fs.StringVarP(&f.output, "output", "o", "", "output file, or - for stdout (single note only)")
	fs.StringVar(&f.outputDir, "output-dir", "", "output directory (default: next to each note)")
	fs.StringVar(&f.vault, "vault", "", "root of the note collection")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel exports (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "browser timeout per export (e.g. 30s, 2m)")
	fs.BoolVar(&f.highDPI, "high-dpi", true, "rasterize diagrams at twice the resolution")
	fs.BoolVar(&f.frontmatter, "frontmatter", false, "keep the header block in the body")
	fs.BoolVar(&f.showCommand, "show-command", false, "print the converter command line")

	addLinkFlags(fs, &f.links)
	addStyleFlags(fs, &f.style)
	addConverterFlags(fs, &f.converter)
}

func addLinkFlags(fs *flag.FlagSet, f *linkFlags) {
	fs.StringVar(&f.mode, "links", "", "links between notes: link, text, strip, unchanged")
	fs.StringVar(&f.addExtension, "link-ext", "", "extension added to note links in link mode")
}

func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.app, "app-css", "", "palette: none, light, dark, current")
	fs.StringVar(&f.theme, "theme", "", "theme name")
	fs.BoolVar(&f.injectTheme, "inject-theme", false, "include the theme stylesheet")
	fs.StringVar(&f.hostTheme, "host-theme", "", "palette used by --app-css current: light, dark")
	fs.StringVar(&f.custom, "css", "", "custom stylesheet path")
	fs.StringVar(&f.highlight, "highlight", "", "code highlight style")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory overriding embedded assets")
}

func addConverterFlags(fs *flag.FlagSet, f *converterFlags) {
	fs.StringVar(&f.binary, "pandoc", "", "converter binary")
	fs.StringVar(&f.pdfLatex, "pdflatex", "", "LaTeX engine path")
	fs.StringVar(&f.extraArgs, "extra-args", "", "arguments appended to the converter command")
	fs.StringVar(&f.from, "from", "", "what the converter reads: html or md")
}

// mergeFlags applies explicitly set flags over cfg. CLI flags win over
// env vars, config files and defaults.
func mergeFlags(fs *flag.FlagSet, f *exportFlags, cfg *config.Config) {
	strs := []struct {
		name string
		dst  *string
		val  string
	}{
		{"format", &cfg.Output.Format, f.format},
		{"output-dir", &cfg.Output.DefaultDir, f.outputDir},
		{"vault", &cfg.Host.VaultRoot, f.vault},
		{"links", &cfg.Links.Mode, f.links.mode},
		{"link-ext", &cfg.Links.AddExtension, f.links.addExtension},
		{"app-css", &cfg.CSS.App, f.style.app},
		{"theme", &cfg.CSS.Theme, f.style.theme},
		{"host-theme", &cfg.Host.Theme, f.style.hostTheme},
		{"css", &cfg.CSS.Custom, f.style.custom},
		{"highlight", &cfg.CSS.Highlight, f.style.highlight},
		{"asset-path", &cfg.Assets.BasePath, f.style.assetPath},
		{"pandoc", &cfg.Converter.Binary, f.converter.binary},
		{"pdflatex", &cfg.Converter.PDFLatex, f.converter.pdfLatex},
		{"extra-args", &cfg.Converter.ExtraArgs, f.converter.extraArgs},
		{"from", &cfg.Converter.ExportFrom, f.converter.from},
	}
	for _, s := range strs {
		if fs.Changed(s.name) {
			*s.dst = s.val
		}
	}

	if fs.Changed("inject-theme") {
		cfg.CSS.InjectTheme = f.style.injectTheme
	}
	if fs.Changed("theme") && !fs.Changed("inject-theme") {
		cfg.CSS.InjectTheme = true
	}
	if fs.Changed("high-dpi") {
		cfg.Diagrams.HighDPI = f.highDPI
	}
	if fs.Changed("frontmatter") {
		cfg.Frontmatter.Display = f.frontmatter
	}
}

// resolveTimeout returns the browser timeout: flag > env > zero (library default).
func resolveTimeout(flagValue string, env *envConfig) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid --timeout %q: %v", errUsage, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: --timeout must be positive, got %s", errUsage, flagValue)
		}
		return d, nil
	}
	return env.Timeout, nil
}

// resolveWorkers returns the worker count: flag > env > zero (auto).
func resolveWorkers(flagValue int, env *envConfig) (int, error) {
	if flagValue < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, flagValue)
	}
	if flagValue > 0 {
		return flagValue, nil
	}
	return env.Workers, nil
}
