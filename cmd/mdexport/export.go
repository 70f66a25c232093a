package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	mdexport "github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/logging"
)

func newExportCmd(env *Environment, common *commonFlags) *cobra.Command {
	f := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export [flags] <note.md|dir>...",
		Short: "Export notes to another format",
		Long: `Export renders each note, expands embeds, rewrites links and diagrams,
then writes the result as HTML, a browser-printed PDF, or any format the
converter supports.

Directories are searched recursively; hidden folders are skipped.`,
		Example: `  mdexport export note.md
  mdexport export -f docx --output-dir out/ vault/
  mdexport export -f markdown -o - note.md
  mdexport export -f pdf-browser --app-css dark note.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), cmd, env, common, f, args)
		},
	}
	addExportFlags(cmd.Flags(), f)
	return cmd
}

// runExport loads the configuration, discovers notes and exports them.
func runExport(ctx context.Context, cmd *cobra.Command, env *Environment, common *commonFlags, f *exportFlags, args []string) error {
	envCfg := loadEnvConfig(env.Getenv)
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	cfg, err := loadConfig(common.config, envCfg)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(cmd.Flags(), f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, err := mdexport.LookupFormat(cfg.Output.Format)
	if err != nil {
		return err
	}
	timeout, err := resolveTimeout(f.timeout, envCfg)
	if err != nil {
		return err
	}
	workers, err := resolveWorkers(f.workers, envCfg)
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 && cfg.Input.DefaultDir != "" {
		inputs = []string{cfg.Input.DefaultDir}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: pass notes or directories, or set input.defaultDir", ErrNoInput)
	}

	notes, err := discoverNotes(inputs)
	if err != nil {
		return err
	}
	if len(notes) == 0 {
		return fmt.Errorf("%w in %v", ErrNoNotes, inputs)
	}
	if f.output != "" && len(notes) > 1 {
		return fmt.Errorf("%w: found %d", ErrOutputWithMany, len(notes))
	}

	reqs := make([]mdexport.Request, len(notes))
	for i, n := range notes {
		reqs[i] = mdexport.Request{
			Source: n.Source,
			Format: format.ID,
			Output: resolveOutputPath(n, cfg.Output.DefaultDir, format),
		}
		if f.output != "" {
			reqs[i].Output = f.output
		}
	}

	logger := logging.New(env.Stderr, logLevel(*common, cfg))
	opts := []mdexport.Option{
		mdexport.WithSettings(settingsFromConfig(cfg)),
		mdexport.WithAssetPath(cfg.Assets.BasePath),
		mdexport.WithHighlightStyle(cfg.CSS.Highlight),
		mdexport.WithLogger(logger),
	}
	if timeout > 0 {
		opts = append(opts, mdexport.WithTimeout(timeout))
	}

	size := mdexport.ResolvePoolSize(workers)
	if size > len(reqs) {
		size = len(reqs)
	}
	pool := env.NewPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing exporters", "err", err)
		}
	}()

	logger.Debug("exporting", "notes", len(reqs), "format", format.ID, "workers", size)

	outcomes := exportBatch(ctx, pool, reqs)
	newReporter(env, *common, f.showCommand, cfg.Converter.Binary).print(outcomes)

	if err := ctx.Err(); err != nil {
		return err
	}
	return firstError(outcomes)
}

// loadConfig loads the config named by the flag, then MDEXPORT_CONFIG.
// Without either, defaults apply.
func loadConfig(name string, env *envConfig) (*config.Config, error) {
	if name == "" {
		name = env.ConfigPath
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// settingsFromConfig builds the exporter settings.
func settingsFromConfig(cfg *config.Config) mdexport.Settings {
	p := cfg.Settings()
	return mdexport.Settings{
		LinkMode:           p.LinkMode,
		AddExtension:       p.AddExtension,
		AppCSS:             p.AppCSS,
		InjectTheme:        p.InjectTheme,
		Theme:              p.Theme,
		HostTheme:          p.HostTheme,
		HighDPIDiagrams:    p.HighDPIDiagrams,
		DisplayFrontmatter: p.DisplayFrontmatter,
		CustomCSS:          p.CustomCSS,
		VaultRoot:          p.VaultRoot,
		OutputFolder:       cfg.Output.DefaultDir,
		ExportFrom:         exportSource(cfg.Converter.ExportFrom),
		Converter:          cfg.Converter.Binary,
		PDFLatex:           cfg.Converter.PDFLatex,
		ExtraArgs:          cfg.Converter.ExtraArgs,
	}
}

func exportSource(s string) mdexport.ExportSource {
	if s == "" {
		return mdexport.ExportFromHTML
	}
	return mdexport.ExportSource(s)
}

// logLevel picks the log level: --verbose and --quiet override log.level.
func logLevel(common commonFlags, cfg *config.Config) slog.Level {
	switch {
	case common.verbose:
		return slog.LevelDebug
	case common.quiet:
		return slog.LevelError
	}
	return logging.ParseLevel(cfg.Log.Level)
}
