package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-mdexport/internal/config"
)

const envPrefix = "MDEXPORT_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // MDEXPORT_CONFIG: config file name or path
	Format     string        // MDEXPORT_FORMAT: default target format
	Timeout    time.Duration // MDEXPORT_TIMEOUT: per-export browser timeout
	Workers    int           // MDEXPORT_WORKERS: parallel exports

	InputDir  string // MDEXPORT_INPUT_DIR: default input directory
	OutputDir string // MDEXPORT_OUTPUT_DIR: default output directory
	Vault     string // MDEXPORT_VAULT: note collection root

	Pandoc    string // MDEXPORT_PANDOC: converter binary
	PDFLatex  string // MDEXPORT_PDFLATEX: LaTeX engine path
	AssetPath string // MDEXPORT_ASSET_PATH: asset directory override
	LogLevel  string // MDEXPORT_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid MDEXPORT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"MDEXPORT_CONFIG":     true,
	"MDEXPORT_FORMAT":     true,
	"MDEXPORT_TIMEOUT":    true,
	"MDEXPORT_WORKERS":    true,
	"MDEXPORT_INPUT_DIR":  true,
	"MDEXPORT_OUTPUT_DIR": true,
	"MDEXPORT_VAULT":      true,
	"MDEXPORT_PANDOC":     true,
	"MDEXPORT_PDFLATEX":   true,
	"MDEXPORT_ASSET_PATH": true,
	"MDEXPORT_LOG_LEVEL":  true,
	"MDEXPORT_CONTAINER":  true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("MDEXPORT_CONFIG"),
		Format:     getenv("MDEXPORT_FORMAT"),
		InputDir:   getenv("MDEXPORT_INPUT_DIR"),
		OutputDir:  getenv("MDEXPORT_OUTPUT_DIR"),
		Vault:      getenv("MDEXPORT_VAULT"),
		Pandoc:     getenv("MDEXPORT_PANDOC"),
		PDFLatex:   getenv("MDEXPORT_PDFLATEX"),
		AssetPath:  getenv("MDEXPORT_ASSET_PATH"),
		LogLevel:   getenv("MDEXPORT_LOG_LEVEL"),
	}

	if timeout := getenv("MDEXPORT_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MDEXPORT_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized MDEXPORT_*
// variable in environ.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig applies environment values to fields the config file left
// at their defaults. Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	def := config.DefaultConfig()

	setIfDefault(&cfg.Output.Format, def.Output.Format, env.Format)
	setIfDefault(&cfg.Input.DefaultDir, def.Input.DefaultDir, env.InputDir)
	setIfDefault(&cfg.Output.DefaultDir, def.Output.DefaultDir, env.OutputDir)
	setIfDefault(&cfg.Host.VaultRoot, def.Host.VaultRoot, env.Vault)
	setIfDefault(&cfg.Converter.Binary, def.Converter.Binary, env.Pandoc)
	setIfDefault(&cfg.Converter.PDFLatex, def.Converter.PDFLatex, env.PDFLatex)
	setIfDefault(&cfg.Assets.BasePath, def.Assets.BasePath, env.AssetPath)
	setIfDefault(&cfg.Log.Level, def.Log.Level, env.LogLevel)
}

func setIfDefault(dst *string, def, value string) {
	if value != "" && (*dst == "" || *dst == def) {
		*dst = value
	}
}
