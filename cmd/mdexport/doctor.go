package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-mdexport/internal/fileutil"
	"github.com/alnah/go-mdexport/internal/pandoc"
)

// Doctor statuses.
const (
	doctorReady    = "ready"
	doctorWarnings = "warnings"
	doctorErrors   = "errors"
)

const doctorProbeTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status    string        `json:"status"`
	Converter converterInfo `json:"converter"`
	Chrome    chromeInfo    `json:"chrome"`
	Env       envInfo       `json:"environment"`
	System    systemInfo    `json:"system"`
	Warnings  []string      `json:"warnings,omitempty"`
	Errors    []string      `json:"errors,omitempty"`
}

// converterInfo holds converter detection results.
type converterInfo struct {
	Binary  string `json:"binary"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	XeLaTeX bool   `json:"xelatex"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func newDoctorCmd(env *Environment) *cobra.Command {
	var (
		jsonOutput bool
		binary     string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the converter, browser and system",
		Long: `doctor checks what exports need: the converter for most formats,
a LaTeX engine for pdf, and Chrome for pdf-browser and diagram images.

Exits non-zero only when the converter is missing or the system cannot
hold temporary files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if binary == "" {
				binary = loadEnvConfig(env.Getenv).Pandoc
			}
			result := runDoctor(cmd.Context(), env, binary)

			if jsonOutput {
				enc := json.NewEncoder(env.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				printDoctorResult(env.Stdout, result)
			}

			if result.Status == doctorErrors {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")
	cmd.Flags().StringVar(&binary, "pandoc", "", "converter binary to check")
	return cmd
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, env *Environment, binary string) *doctorResult {
	result := &doctorResult{
		Status: doctorReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkConverter(ctx, env, result, binary)
	checkChrome(ctx, env, result)
	checkEnvironment(env, result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = doctorErrors
	} else if len(result.Warnings) > 0 {
		result.Status = doctorWarnings
	}

	return result
}

// checkConverter locates the converter and the LaTeX engine.
func checkConverter(ctx context.Context, env *Environment, result *doctorResult, binary string) {
	if binary == "" {
		binary = pandoc.DefaultBinary
	}
	result.Converter.Binary = binary

	conv := pandoc.NewConverter(binary, pandoc.WithLookPath(env.LookPath))
	path, err := conv.LookPath()
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found. Install it or pass --pandoc", binary))
		return
	}
	result.Converter.Found = true
	result.Converter.Path = path

	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()
	if version, err := conv.Version(ctx); err == nil {
		result.Converter.Version = version
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get %s version: %v", binary, err))
	}

	if _, err := env.LookPath("xelatex"); err == nil {
		result.Converter.XeLaTeX = true
	} else {
		result.Warnings = append(result.Warnings,
			"xelatex not found. The pdf format falls back to the converter default engine")
	}
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(ctx context.Context, env *Environment, result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = env.LookBrowser()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found. pdf-browser and diagram images need it; set ROD_BROWSER_BIN")
			return
		}
	}

	if !fileutil.FileExists(chromePath) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	ctx, cancel := context.WithTimeout(ctx, doctorProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, chromePath, "--version").Output() // #nosec G204 -- path from launcher or user env
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}

	result.Chrome.Sandbox = result.Env.NoSandbox != "1"
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(env *Environment, result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("MDEXPORT_CONTAINER") == "1" {
		return true, "MDEXPORT_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "mdexport-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
		return
	}
	_ = os.Remove(testFile)
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "mdexport doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Converter")
	if r.Converter.Found {
		fmt.Fprintf(w, "  [OK] %s at %s\n", r.Converter.Binary, r.Converter.Path)
		if r.Converter.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Converter.Version)
		}
		if r.Converter.XeLaTeX {
			fmt.Fprintln(w, "  [OK] xelatex: found")
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not found\n", r.Converter.Binary)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case doctorReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case doctorWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case doctorErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
