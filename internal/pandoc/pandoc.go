// Package pandoc drives the external document converter.
package pandoc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-shellwords"

	"github.com/alnah/go-mdexport/internal/fileutil"
)

// DefaultBinary is the converter looked up on PATH when none is configured.
const DefaultBinary = "pandoc"

// Sentinel errors for converter runs.
var (
	// ErrConverterNotFound indicates the converter binary cannot be found.
	ErrConverterNotFound = errors.New("converter not found")

	// ErrConversionFailed indicates the converter exited without producing output.
	ErrConversionFailed = errors.New("conversion failed")

	// ErrOutputMissing indicates the destination file is missing or empty
	// after the run.
	ErrOutputMissing = errors.New("converter produced no output file")

	// ErrEmptyOutput indicates a run writing to stdout produced nothing.
	ErrEmptyOutput = errors.New("converter produced no output")

	// ErrInvalidJob indicates a job without input or target format.
	ErrInvalidJob = errors.New("invalid conversion job")
)

// Source formats.
const (
	FromHTML     = "html"
	FromMarkdown = "markdown"
)

// footnoteArtifacts are the back-reference glyphs the host renderer appends
// to footnotes; converters turn them into stray characters.
var footnoteArtifacts = strings.NewReplacer("\u21a9\ufe0e", "", "\u21a9", "", "\ufe0e", "")

// Job is one conversion.
type Job struct {
	From       string // FromHTML or FromMarkdown
	To         string // converter writer name
	Standalone bool   // pass -s
	InputPath  string // read input from this file instead of Stdin
	Stdin      string
	OutputPath string // empty writes to stdout
	Metadata   string // path of a YAML metadata file
	ExtraArgs  string // split like a shell line, appended last
	Dir        string // working directory
}

// Result is what a run produced. Stderr holds converter diagnostics.
type Result struct {
	Stdout []byte
	Stderr string
	Args   []string
}

// Command returns the command line of the run.
func (r *Result) Command() string {
	if r == nil || len(r.Args) == 0 {
		return ""
	}
	return Command{Name: r.Args[0], Args: r.Args[1:]}.String()
}

// Converter runs the converter binary.
type Converter struct {
	binary   string
	pdfLatex string
	runner   Runner
	lookPath func(string) (string, error)
}

// Option configures a Converter.
type Option func(*Converter)

// WithPDFLatex sets the LaTeX engine path. Its directory is prepended to
// PATH for the run, and searched first for xelatex.
func WithPDFLatex(path string) Option {
	return func(c *Converter) { c.pdfLatex = path }
}

// WithRunner replaces the process runner.
func WithRunner(r Runner) Option {
	return func(c *Converter) {
		if r != nil {
			c.runner = r
		}
	}
}

// WithLookPath replaces binary lookup.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Converter) {
		if fn != nil {
			c.lookPath = fn
		}
	}
}

// NewConverter creates a Converter. An empty binary means DefaultBinary.
func NewConverter(binary string, opts ...Option) *Converter {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Converter{
		binary:   binary,
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured binary name or path.
func (c *Converter) Binary() string {
	return c.binary
}

// LookPath resolves the converter binary.
func (c *Converter) LookPath() (string, error) {
	path, err := c.lookPath(c.binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrConverterNotFound, c.binary)
	}
	return path, nil
}

// Version returns the first line of "<binary> --version".
func (c *Converter) Version(ctx context.Context) (string, error) {
	path, err := c.LookPath()
	if err != nil {
		return "", err
	}
	stdout, _, err := c.runner.Run(ctx, Command{Name: path, Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(stdout), "\n")
	return strings.TrimSpace(line), nil
}

// Args builds the argument list of job, without the binary.
func (c *Converter) Args(job Job) []string {
	args := []string{}
	if job.InputPath != "" {
		args = append(args, job.InputPath)
	}
	args = append(args, "--from", job.From, "--to", job.To)
	if job.Standalone {
		args = append(args, "-s")
	}
	if job.OutputPath != "" {
		args = append(args, "-o", job.OutputPath)
	}
	if job.To == "pdf" {
		if engine := c.pdfEngine(); engine != "" {
			args = append(args, "--pdf-engine="+engine)
		}
	}
	if job.Metadata != "" {
		args = append(args, "--metadata-file", job.Metadata)
	}
	extra, err := splitArgs(job.ExtraArgs)
	if err != nil {
		extra = strings.Fields(job.ExtraArgs)
	}
	return append(args, extra...)
}

// splitArgs splits extra arguments on whitespace, keeping quoted values
// together: --metadata=title:"My Doc" stays one argument.
func splitArgs(s string) ([]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return shellwords.Parse(s)
}

// Run converts job. The outcome is decided by the output, not the exit
// status: a run that wrote its file succeeds even when the converter
// complained, and Result.Stderr then carries the diagnostics. A run writing
// to stdout must produce bytes. The Result is returned on failure too.
func (c *Converter) Run(ctx context.Context, job Job) (*Result, error) {
	if job.To == "" || job.From == "" {
		return nil, fmt.Errorf("%w: source and target formats are required", ErrInvalidJob)
	}

	if _, err := splitArgs(job.ExtraArgs); err != nil {
		return nil, fmt.Errorf("%w: extra arguments: %w", ErrInvalidJob, err)
	}

	path, err := c.LookPath()
	if err != nil {
		return nil, err
	}

	// A file left by an earlier export must not pass for this run's output.
	if job.OutputPath != "" {
		if job.InputPath != "" && sameFile(job.InputPath, c.outputPath(job)) {
			return nil, fmt.Errorf("%w: output would overwrite the input %s", ErrInvalidJob, job.InputPath)
		}
		if err := fileutil.RemoveIfExists(c.outputPath(job)); err != nil {
			return nil, fmt.Errorf("removing previous output: %w", err)
		}
	}

	args := c.Args(job)
	res := &Result{Args: append([]string{c.binary}, args...)}

	cmd := Command{Name: path, Args: args, Dir: job.Dir, Env: c.env()}
	if job.InputPath == "" {
		cmd.Stdin = strings.NewReader(footnoteArtifacts.Replace(job.Stdin))
	}

	stdout, stderr, runErr := c.runner.Run(ctx, cmd)
	res.Stdout = stdout
	res.Stderr = strings.TrimSpace(stderr)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	if job.OutputPath != "" {
		if !fileutil.NonEmptyFile(c.outputPath(job)) {
			return res, c.failure(ErrOutputMissing, runErr, res.Stderr)
		}
		if runErr != nil && res.Stderr == "" {
			res.Stderr = runErr.Error()
		}
		return res, nil
	}

	if runErr != nil || len(stdout) == 0 {
		return res, c.failure(ErrEmptyOutput, runErr, res.Stderr)
	}
	return res, nil
}

func (c *Converter) failure(sentinel, runErr error, stderr string) error {
	detail := stderr
	if runErr != nil {
		if detail == "" {
			detail = runErr.Error()
		}
		return fmt.Errorf("%w: %w: %s", sentinel, ErrConversionFailed, detail)
	}
	if detail == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, detail)
}

// outputPath resolves the output path against the working directory.
func (c *Converter) outputPath(job Job) string {
	if filepath.IsAbs(job.OutputPath) || job.Dir == "" {
		return job.OutputPath
	}
	return filepath.Join(job.Dir, job.OutputPath)
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// pdfEngine returns "xelatex" when it can be found next to the configured
// LaTeX engine or on PATH.
func (c *Converter) pdfEngine() string {
	if c.pdfLatex != "" {
		if fileutil.FileExists(filepath.Join(filepath.Dir(c.pdfLatex), "xelatex")) {
			return "xelatex"
		}
	}
	if _, err := c.lookPath("xelatex"); err == nil {
		return "xelatex"
	}
	return ""
}

// env prepends the LaTeX engine directory to PATH. Nil inherits.
func (c *Converter) env() []string {
	if c.pdfLatex == "" {
		return nil
	}
	dir := filepath.Dir(c.pdfLatex)
	env := os.Environ()
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + dir + string(os.PathListSeparator) + strings.TrimPrefix(kv, "PATH=")
			return env
		}
	}
	return append(env, "PATH="+dir)
}
