package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	mdexport "github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/assets"
	"github.com/alnah/go-mdexport/internal/config"
	"github.com/alnah/go-mdexport/internal/hints"
)

// exportOutcome holds the outcome of a single export.
type exportOutcome struct {
	Source   string
	Result   *mdexport.ExportResult
	Err      error
	Duration time.Duration
}

// exportBatch runs reqs concurrently, at most pool.Size() at a time.
// Per-note failures are recorded in the outcome, never returned, so one bad
// note does not stop the others.
func exportBatch(ctx context.Context, pool Pool, reqs []mdexport.Request) []exportOutcome {
	outcomes := make([]exportOutcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pool.Size())
	for i, req := range reqs {
		g.Go(func() error {
			outcomes[i] = exportOne(gctx, pool, req)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func exportOne(ctx context.Context, pool Pool, req mdexport.Request) exportOutcome {
	start := time.Now()
	out := exportOutcome{Source: req.Source}

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out
	}

	exp, err := pool.Acquire()
	if err != nil {
		out.Err = err
		out.Duration = time.Since(start)
		return out
	}
	defer pool.Release(exp)

	out.Result, out.Err = exp.Export(ctx, req)
	out.Duration = time.Since(start)
	return out
}

// resultSummary holds the tally of a batch.
type resultSummary struct {
	Succeeded int
	Warned    int
	Failed    int
}

// countResults tallies succeeded, warned and failed exports.
func countResults(outcomes []exportOutcome) resultSummary {
	var s resultSummary
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			s.Failed++
		case o.Result != nil && (o.Result.Status == mdexport.StatusWarnings || len(o.Result.Warnings) > 0):
			s.Succeeded++
			s.Warned++
		default:
			s.Succeeded++
		}
	}
	return s
}

// errReported marks failures already printed in detail.
var errReported = errors.New("failed")

// firstError returns the first failure of the batch, wrapped with the count.
func firstError(outcomes []exportOutcome) error {
	s := countResults(outcomes)
	for _, o := range outcomes {
		if o.Err != nil {
			return fmt.Errorf("%w: %d of %d: %w", errReported, s.Failed, len(outcomes), o.Err)
		}
	}
	return nil
}

// reporter prints batch results.
type reporter struct {
	stdout      io.Writer
	stderr      io.Writer
	quiet       bool
	verbose     bool
	showCommand bool
	binary      string

	ok   *color.Color
	warn *color.Color
	fail *color.Color
}

func newReporter(env *Environment, common commonFlags, showCommand bool, binary string) *reporter {
	r := &reporter{
		stdout:      env.Stdout,
		stderr:      env.Stderr,
		quiet:       common.quiet,
		verbose:     common.verbose,
		showCommand: showCommand,
		binary:      binary,
		ok:          color.New(color.FgGreen),
		warn:        color.New(color.FgYellow, color.Bold),
		fail:        color.New(color.FgRed, color.Bold),
	}
	applyColorMode(common.color, r.ok, r.warn, r.fail)
	return r
}

// applyColorMode forces colors on or off. "auto" keeps the terminal detection
// fatih/color did at startup.
func applyColorMode(mode string, cs ...*color.Color) {
	for _, c := range cs {
		switch mode {
		case "always":
			c.EnableColor()
		case "never":
			c.DisableColor()
		}
	}
}

// print writes every outcome and the summary. In-memory results go to
// stdout verbatim; everything else goes to stderr when stdout carries a
// document.
func (r *reporter) print(outcomes []exportOutcome) {
	status := r.stdout
	for _, o := range outcomes {
		if o.Err == nil && o.Result != nil && o.Result.Path == "" {
			status = r.stderr
		}
	}

	warnedConverter := false
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(r.stderr, "%s %s: %v%s\n", r.fail.Sprint("FAILED"), o.Source, o.Err, errorHint(o.Err, r.binary))
			continue
		}

		res := o.Result
		if res.Path == "" {
			_, _ = r.stdout.Write(res.Content)
		}

		for _, w := range res.Warnings {
			hint := ""
			if strings.HasPrefix(w, "theme unavailable") {
				if themes, err := assets.Themes(); err == nil {
					hint = hints.ForThemeNotFound(themes)
				}
			}
			fmt.Fprintf(r.stderr, "%s %s: %s%s\n", r.warn.Sprint("WARN"), o.Source, w, hint)
		}
		if res.Status == mdexport.StatusWarnings {
			if r.verbose {
				fmt.Fprintf(r.stderr, "%s %s: converter said:\n%s\n", r.warn.Sprint("WARN"), o.Source, indent(res.Diagnostics))
			} else if !warnedConverter {
				fmt.Fprintf(r.stderr, "%s %s: converter reported problems%s\n", r.warn.Sprint("WARN"), o.Source, hints.ForConverterWarnings())
				warnedConverter = true
			}
		}

		if r.showCommand && res.Command() != "" {
			fmt.Fprintf(r.stderr, "$ %s\n", res.Command())
		}

		if r.quiet || res.Path == "" {
			continue
		}
		if r.verbose {
			fmt.Fprintf(status, "%s %s -> %s (%v)\n", r.ok.Sprint("Created"), o.Source, res.Path, o.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(status, "%s %s\n", r.ok.Sprint("Created"), res.Path)
		}
	}

	if !r.quiet && len(outcomes) > 1 {
		s := countResults(outcomes)
		fmt.Fprintf(status, "\n%d succeeded (%d with warnings), %d failed\n", s.Succeeded, s.Warned, s.Failed)
	}
}

// errorHint returns the actionable hint for err, if any.
func errorHint(err error, binary string) string {
	switch {
	case errors.Is(err, mdexport.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, mdexport.ErrConverterNotFound):
		return hints.ForConverterNotFound(binary)
	case errors.Is(err, mdexport.ErrUnknownFormat):
		return hints.ForUnknownFormat(mdexport.FormatIDs())
	case errors.Is(err, mdexport.ErrWrite):
		return hints.ForOutputDirectory()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(configSearchPaths(err))
	}
	return ""
}

// configSearchPaths recovers the tried paths from a config lookup error.
func configSearchPaths(err error) []string {
	_, tried, ok := strings.Cut(err.Error(), "tried ")
	if !ok {
		return nil
	}
	return strings.Split(tried, ", ")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
