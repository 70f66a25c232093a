package main

// Notes:
// - exportBatch: we test ordering, acquisition failures and cancellation.
// - reporter: we test what lands on stdout and stderr; colors are off because
//   test output is not a terminal and the mode is forced to "never".

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	mdexport "github.com/alnah/go-mdexport"
	"github.com/alnah/go-mdexport/internal/config"
)

// ---------------------------------------------------------------------------
// TestExportBatch
// ---------------------------------------------------------------------------

func TestExportBatch_KeepsOrder(t *testing.T) {
	t.Parallel()

	exp := &fakeExporter{errs: map[string]error{"b.md": errors.New("boom")}}
	pool := &fakePool{exp: exp, size: 3}
	reqs := []mdexport.Request{
		{Source: "/n/a.md", Format: "html"},
		{Source: "/n/b.md", Format: "html"},
		{Source: "/n/c.md", Format: "html"},
	}

	outcomes := exportBatch(context.Background(), pool, reqs)

	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes", len(outcomes))
	}
	for i, o := range outcomes {
		if o.Source != reqs[i].Source {
			t.Errorf("outcome %d source = %q, want %q", i, o.Source, reqs[i].Source)
		}
	}
	if outcomes[1].Err == nil || outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Errorf("only b should fail: %+v", outcomes)
	}
}

func TestExportBatch_AcquireError(t *testing.T) {
	t.Parallel()

	pool := &fakePool{exp: &fakeExporter{}, acquireErr: mdexport.ErrInvalidAssetPath}
	outcomes := exportBatch(context.Background(), pool, []mdexport.Request{{Source: "a.md"}, {Source: "b.md"}})

	for _, o := range outcomes {
		if !errors.Is(o.Err, mdexport.ErrInvalidAssetPath) {
			t.Errorf("%s: error = %v", o.Source, o.Err)
		}
	}
}

func TestExportBatch_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exp := &fakeExporter{}

	outcomes := exportBatch(ctx, &fakePool{exp: exp}, []mdexport.Request{{Source: "a.md"}})

	if !errors.Is(outcomes[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", outcomes[0].Err)
	}
	if len(exp.requests) != 0 {
		t.Error("no export should start after cancellation")
	}
}

// ---------------------------------------------------------------------------
// TestCountResults / TestFirstError
// ---------------------------------------------------------------------------

func TestCountResults(t *testing.T) {
	t.Parallel()

	outcomes := []exportOutcome{
		{Result: &mdexport.ExportResult{Status: mdexport.StatusSuccess}},
		{Result: &mdexport.ExportResult{Status: mdexport.StatusWarnings}},
		{Result: &mdexport.ExportResult{Status: mdexport.StatusSuccess, Warnings: []string{"embed failed"}}},
		{Err: errors.New("x")},
	}

	got := countResults(outcomes)
	want := resultSummary{Succeeded: 3, Warned: 2, Failed: 1}
	if got != want {
		t.Errorf("countResults() = %+v, want %+v", got, want)
	}
}

func TestFirstError(t *testing.T) {
	t.Parallel()

	if err := firstError([]exportOutcome{{Result: &mdexport.ExportResult{}}}); err != nil {
		t.Errorf("firstError() = %v, want nil", err)
	}

	err := firstError([]exportOutcome{
		{Result: &mdexport.ExportResult{}},
		{Err: mdexport.ErrEmptyOutput},
	})
	if !errors.Is(err, errReported) || !errors.Is(err, mdexport.ErrEmptyOutput) {
		t.Errorf("error = %v, want reported and cause", err)
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("error = %q, want count", err)
	}
}

// ---------------------------------------------------------------------------
// TestReporter - Output routing
// ---------------------------------------------------------------------------

func newTestReporter(common commonFlags, showCommand bool) (*reporter, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	common.color = "never"
	env := &Environment{Stdout: &stdout, Stderr: &stderr}
	return newReporter(env, common, showCommand, "pandoc"), &stdout, &stderr
}

func TestReporter_Created(t *testing.T) {
	t.Parallel()

	r, stdout, stderr := newTestReporter(commonFlags{}, false)
	r.print([]exportOutcome{{Source: "a.md", Result: &mdexport.ExportResult{Path: "/out/a.docx", Status: mdexport.StatusSuccess}}})

	if stdout.String() != "Created /out/a.docx\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestReporter_Quiet(t *testing.T) {
	t.Parallel()

	r, stdout, _ := newTestReporter(commonFlags{quiet: true}, false)
	r.print([]exportOutcome{
		{Source: "a.md", Result: &mdexport.ExportResult{Path: "/out/a.docx"}},
		{Source: "b.md", Result: &mdexport.ExportResult{Path: "/out/b.docx"}},
	})

	if stdout.Len() != 0 {
		t.Errorf("quiet stdout = %q", stdout)
	}
}

func TestReporter_Warnings(t *testing.T) {
	t.Parallel()

	res := &mdexport.ExportResult{
		Path:        "/out/a.docx",
		Args:        []string{"pandoc", "--from", "html", "--to", "docx"},
		Diagnostics: "[WARNING] Could not fetch resource",
		Warnings:    []string{"embed failed: Missing"},
		Status:      mdexport.StatusWarnings,
	}

	t.Run("default", func(t *testing.T) {
		t.Parallel()

		r, _, stderr := newTestReporter(commonFlags{}, true)
		r.print([]exportOutcome{{Source: "a.md", Result: res}, {Source: "b.md", Result: res}})

		out := stderr.String()
		if strings.Count(out, "WARN a.md: embed failed: Missing") != 1 {
			t.Errorf("pipeline warning missing: %q", out)
		}
		if strings.Count(out, "converter reported problems") != 1 {
			t.Errorf("converter hint should print once: %q", out)
		}
		if strings.Contains(out, "Could not fetch") {
			t.Errorf("diagnostics only with --verbose: %q", out)
		}
		if !strings.Contains(out, "$ pandoc --from html --to docx") {
			t.Errorf("command missing: %q", out)
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		r, _, stderr := newTestReporter(commonFlags{verbose: true}, false)
		r.print([]exportOutcome{{Source: "a.md", Result: res}})

		if !strings.Contains(stderr.String(), "  [WARNING] Could not fetch resource") {
			t.Errorf("stderr = %q, want indented diagnostics", stderr)
		}
	})
}

func TestReporter_InMemory(t *testing.T) {
	t.Parallel()

	r, stdout, stderr := newTestReporter(commonFlags{}, false)
	r.print([]exportOutcome{{Source: "a.md", Result: &mdexport.ExportResult{
		Content:  []byte("# A\n"),
		Warnings: []string{"custom CSS not found"},
	}}})

	if stdout.String() != "# A\n" {
		t.Errorf("stdout = %q, want document only", stdout)
	}
	if !strings.Contains(stderr.String(), "custom CSS not found") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestReporter_Failure(t *testing.T) {
	t.Parallel()

	r, stdout, stderr := newTestReporter(commonFlags{}, false)
	r.print([]exportOutcome{
		{Source: "a.md", Err: fmt.Errorf("exporting: %w", mdexport.ErrWrite)},
		{Source: "b.md", Result: &mdexport.ExportResult{Path: "/out/b.pdf"}},
	})

	if !strings.Contains(stderr.String(), "FAILED a.md: exporting: ") || !strings.Contains(stderr.String(), "hint:") {
		t.Errorf("stderr = %q, want failure and hint", stderr)
	}
	if !strings.Contains(stdout.String(), "1 succeeded (0 with warnings), 1 failed") {
		t.Errorf("stdout = %q", stdout)
	}
}

// ---------------------------------------------------------------------------
// TestErrorHint
// ---------------------------------------------------------------------------

func TestErrorHint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "converter", err: mdexport.ErrConverterNotFound, want: "install /opt/pandoc"},
		{name: "format", err: mdexport.ErrUnknownFormat, want: "mdexport formats"},
		{name: "write", err: mdexport.ErrWrite, want: "writable"},
		{
			name: "config",
			err:  fmt.Errorf("%w: tried work.yaml, /home/u/.config/go-mdexport/work.yaml", config.ErrConfigNotFound),
			want: "or create /home/u/.config/go-mdexport/work.yaml",
		},
		{name: "none", err: errors.New("boom"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := errorHint(tt.err, "/opt/pandoc")
			if tt.want == "" {
				if got != "" {
					t.Errorf("errorHint() = %q, want empty", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("errorHint() = %q, want to contain %q", got, tt.want)
			}
		})
	}
}
