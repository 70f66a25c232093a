package main

// Notes:
// - Test infrastructure shared by the CLI tests: an in-memory environment and
//   a fake exporter pool. Real exports are covered by integration tests.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	mdexport "github.com/alnah/go-mdexport"
)

// ---------------------------------------------------------------------------
// Mock Implementations - Exporter and pool
// ---------------------------------------------------------------------------

// fakeExporter records requests and answers from a table keyed by base name.
type fakeExporter struct {
	mu       sync.Mutex
	requests []mdexport.Request
	errs     map[string]error
	results  map[string]*mdexport.ExportResult
}

func (f *fakeExporter) Export(_ context.Context, req mdexport.Request) (*mdexport.ExportResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	name := filepath.Base(req.Source)
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	if res := f.results[name]; res != nil {
		return res, nil
	}
	if req.Output == mdexport.Stdout {
		return &mdexport.ExportResult{Content: []byte("CONTENT:" + name), Status: mdexport.StatusSuccess}, nil
	}
	out := req.Output
	if out == "" {
		out = strings.TrimSuffix(req.Source, filepath.Ext(req.Source)) + "." + req.Format
	}
	return &mdexport.ExportResult{Path: out, Status: mdexport.StatusSuccess}, nil
}

func (f *fakeExporter) sortedRequests() []mdexport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	reqs := append([]mdexport.Request(nil), f.requests...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Source < reqs[j].Source })
	return reqs
}

// fakePool hands out a single shared fakeExporter.
type fakePool struct {
	exp        *fakeExporter
	size       int
	acquireErr error
	opts       int

	mu     sync.Mutex
	closed bool
}

func (p *fakePool) Acquire() (Exporter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.exp, nil
}

func (p *fakePool) Release(Exporter) {}

func (p *fakePool) Size() int {
	if p.size < 1 {
		return 1
	}
	return p.size
}

func (p *fakePool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// ---------------------------------------------------------------------------
// Test Environment
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	pool   *fakePool
	vars   map[string]string
}

// newTestEnv returns an environment with captured output, the given
// variables, no converter or browser on PATH, and a fake pool.
func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()

	if vars == nil {
		vars = map[string]string{}
	}
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		pool:   &fakePool{exp: &fakeExporter{}},
		vars:   vars,
	}
	te.Environment = &Environment{
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		LookPath:    func(string) (string, error) { return "", errors.New("not found") },
		LookBrowser: func() (string, bool) { return "", false },
		NewPool: func(size int, opts ...mdexport.Option) Pool {
			te.pool.size = size
			te.pool.opts = len(opts)
			return te.pool
		},
	}
	return te
}

// writeNotes creates files under dir from a name -> content map.
func writeNotes(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
