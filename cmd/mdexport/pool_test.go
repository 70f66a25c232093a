package main

import (
	"context"
	"strings"
	"testing"

	mdexport "github.com/alnah/go-mdexport"
)

// wrongTypeExporter is an Exporter that is NOT *mdexport.Exporter.
type wrongTypeExporter struct{}

func (wrongTypeExporter) Export(context.Context, mdexport.Request) (*mdexport.ExportResult, error) {
	return &mdexport.ExportResult{}, nil
}

// ---------------------------------------------------------------------------
// TestPoolAdapter - Library pool behind the CLI interface
// ---------------------------------------------------------------------------

func TestPoolAdapter_AcquireRelease(t *testing.T) {
	t.Parallel()

	pool := newExporterPool(2)
	defer pool.Close()

	if pool.Size() != 2 {
		t.Errorf("Size() = %d, want 2", pool.Size())
	}

	exp, err := pool.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if _, ok := exp.(*mdexport.Exporter); !ok {
		t.Errorf("Acquire() returned %T", exp)
	}
	pool.Release(exp)
}

func TestPoolAdapter_AcquireError(t *testing.T) {
	t.Parallel()

	pool := newExporterPool(1, mdexport.WithAssetPath("/nonexistent/assets"))
	defer pool.Close()

	if _, err := pool.Acquire(); err == nil {
		t.Error("Acquire() should fail with an invalid asset path")
	}
}

func TestPoolAdapter_ReleaseWrongType(t *testing.T) {
	t.Parallel()

	pool := newExporterPool(1)
	defer pool.Close()

	defer func() {
		r := recover()
		msg, ok := r.(string)
		if !ok || !strings.Contains(msg, "unexpected type") {
			t.Errorf("recover() = %v, want unexpected type panic", r)
		}
	}()

	pool.Release(wrongTypeExporter{})
}
