package main

import (
	"context"
	"fmt"

	mdexport "github.com/alnah/go-mdexport"
)

// Exporter is what the CLI needs from an exporter.
type Exporter interface {
	Export(ctx context.Context, req mdexport.Request) (*mdexport.ExportResult, error)
}

// Pool abstracts exporter pool operations for testability.
type Pool interface {
	Acquire() (Exporter, error)
	Release(Exporter)
	Size() int
	Close() error
}

var (
	_ Exporter = (*mdexport.Exporter)(nil)
	_ Pool     = (*poolAdapter)(nil)
)

// poolAdapter exposes mdexport.ExporterPool through the Pool interface.
type poolAdapter struct {
	pool *mdexport.ExporterPool
}

func newExporterPool(size int, opts ...mdexport.Option) Pool {
	return &poolAdapter{pool: mdexport.NewExporterPool(size, opts...)}
}

func (a *poolAdapter) Acquire() (Exporter, error) {
	e, err := a.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Release panics on exporters the pool did not hand out: that is a
// programming error.
func (a *poolAdapter) Release(e Exporter) {
	exp, ok := e.(*mdexport.Exporter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", e))
	}
	a.pool.Release(exp)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}
