package main

import (
	"io"
	"os"
	"os/exec"

	"github.com/go-rod/rod/lib/launcher"

	mdexport "github.com/alnah/go-mdexport"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	LookPath    func(string) (string, error)
	LookBrowser func() (string, bool)
	NewPool     func(size int, opts ...mdexport.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Getenv:      os.Getenv,
		Environ:     os.Environ,
		LookPath:    exec.LookPath,
		LookBrowser: launcher.LookPath,
		NewPool:     newExporterPool,
	}
}
