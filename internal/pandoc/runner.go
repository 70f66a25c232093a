package pandoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/alnah/go-mdexport/internal/process"
)

// waitDelay bounds how long Wait blocks on pipes after the process exits.
const waitDelay = 5 * time.Second

// Command describes one converter process.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Env   []string // nil inherits the environment
	Stdin io.Reader
}

// Runner executes commands. It abstracts exec so the converter can be tested
// without a real binary.
type Runner interface {
	Run(ctx context.Context, cmd Command) (stdout []byte, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

// Run starts cmd and returns once both output streams are drained and the
// process has exited. A cancelled context kills the whole process group.
func (ExecRunner) Run(ctx context.Context, c Command) ([]byte, string, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = c.Stdin
	cmd.WaitDelay = waitDelay
	process.KillOnCancel(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout.Bytes(), stderr.String(), ctxErr
		}
		return stdout.Bytes(), stderr.String(), fmt.Errorf("%s: %w", c.Name, err)
	}
	return stdout.Bytes(), stderr.String(), nil
}

// Compile-time interface check.
var _ Runner = ExecRunner{}

// String renders cmd the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
