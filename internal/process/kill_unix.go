//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Detach puts cmd in its own process group so KillProcessGroup reaches
// the children it spawns (pdf engines, filters).
func Detach(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	// Best-effort; callers fall back to Process.Kill.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
