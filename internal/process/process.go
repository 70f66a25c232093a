// Package process manages the lifetime of external processes: the converter
// and the headless browser.
package process

import "os/exec"

// KillOnCancel makes a context cancellation of cmd kill its whole process
// group instead of the direct child only. It must be called before Start.
func KillOnCancel(cmd *exec.Cmd) {
	Detach(cmd)
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}
}
