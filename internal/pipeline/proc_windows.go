//go:build windows

package pipeline

import "os/exec"

// configureProcess kills on cancel; console interrupts cannot be sent to a
// single child process.
func configureProcess(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
