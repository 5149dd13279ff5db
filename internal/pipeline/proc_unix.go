//go:build !windows

package pipeline

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// configureProcess puts the command in its own process group so an
// interrupt reaches everything the shell started.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGINT)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
