package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// exitNotRun is reported for commands that could not be started, matching
// the shell's "command not found" status.
const exitNotRun = 127

// runCommand runs t through the configured shell. A non-zero exit is
// reported in the code with a nil error; err is set only when the command
// could not run at all.
func (p *Pipeline) runCommand(ctx context.Context, t Task) (int, error) {
	shell := p.opts.shell
	args := make([]string, 0, len(shell))
	args = append(args, shell[1:]...)
	args = append(args, t.Command)

	cmd := exec.CommandContext(ctx, shell[0], args...)
	cmd.Dir = t.Dir
	cmd.Env = append(os.Environ(), t.Env...)

	stdout := newPrefixWriter(p.opts.stdout, t.Name)
	stderr := newPrefixWriter(p.opts.stderr, t.Name)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	configureProcess(cmd)
	cmd.WaitDelay = p.opts.killDelay

	err := cmd.Run()
	stdout.Flush()
	stderr.Flush()

	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		// The command succeeded but left children holding its output open.
		return 0, nil
	}
	return exitNotRun, fmt.Errorf("run %q: %w", t.Name, err)
}
