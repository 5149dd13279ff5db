//go:build !windows

package shutdown

import (
	"os"
	"syscall"
)

// DefaultSignals are the termination signals a run listens for.
var DefaultSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// SignalName returns the conventional name of sig.
func SignalName(sig os.Signal) string {
	switch sig {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	case syscall.SIGHUP:
		return "SIGHUP"
	case syscall.SIGQUIT:
		return "SIGQUIT"
	}
	if sig == nil {
		return ""
	}
	return sig.String()
}
