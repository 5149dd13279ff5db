//go:build windows

package shutdown

import "os"

// DefaultSignals are the termination signals a run listens for.
var DefaultSignals = []os.Signal{os.Interrupt}

// SignalName returns the conventional name of sig.
func SignalName(sig os.Signal) string {
	if sig == os.Interrupt {
		return "Ctrl-C"
	}
	if sig == nil {
		return ""
	}
	return sig.String()
}
