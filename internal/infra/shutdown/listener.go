package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
)

// Listener is an installed signal listener.
type Listener interface {
	// Signals delivers received signals.
	Signals() <-chan os.Signal
	// Stop releases the listener. It must be safe to call more than once.
	Stop()
}

// Installer installs a Listener.
type Installer func() (Listener, error)

// installed guards exclusive ownership of the process signal listener.
var installed atomic.Bool

// notifyListener is a Listener backed by signal.Notify.
type notifyListener struct {
	ch   chan os.Signal
	once sync.Once
}

// Notify returns an Installer that listens for sigs via signal.Notify.
//
// Only one such listener may be installed at a time; installing a second
// one before the first is stopped fails with ErrListenerInUse.
func Notify(sigs ...os.Signal) Installer {
	return func() (Listener, error) {
		if len(sigs) == 0 {
			return nil, ErrNoSignals
		}
		if !installed.CompareAndSwap(false, true) {
			return nil, ErrListenerInUse
		}
		l := &notifyListener{ch: make(chan os.Signal, 1)}
		signal.Notify(l.ch, sigs...)
		return l, nil
	}
}

func (l *notifyListener) Signals() <-chan os.Signal {
	return l.ch
}

func (l *notifyListener) Stop() {
	l.once.Do(func() {
		signal.Stop(l.ch)
		installed.Store(false)
	})
}
