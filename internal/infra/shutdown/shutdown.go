// Package shutdown provides graceful shutdown handling.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/yndnr/turbine-go/internal/telemetry/logger"
)

// DefaultHookTimeout bounds the time shutdown hooks may take.
const DefaultHookTimeout = 30 * time.Second

// Reason tells subscribers why they were notified.
type Reason int

const (
	// ReasonNone means subscribers have not been notified yet.
	ReasonNone Reason = iota
	// ReasonSignal means a termination signal was received.
	ReasonSignal
	// ReasonClosed means the coordinator was closed before any signal.
	ReasonClosed
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonSignal:
		return "signal"
	case ReasonClosed:
		return "closed"
	default:
		return "none"
	}
}

// Coordinator reconciles termination signals with the natural end of a run.
type Coordinator struct {
	listener    Listener
	log         logger.Logger
	notice      io.Writer
	hookTimeout time.Duration

	mu     sync.Mutex
	hooks  []func(context.Context) error
	reason Reason
	sig    os.Signal

	done      chan struct{} // closed on signal
	notified  chan struct{} // closed when subscribers are notified
	closing   chan struct{}
	watchDone chan struct{}

	closeOnce  sync.Once
	notifyOnce sync.Once
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithNotice sets where the human-readable signal notice is written.
// Defaults to os.Stdout.
func WithNotice(w io.Writer) Option {
	return func(c *Coordinator) {
		if w != nil {
			c.notice = w
		}
	}
}

// WithHookTimeout bounds the total time given to shutdown hooks.
func WithHookTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.hookTimeout = d
		}
	}
}

// New installs a signal listener and starts watching it.
//
// If the listener cannot be installed, New returns a *SetupError.
func New(install Installer, opts ...Option) (*Coordinator, error) {
	if install == nil {
		return nil, &SetupError{Err: errors.New("no installer")}
	}
	l, err := install()
	if err != nil {
		return nil, &SetupError{Err: err}
	}
	if l == nil {
		return nil, &SetupError{Err: errors.New("installer returned no listener")}
	}

	c := &Coordinator{
		listener:    l,
		log:         logger.Nop(),
		notice:      os.Stdout,
		hookTimeout: DefaultHookTimeout,
		done:        make(chan struct{}),
		notified:    make(chan struct{}),
		closing:     make(chan struct{}),
		watchDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.watch()
	return c, nil
}

// watch waits for the first signal or for Close, whichever comes first.
func (c *Coordinator) watch() {
	defer close(c.watchDone)

	var sig os.Signal
	select {
	case s, ok := <-c.listener.Signals():
		if !ok {
			return
		}
		sig = s
	case <-c.closing:
		return
	}

	c.listener.Stop()

	name := SignalName(sig)
	fmt.Fprintf(c.notice, "Received %s\n", name)
	c.log.Info("received termination signal", "signal", name)

	c.mu.Lock()
	c.sig = sig
	c.mu.Unlock()
	close(c.done)

	ctx, cancel := context.WithTimeout(context.Background(), c.hookTimeout)
	defer cancel()
	if err := c.notify(ctx, ReasonSignal); err != nil {
		c.log.Warn("shutdown hooks failed", "error", err)
	}
}

// Done returns a channel that is closed when a termination signal arrives.
// It is never closed by Close.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Signaled reports whether a termination signal has been received.
func (c *Coordinator) Signaled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Signal returns the received signal, or nil.
func (c *Coordinator) Signal() os.Signal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sig
}

// Reason returns why subscribers were notified, or ReasonNone.
func (c *Coordinator) Reason() Reason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

// Subscribe returns a channel closed when subscribers are notified, either
// on signal or on Close. All callers share the same latch.
func (c *Coordinator) Subscribe() <-chan struct{} {
	return c.notified
}

// OnShutdown registers a shutdown hook.
// Hooks are called once, in reverse order of registration. Hooks
// registered after notification are not called.
func (c *Coordinator) OnShutdown(hook func(context.Context) error) {
	if hook == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

// Close releases the signal listener and notifies subscribers if no signal
// has arrived yet. After a signal it is a no-op. It is safe to call Close
// any number of times; only the call that runs the hooks reports their
// errors.
func (c *Coordinator) Close(ctx context.Context) error {
	c.closeOnce.Do(func() { close(c.closing) })

	select {
	case <-c.watchDone:
	case <-ctx.Done():
		return ctx.Err()
	}

	if c.Signaled() {
		return nil
	}

	c.listener.Stop()

	hctx, cancel := context.WithTimeout(ctx, c.hookTimeout)
	defer cancel()
	return c.notify(hctx, ReasonClosed)
}

// notify runs at most once per coordinator.
func (c *Coordinator) notify(ctx context.Context, reason Reason) error {
	var err error
	c.notifyOnce.Do(func() {
		c.mu.Lock()
		c.reason = reason
		hooks := make([]func(context.Context) error, len(c.hooks))
		copy(hooks, c.hooks)
		c.mu.Unlock()

		close(c.notified)
		c.log.Debug("notifying shutdown subscribers", "reason", reason.String(), "hooks", len(hooks))

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if herr := hooks[i](ctx); herr != nil {
				errs = append(errs, herr)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
