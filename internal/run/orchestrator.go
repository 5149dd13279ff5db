package run

import (
	"context"
	"io"
	"time"

	"github.com/yndnr/turbine-go/internal/infra/shutdown"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
	"github.com/yndnr/turbine-go/internal/telemetry/metric"
)

// Orchestrator owns one coordinator per Run.
type Orchestrator struct {
	install   shutdown.Installer
	log       logger.Logger
	metrics   *metric.Registry
	coordOpts []shutdown.Option
	hooks     []func(context.Context) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInstaller replaces the OS signal installer.
func WithInstaller(install shutdown.Installer) Option {
	return func(o *Orchestrator) { o.install = install }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetrics records run outcomes in r.
func WithMetrics(r *metric.Registry) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// WithNotice sets where the "Received <signal>" notice is written.
func WithNotice(w io.Writer) Option {
	return func(o *Orchestrator) { o.coordOpts = append(o.coordOpts, shutdown.WithNotice(w)) }
}

// WithHookTimeout bounds shutdown hooks.
func WithHookTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.coordOpts = append(o.coordOpts, shutdown.WithHookTimeout(d)) }
}

// WithShutdownHook registers hook on every coordinator the orchestrator
// creates.
func WithShutdownHook(hook func(context.Context) error) Option {
	return func(o *Orchestrator) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}

// New creates an Orchestrator listening for shutdown.DefaultSignals.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		install: shutdown.Notify(shutdown.DefaultSignals...),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run installs a coordinator and races p against it.
//
// If the coordinator cannot be set up, Run returns ExitFailure and the
// *shutdown.SetupError without starting p. Otherwise the coordinator is
// closed on every return path.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline) (int, error) {
	start := time.Now()

	opts := append([]shutdown.Option{shutdown.WithLogger(o.log)}, o.coordOpts...)
	coord, err := shutdown.New(o.install, opts...)
	if err != nil {
		o.log.Error("cannot install signal listener", "error", err)
		o.metrics.ObserveRun(metric.OutcomeSetupError, time.Since(start))
		return ExitFailure, err
	}
	for _, hook := range o.hooks {
		coord.OnShutdown(hook)
	}
	defer func() {
		if err := coord.Close(context.WithoutCancel(ctx)); err != nil {
			o.log.Warn("coordinator close failed", "error", err)
		}
	}()

	r := race(logger.WithLogger(ctx, o.log), coord, p)
	code, err := r.code, r.err

	// The outcome follows what race decided, never the coordinator state
	// alone.
	outcome := metric.OutcomeSuccess
	switch {
	case r.interrupted && coord.Signaled():
		outcome = metric.OutcomeInterrupted
		o.log.Info("run interrupted", "signal", shutdown.SignalName(coord.Signal()), "exit_code", code)
	case r.interrupted:
		outcome = metric.OutcomeInterrupted
		o.log.Info("run canceled", "error", err, "exit_code", code)
	case code != ExitSuccess || err != nil:
		outcome = metric.OutcomeFailure
		o.log.Info("run failed", "exit_code", code, "error", err)
	default:
		o.log.Debug("run completed", "exit_code", code)
	}
	o.metrics.ObserveRun(outcome, time.Since(start))

	return code, err
}
