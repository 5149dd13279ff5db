package run

import (
	"context"

	"github.com/yndnr/turbine-go/internal/telemetry/logger"
)

// Process exit codes decided here. Pipeline codes pass through unchanged.
const (
	ExitSuccess     = 0
	ExitFailure     = 1
	ExitInterrupted = 1
)

// Handler is the view of the coordinator a pipeline gets: it can learn
// that the run is ending, but cannot end it.
type Handler interface {
	// Subscribe returns a channel closed once when the run is ending,
	// either because of a signal or because the coordinator was closed.
	Subscribe() <-chan struct{}
}

// Pipeline is the task-execution side of the race.
type Pipeline interface {
	Execute(ctx context.Context, h Handler) (int, error)
}

// PipelineFunc adapts a function to Pipeline.
type PipelineFunc func(ctx context.Context, h Handler) (int, error)

// Execute calls f.
func (f PipelineFunc) Execute(ctx context.Context, h Handler) (int, error) {
	return f(ctx, h)
}

// Coordinator is the signal side of the race. *shutdown.Coordinator
// satisfies it.
type Coordinator interface {
	Handler
	Done() <-chan struct{}
	Close(ctx context.Context) error
}

// Race runs p concurrently and returns as soon as either p finishes or c
// signals.
//
// On a signal Race returns (ExitInterrupted, nil) without waiting for p.
// When p finishes first, c is closed before p's code and error are
// returned unchanged. A signal that is already pending when p's result
// arrives still wins, including one the coordinator received but had not
// yet announced on Done when the result came in. Cancellation of ctx
// counts as an interrupt and returns ctx.Err().
func Race(ctx context.Context, c Coordinator, p Pipeline) (int, error) {
	r := race(ctx, c, p)
	return r.code, r.err
}

type result struct {
	code        int
	err         error
	interrupted bool
}

func interrupted(err error) result {
	return result{code: ExitInterrupted, err: err, interrupted: true}
}

func race(ctx context.Context, c Coordinator, p Pipeline) result {
	results := make(chan result, 1)
	go func() {
		code, err := p.Execute(ctx, c)
		results <- result{code: code, err: err}
	}()

	if signaled(c) {
		return interrupted(nil)
	}

	select {
	case <-c.Done():
		return interrupted(nil)
	case <-ctx.Done():
		return interrupted(ctx.Err())
	case r := <-results:
		if signaled(c) {
			return interrupted(nil)
		}
		if err := c.Close(context.WithoutCancel(ctx)); err != nil {
			logger.L(ctx).Warn("shutdown hooks failed", "error", err)
		}
		// Close waits for a signal already taken by the coordinator to be
		// announced, so this check is final.
		if signaled(c) {
			return interrupted(nil)
		}
		return r
	}
}

func signaled(c Coordinator) bool {
	select {
	case <-c.Done():
		return true
	default:
		return false
	}
}
