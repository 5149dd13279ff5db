package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/turbine-go/internal/run"
	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
	"github.com/yndnr/turbine-go/pkg/pico"
)

// ErrInterrupted is returned by Execute when the run was told to stop.
var ErrInterrupted = errors.New("pipeline: interrupted")

// TaskFailedError lists the tasks that failed in a run.
type TaskFailedError struct {
	Tasks []string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("pipeline: %d task(s) failed: %s", len(e.Tasks), strings.Join(e.Tasks, ", "))
}

type taskState struct {
	done     chan struct{} // closed when the task reaches a final status
	status   storage.TaskStatus
	exitCode int
	elapsed  time.Duration
}

// newRunID uses the package's shared monotonic entropy, so ids made by one
// process always sort in creation order.
func newRunID() ulid.ULID {
	return ulid.Make()
}

// Execute runs every task and reports the run's exit code.
//
// The code is 0 when all tasks succeed, otherwise the highest exit code
// among failed tasks (at least 1) together with a *TaskFailedError. If h
// signals, or ctx is canceled, Execute returns run.ExitInterrupted and
// ErrInterrupted once running commands have exited.
func (p *Pipeline) Execute(ctx context.Context, h run.Handler) (int, error) {
	runID := newRunID()
	ctx = logger.WithRunID(logger.WithLogger(ctx, p.opts.log), runID.String())
	log := logger.L(ctx)
	start := time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var interrupted atomic.Bool
	go func() {
		select {
		case <-h.Subscribe():
			interrupted.Store(true)
			cancel()
		case <-runCtx.Done():
		}
	}()

	log.Info("run started", "tasks", len(p.tasks), "concurrency", p.opts.concurrency)

	states := make([]*taskState, len(p.tasks))
	for i := range states {
		states[i] = &taskState{done: make(chan struct{})}
	}

	var halted atomic.Bool
	g := new(errgroup.Group)
	g.SetLimit(p.opts.concurrency)
	for i, t := range p.tasks {
		st := states[i]
		deps := make([]*taskState, 0, len(t.DependsOn))
		for _, dep := range t.DependsOn {
			deps = append(deps, states[p.index[dep]])
		}
		g.Go(func() error {
			defer close(st.done)
			p.runTask(runCtx, t, st, deps, &halted)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	stopped := interrupted.Load() || ctx.Err() != nil
	code, failed := exitCode(p.tasks, states)
	if stopped {
		code = run.ExitInterrupted
	}
	p.recordRun(ctx, runID, code, elapsed, states)

	switch {
	case stopped:
		log.Warn("run interrupted", "elapsed", elapsed)
		return run.ExitInterrupted, ErrInterrupted
	case len(failed) > 0:
		log.Error("run failed", "failed", strings.Join(failed, ","), "exit_code", code, "elapsed", elapsed)
		return code, &TaskFailedError{Tasks: failed}
	default:
		log.Info("run completed", "elapsed", elapsed)
		return run.ExitSuccess, nil
	}
}

func (p *Pipeline) runTask(ctx context.Context, t Task, st *taskState, deps []*taskState, halted *atomic.Bool) {
	ctx = logger.WithTask(ctx, t.Name)
	log := logger.L(ctx)

	for _, d := range deps {
		select {
		case <-d.done:
		case <-ctx.Done():
		}
	}

	skip := ""
	switch {
	case ctx.Err() != nil:
		skip = "run is stopping"
	case halted.Load():
		skip = "an earlier task failed"
	case !succeeded(deps):
		skip = "a dependency did not succeed"
	}
	if skip != "" {
		st.status = storage.StatusSkipped
		log.Info("task skipped", "reason", skip)
		p.opts.metrics.ObserveTask(t.Name, st.status.String(), 0)
		return
	}

	fingerprint := t.Key()
	attrs := []any{"fingerprint", t.Fingerprint()}
	if prev, ok := p.lastDuration(ctx, fingerprint); ok {
		attrs = append(attrs, "previous", prev.String())
	}
	log.Info("task started", attrs...)

	begin := time.Now()
	code, err := p.runCommand(ctx, t)
	st.elapsed = time.Since(begin)
	st.exitCode = code

	switch {
	case err == nil && code == 0:
		st.status = storage.StatusSucceeded
	case ctx.Err() != nil:
		st.status = storage.StatusInterrupted
	default:
		st.status = storage.StatusFailed
		if !p.opts.continueOnError {
			halted.Store(true)
		}
	}

	d := pico.FromDuration[pico.Millisecond](st.elapsed)
	if st.status != storage.StatusInterrupted && p.opts.history != nil {
		if rerr := p.opts.history.RecordTask(context.WithoutCancel(ctx), fingerprint, d); rerr != nil {
			log.Warn("cannot record task duration", "error", rerr)
		}
	}
	p.opts.metrics.ObserveTask(t.Name, st.status.String(), st.elapsed)

	if err != nil {
		log.Error("task could not run", "error", err)
		return
	}
	log.Info("task finished", "status", st.status.String(), "exit_code", code, "duration", d.String())
}

func (p *Pipeline) lastDuration(ctx context.Context, fingerprint uint64) (pico.Duration[pico.Millisecond], bool) {
	if p.opts.history == nil {
		return pico.Zero[pico.Millisecond](), false
	}
	d, ok, err := p.opts.history.LastTask(ctx, fingerprint)
	if err != nil {
		logger.L(ctx).Debug("cannot load task history", "error", err)
		return d, false
	}
	return d, ok
}

func (p *Pipeline) recordRun(ctx context.Context, id ulid.ULID, code int, elapsed time.Duration, states []*taskState) {
	if p.opts.history == nil {
		return
	}

	rec := &storage.RunRecord{
		ID:       id,
		ExitCode: code,
		Total:    pico.FromDuration[pico.Second](elapsed),
		Tasks:    make([]storage.TaskRecord, 0, len(states)),
	}
	for i, st := range states {
		t := p.tasks[i]
		rec.Tasks = append(rec.Tasks, storage.TaskRecord{
			Name:     t.Name,
			Key:      t.Key(),
			Status:   st.status,
			ExitCode: st.exitCode,
			Duration: pico.FromDuration[pico.Millisecond](st.elapsed),
		})
	}

	if err := p.opts.history.RecordRun(context.WithoutCancel(ctx), rec); err != nil {
		logger.L(ctx).Warn("cannot record run", "error", err)
	}
}

func succeeded(deps []*taskState) bool {
	for _, d := range deps {
		if d.status != storage.StatusSucceeded {
			return false
		}
	}
	return true
}

// exitCode returns the highest exit code among failed tasks (at least 1)
// and their names.
func exitCode(tasks []Task, states []*taskState) (int, []string) {
	code := run.ExitSuccess
	var failed []string
	for i, st := range states {
		if st.status != storage.StatusFailed {
			continue
		}
		failed = append(failed, tasks[i].Name)
		c := st.exitCode
		if c < 1 {
			c = 1
		}
		if c > code {
			code = c
		}
	}
	return code, failed
}
