//go:build !windows

package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/turbine-go/internal/run"
	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/internal/telemetry/metric"
)

type handler struct {
	ch   chan struct{}
	once sync.Once
}

func newHandler() *handler { return &handler{ch: make(chan struct{})} }

func (h *handler) Subscribe() <-chan struct{} { return h.ch }
func (h *handler) fire()                      { h.once.Do(func() { close(h.ch) }) }

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	history *storage.History
	metrics *metric.Registry
	out     *lockedBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	kv := storage.NewMemoryEngine()
	t.Cleanup(func() { _ = kv.Close() })
	return &fixture{
		history: storage.NewHistory(kv, slog.New(slog.NewTextHandler(io.Discard, nil))),
		metrics: metric.NewRegistry(),
		out:     &lockedBuffer{},
	}
}

func (f *fixture) pipeline(t *testing.T, tasks []Task, opts ...Option) *Pipeline {
	t.Helper()
	base := []Option{
		WithHistory(f.history),
		WithMetrics(f.metrics),
		WithOutput(f.out, f.out),
		WithKillDelay(time.Second),
	}
	p, err := New(tasks, append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func (f *fixture) lastRun(t *testing.T) *storage.RunRecord {
	t.Helper()
	runs, err := f.history.Runs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	return runs[0]
}

func statuses(r *storage.RunRecord) map[string]storage.TaskStatus {
	out := make(map[string]storage.TaskStatus, len(r.Tasks))
	for _, t := range r.Tasks {
		out[t.Name] = t.Status
	}
	return out
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{
		{Name: "a", Command: "echo hello"},
		{Name: "b", Command: "echo world; echo oops >&2", DependsOn: []string{"a"}},
	})

	code, err := p.Execute(context.Background(), newHandler())

	require.NoError(t, err)
	assert.Equal(t, run.ExitSuccess, code)

	out := f.out.String()
	assert.Contains(t, out, "a | hello\n")
	assert.Contains(t, out, "b | world\n")
	assert.Contains(t, out, "b | oops\n")
	assert.Less(t, strings.Index(out, "a | hello"), strings.Index(out, "b | world"), "b waits for a")

	ctx := context.Background()
	for _, task := range p.Tasks() {
		_, ok, err := f.history.LastTask(ctx, task.Key())
		require.NoError(t, err)
		assert.True(t, ok, "duration of %s should be recorded", task.Name)
	}

	rec := f.lastRun(t)
	assert.Equal(t, 0, rec.ExitCode)
	assert.False(t, rec.Total.IsZero(), "a measured run is never recorded as zero")
	assert.Equal(t, map[string]storage.TaskStatus{
		"a": storage.StatusSucceeded,
		"b": storage.StatusSucceeded,
	}, statuses(rec))

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.TasksTotal.WithLabelValues("succeeded")))
}

func TestExecute_FailureStopsLaunching(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{
		{Name: "a", Command: "exit 3"},
		{Name: "b", Command: "echo b", DependsOn: []string{"a"}},
		{Name: "c", Command: "echo c"},
	}, WithConcurrency(1))

	code, err := p.Execute(context.Background(), newHandler())

	assert.Equal(t, 3, code)
	var ferr *TaskFailedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, []string{"a"}, ferr.Tasks)
	assert.NotContains(t, f.out.String(), "c | c")

	assert.Equal(t, map[string]storage.TaskStatus{
		"a": storage.StatusFailed,
		"b": storage.StatusSkipped,
		"c": storage.StatusSkipped,
	}, statuses(f.lastRun(t)))
}

func TestExecute_ContinueOnError(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{
		{Name: "a", Command: "exit 2"},
		{Name: "b", Command: "echo b", DependsOn: []string{"a"}},
		{Name: "c", Command: "exit 5"},
		{Name: "d", Command: "echo d"},
	}, WithConcurrency(1), WithContinueOnError(true))

	code, err := p.Execute(context.Background(), newHandler())

	assert.Equal(t, 5, code, "highest failing exit code wins")
	var ferr *TaskFailedError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, []string{"a", "c"}, ferr.Tasks)
	assert.Contains(t, f.out.String(), "d | d\n")

	rec := f.lastRun(t)
	assert.Equal(t, 5, rec.ExitCode)
	assert.Equal(t, storage.StatusSkipped, statuses(rec)["b"])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TasksTotal.WithLabelValues("skipped")))
}

func TestExecute_Interrupted(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{
		{Name: "slow", Command: "sleep 30"},
		{Name: "after", Command: "echo after", DependsOn: []string{"slow"}},
	})
	h := newHandler()

	go func() {
		time.Sleep(200 * time.Millisecond)
		h.fire()
	}()

	start := time.Now()
	code, err := p.Execute(context.Background(), h)

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, run.ExitInterrupted, code)
	assert.Less(t, time.Since(start), 10*time.Second, "interrupt must stop the running command")
	assert.NotContains(t, f.out.String(), "after")

	rec := f.lastRun(t)
	assert.Equal(t, run.ExitInterrupted, rec.ExitCode)
	assert.Equal(t, map[string]storage.TaskStatus{
		"slow":  storage.StatusInterrupted,
		"after": storage.StatusSkipped,
	}, statuses(rec))

	_, ok, err := f.history.LastTask(context.Background(), p.Tasks()[0].Key())
	require.NoError(t, err)
	assert.False(t, ok, "partial durations are not recorded")
}

func TestExecute_ContextCanceled(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{{Name: "slow", Command: "sleep 30"}})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	code, err := p.Execute(ctx, newHandler())

	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Equal(t, run.ExitInterrupted, code)
}

func TestExecute_EnvAndDir(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	p := f.pipeline(t, []Task{{
		Name:    "env",
		Command: `echo "$GREETING"; pwd`,
		Dir:     dir,
		Env:     []string{"GREETING=hi"},
	}})

	code, err := p.Execute(context.Background(), newHandler())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	out := f.out.String()
	assert.Contains(t, out, "env | hi\n")
	resolved, _ := filepath.EvalSymlinks(dir)
	assert.True(t,
		strings.Contains(out, "env | "+dir+"\n") || strings.Contains(out, "env | "+resolved+"\n"),
		"output %q should contain the working directory", out)
}

func TestExecute_MissingShell(t *testing.T) {
	f := newFixture(t)
	p := f.pipeline(t, []Task{{Name: "a", Command: "true"}}, WithShell("/nonexistent/shell", "-c"))

	code, err := p.Execute(context.Background(), newHandler())

	assert.Equal(t, exitNotRun, code)
	var ferr *TaskFailedError
	assert.ErrorAs(t, err, &ferr)
}

func TestExecute_RunsAccumulate(t *testing.T) {
	f := newFixture(t)
	tasks := []Task{{Name: "a", Command: "true"}}

	for i := 0; i < 2; i++ {
		code, err := f.pipeline(t, tasks).Execute(context.Background(), newHandler())
		require.NoError(t, err)
		require.Equal(t, 0, code)
	}

	runs, err := f.history.Runs(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[1].ID.Compare(runs[0].ID) < 0, "newest run first")

	_, ok, err := f.history.LastTask(context.Background(), tasks[0].Key())
	require.NoError(t, err)
	assert.True(t, ok)
}
