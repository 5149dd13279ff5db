package pipeline

import (
	"io"
	"os"
	"runtime"
	"time"

	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
	"github.com/yndnr/turbine-go/internal/telemetry/metric"
)

// DefaultKillDelay is how long an interrupted command gets before it is
// killed.
const DefaultKillDelay = 5 * time.Second

// Pipeline is a validated, immutable task graph plus execution settings.
type Pipeline struct {
	tasks []Task
	index map[string]int
	opts  options
}

type options struct {
	concurrency     int
	shell           []string
	continueOnError bool
	killDelay       time.Duration
	history         *storage.History
	metrics         *metric.Registry
	log             logger.Logger
	stdout          io.Writer
	stderr          io.Writer
}

// Option configures a Pipeline.
type Option func(*options)

// WithConcurrency limits how many tasks run at once. Values below 1 are
// ignored.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithShell sets the command prefix; the task command is appended as the
// final argument.
func WithShell(shell ...string) Option {
	return func(o *options) {
		if len(shell) > 0 {
			o.shell = append([]string(nil), shell...)
		}
	}
}

// WithContinueOnError keeps launching independent tasks after a failure.
func WithContinueOnError(v bool) Option {
	return func(o *options) { o.continueOnError = v }
}

// WithKillDelay sets the grace period between interrupt and kill.
func WithKillDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.killDelay = d
		}
	}
}

// WithHistory records task and run durations in h.
func WithHistory(h *storage.History) Option {
	return func(o *options) { o.history = h }
}

// WithMetrics records task outcomes in r.
func WithMetrics(r *metric.Registry) Option {
	return func(o *options) { o.metrics = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithOutput sets where task output goes. Each line is prefixed with the
// task name.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(o *options) {
		if stdout != nil {
			o.stdout = stdout
		}
		if stderr != nil {
			o.stderr = stderr
		}
	}
}

func defaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// New validates tasks and builds a Pipeline.
func New(tasks []Task, opts ...Option) (*Pipeline, error) {
	index, err := validate(tasks)
	if err != nil {
		return nil, err
	}

	o := options{
		concurrency: runtime.NumCPU(),
		shell:       defaultShell(),
		killDelay:   DefaultKillDelay,
		log:         logger.Nop(),
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Pipeline{
		tasks: append([]Task(nil), tasks...),
		index: index,
		opts:  o,
	}, nil
}

// Tasks returns the tasks in declared order.
func (p *Pipeline) Tasks() []Task {
	return append([]Task(nil), p.tasks...)
}

// Len returns the number of tasks.
func (p *Pipeline) Len() int {
	return len(p.tasks)
}

// Select returns a pipeline restricted to the named tasks and everything
// they transitively depend on, keeping declared order. With no names it
// returns p.
func (p *Pipeline) Select(names ...string) (*Pipeline, error) {
	if len(names) == 0 {
		return p, nil
	}

	keep := make([]bool, len(p.tasks))
	var visit func(name string)
	visit = func(name string) {
		i := p.index[name]
		if keep[i] {
			return
		}
		keep[i] = true
		for _, dep := range p.tasks[i].DependsOn {
			visit(dep)
		}
	}

	for _, name := range names {
		if _, ok := p.index[name]; !ok {
			return nil, &ValidationError{Task: name, Reason: "no such task"}
		}
		visit(name)
	}

	selected := make([]Task, 0, len(p.tasks))
	for i, t := range p.tasks {
		if keep[i] {
			selected = append(selected, t)
		}
	}

	index, err := validate(selected)
	if err != nil {
		return nil, err
	}
	return &Pipeline{tasks: selected, index: index, opts: p.opts}, nil
}
