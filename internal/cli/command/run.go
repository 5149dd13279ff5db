package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/turbine-go/internal/config"
	"github.com/yndnr/turbine-go/internal/pipeline"
	"github.com/yndnr/turbine-go/internal/run"
	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
	"github.com/yndnr/turbine-go/internal/telemetry/metric"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run tasks (all, or the named ones and their dependencies)",
		ArgsUsage: "[TASK...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"j"},
				Usage:   "Maximum number of tasks running at once",
			},
			&cli.BoolFlag{
				Name:  "continue",
				Usage: "Keep starting independent tasks after a failure",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	overrides := make(map[string]any)
	if c.IsSet("concurrency") {
		overrides["run.concurrency"] = c.Int("concurrency")
	}
	if c.IsSet("continue") {
		overrides["run.continue_on_error"] = c.Bool("continue")
	}

	cfg, err := loadConfig(c, overrides)
	if err != nil {
		return err
	}
	if len(cfg.Tasks) == 0 {
		return errors.New("no tasks configured")
	}

	log, err := newLogger(c, cfg)
	if err != nil {
		return err
	}

	kv, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore(kv, log)

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewStorageCollector(kv))

	p, err := pipeline.New(pipelineTasks(cfg.Tasks),
		pipeline.WithConcurrency(cfg.Run.Concurrency),
		pipeline.WithShell(cfg.Run.Shell...),
		pipeline.WithContinueOnError(cfg.Run.ContinueOnError),
		pipeline.WithKillDelay(cfg.Run.KillDelay),
		pipeline.WithHistory(storage.NewHistory(kv, logger.Slog(log))),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(log),
		pipeline.WithOutput(c.App.Writer, c.App.ErrWriter),
	)
	if err != nil {
		return err
	}
	if p, err = p.Select(c.Args().Slice()...); err != nil {
		return err
	}

	// The race returns on a signal without waiting for the tasks. The
	// shutdown hook gives interrupted commands until the hook timeout to
	// exit and the run record to be written before the store closes.
	finished := make(chan struct{})
	tasks := run.PipelineFunc(func(ctx context.Context, h run.Handler) (int, error) {
		defer close(finished)
		return p.Execute(ctx, h)
	})
	waitTasks := func(ctx context.Context) error {
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			return fmt.Errorf("tasks still running: %w", ctx.Err())
		}
	}

	orch := run.New(
		run.WithLogger(log),
		run.WithMetrics(metrics),
		run.WithNotice(c.App.ErrWriter),
		run.WithHookTimeout(cfg.Run.HookTimeout),
		run.WithShutdownHook(waitTasks),
	)
	code, runErr := orch.Run(c.Context, tasks)

	if path := cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			log.Warn("cannot write metrics textfile", "path", path, "error", err)
		}
	}

	if code == run.ExitSuccess && runErr == nil {
		return nil
	}
	msg := ""
	if runErr != nil && !errors.Is(runErr, pipeline.ErrInterrupted) {
		msg = runErr.Error()
	}
	return cli.Exit(msg, code)
}

func pipelineTasks(tasks []config.TaskConfig) []pipeline.Task {
	out := make([]pipeline.Task, len(tasks))
	for i, t := range tasks {
		out[i] = pipeline.Task{
			Name:      t.Name,
			Command:   t.Command,
			DependsOn: t.DependsOn,
			Dir:       t.Dir,
			Env:       t.Env,
		}
	}
	return out
}

// openStore opens the KV engine configured in cfg.Storage.
func openStore(cfg *config.Config, log logger.Logger) (storage.KVEngine, error) {
	kvCfg := storage.DefaultKVConfig(cfg.Storage.DataDir)
	kvCfg.Engine = cfg.Storage.Engine
	kvCfg.Badger.GCInterval = cfg.Storage.GCInterval

	kv, err := storage.Open(kvCfg, logger.Slog(log))
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return kv, nil
}

func closeStore(kv storage.KVEngine, log logger.Logger) {
	if err := kv.Close(); err != nil && !errors.Is(err, storage.ErrClosed) {
		log.Warn("cannot close history store", "error", err)
	}
}
