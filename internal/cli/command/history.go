package command

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/turbine-go/internal/cli/output"
	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
)

// HistoryCommand returns the history command group.
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to list (0 for all)",
				Value:   20,
			},
		},
		Action: historyList,
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show per-task results of one run",
				ArgsUsage: "RUN_ID",
				Action:    historyShow,
			},
		},
	}
}

func historyList(c *cli.Context) error {
	h, done, err := openHistory(c)
	if err != nil {
		return err
	}
	defer done()

	runs, err := h.Runs(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*storage.RunRecord{}
	}
	return printResult(c, runList(runs))
}

func historyShow(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("run id required")
	}
	id, err := ulid.ParseStrict(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", c.Args().First(), err)
	}

	h, done, err := openHistory(c)
	if err != nil {
		return err
	}
	defer done()

	rec, err := h.Run(c.Context, id)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return err
	}
	return printResult(c, (*runDetail)(rec))
}

func openHistory(c *cli.Context) (*storage.History, func(), error) {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return nil, nil, err
	}
	log, err := newLogger(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	kv, err := openStore(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewHistory(kv, logger.Slog(log)), func() { closeStore(kv, log) }, nil
}

// runList renders run summaries one per row.
type runList []*storage.RunRecord

func (l runList) Table() *output.Table {
	t := &output.Table{}
	t.SetHeaders("RUN ID", "STARTED", "EXIT", "TOTAL", "TASKS", "FAILED")
	for _, r := range l {
		failed := 0
		for _, task := range r.Tasks {
			if task.Status == storage.StatusFailed {
				failed++
			}
		}
		t.AddRow(
			r.ID.String(),
			ulid.Time(r.ID.Time()).Local().Format(time.DateTime),
			strconv.Itoa(r.ExitCode),
			r.Total.String(),
			strconv.Itoa(len(r.Tasks)),
			strconv.Itoa(failed),
		)
	}
	return t
}

// runDetail renders one run's tasks one per row.
type runDetail storage.RunRecord

func (d *runDetail) Table() *output.Table {
	t := &output.Table{}
	t.SetHeaders("TASK", "STATUS", "EXIT", "DURATION", "KEY")
	for _, task := range d.Tasks {
		t.AddRow(
			task.Name,
			task.Status.String(),
			strconv.Itoa(task.ExitCode),
			task.Duration.String(),
			fmt.Sprintf("%016x", task.Key),
		)
	}
	return t
}
