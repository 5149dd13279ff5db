package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/turbine-go/internal/cli/output"
	"github.com/yndnr/turbine-go/internal/config"
	"github.com/yndnr/turbine-go/internal/pipeline"
)

// ConfigCommand returns the config command group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the configuration and task graph",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}

	sanitized := config.Sanitize(cfg)

	// There is no flat table layout for the whole config.
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format).Format(c.App.Writer, sanitized)
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(c, nil)
	if err != nil {
		return err
	}
	p, err := pipeline.New(pipelineTasks(cfg.Tasks))
	if err != nil {
		return fmt.Errorf("invalid task graph: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Configuration OK (%d tasks)\n", p.Len())
	return nil
}
