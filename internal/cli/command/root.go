package command

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/turbine-go/internal/cli/output"
	"github.com/yndnr/turbine-go/internal/config"
	"github.com/yndnr/turbine-go/internal/infra/buildinfo"
	"github.com/yndnr/turbine-go/internal/infra/confloader"
	"github.com/yndnr/turbine-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "turbine",
		Usage:     "Run a task pipeline and keep its duration history",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Commands: []*cli.Command{
			RunCommand(),
			HistoryCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: func(c *cli.Context) error {
			if _, err := output.ParseFormat(c.String("output")); err != nil {
				return err
			}
			return nil
		},
	}
}

// Execute runs the application and returns the process exit code.
func Execute(args []string) int {
	return execute(App(), args)
}

func execute(app *cli.App, args []string) int {
	// Exit codes are returned to the caller instead of calling os.Exit.
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(args)
	if err == nil {
		return 0
	}

	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintf(app.ErrWriter, "error: %s\n", msg)
		}
		return exit.ExitCode()
	}

	fmt.Fprintf(app.ErrWriter, "error: %v\n", err)
	return 1
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the configuration file",
			EnvVars: []string{"TURBINE_CONFIG"},
			Value:   config.DefaultConfigFile,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Directory of the duration history store",
		},
	}
}

// GlobalFlags holds the parsed global flags.
type GlobalFlags struct {
	Config    string
	LogLevel  string
	LogFormat string
	Output    string
	DataDir   string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Config:    c.String("config"),
		LogLevel:  c.String("log-level"),
		LogFormat: c.String("log-format"),
		Output:    c.String("output"),
		DataDir:   c.String("data-dir"),
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file, then TURBINE_* environment variables, then command-line flags.
//
// A missing config file is an error only when --config was given.
func loadConfig(c *cli.Context, overrides map[string]any) (*config.Config, error) {
	flags := ParseGlobalFlags(c)

	path := flags.Config
	if !c.IsSet("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	values := make(map[string]any, len(overrides)+3)
	for k, v := range overrides {
		values[k] = v
	}
	if flags.LogLevel != "" {
		values["log.level"] = flags.LogLevel
	}
	if flags.LogFormat != "" {
		values["log.format"] = flags.LogFormat
	}
	if flags.DataDir != "" {
		values["storage.data_dir"] = flags.DataDir
	}

	cfg := config.Default()
	// Slices decode element-wise over existing values, so the default
	// shell is applied after loading.
	cfg.Run.Shell = nil

	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(values),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if len(cfg.Run.Shell) == 0 {
		cfg.Run.Shell = config.DefaultShell()
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger creates the process logger from cfg and installs it as the
// default. Logs go to the application's error writer.
func newLogger(c *cli.Context, cfg *config.Config) (logger.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(l)
	return l, nil
}

// printResult writes data to stdout in the --output format.
func printResult(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}
