// Package command provides the turbine CLI.
//
// Commands are defined with urfave/cli/v2:
//
//   - root.go: application, global flags, config loading
//   - run.go: run the task pipeline under the shutdown coordinator
//   - history.go: list stored runs and per-task durations
//   - config.go: show and validate the effective configuration
//   - version.go: build information
//
// Each action loads configuration, builds what it needs, and formats
// results through internal/cli/output.
package command
