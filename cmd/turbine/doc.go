// Package main provides the entry point for turbine.
//
// turbine runs the tasks declared in turbine.yaml as a dependency-ordered
// pipeline, records how long each task took, and stops promptly on
// SIGINT or SIGTERM:
//
//   - Run tasks (all, or the named ones and their dependencies)
//   - List recorded runs and per-task durations
//   - Show and validate the effective configuration
//
// Usage:
//
//	turbine run [task...] [--concurrency N] [--continue]
//	turbine history --limit 10
//	turbine history show 01J9Z3NDEKTSV4RRFFQ69G5FAV
//	turbine -o yaml config show
//
// An interrupted run exits with status 1; otherwise the exit status is
// the highest exit code among failed tasks.
package main
