// Package logger provides structured logging for turbine.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler configuration, global default
//   - context.go: context propagation of the logger and run/task IDs
//   - redact.go: masking of secrets that reach log attributes
//
// Task environments routinely carry credentials (npm, GitHub, GitLab
// tokens), so every handler built by New redacts them before writing.
//
// @design DS-0402
package logger
