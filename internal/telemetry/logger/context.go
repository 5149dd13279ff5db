package logger

import "context"

type contextKey string

const (
	loggerKey contextKey = "turbine.logger"
	runIDKey  contextKey = "turbine.run_id"
	taskKey   contextKey = "turbine.task"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(runIDKey).(string); ok {
		return id
	}
	return ""
}

// WithTask adds a task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey, task)
}

// TaskFromContext extracts the task name from context.
func TaskFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(taskKey).(string); ok {
		return name
	}
	return ""
}

// L returns the context logger enriched with the run ID and task name.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	if id := RunIDFromContext(ctx); id != "" {
		l = l.With("run_id", id)
	}
	if task := TaskFromContext(ctx); task != "" {
		l = l.With("task", task)
	}
	return l
}
