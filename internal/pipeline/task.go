package pipeline

import (
	"fmt"

	"github.com/spaolacci/murmur3"
)

// Task is one shell command in the graph.
type Task struct {
	Name      string
	Command   string
	DependsOn []string
	Dir       string
	Env       []string
}

// Key returns the task fingerprint: a 64-bit MurmurHash3 of the name and
// command. Changing either starts a fresh duration history.
func (t Task) Key() uint64 {
	h := murmur3.New64()
	h.Write([]byte(t.Name))
	h.Write([]byte{0})
	h.Write([]byte(t.Command))
	return h.Sum64()
}

// Fingerprint returns Key as 16 hex digits.
func (t Task) Fingerprint() string {
	return fmt.Sprintf("%016x", t.Key())
}

// ValidationError describes an invalid task graph.
type ValidationError struct {
	Task   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Task == "" {
		return "pipeline: " + e.Reason
	}
	return fmt.Sprintf("pipeline: task %q: %s", e.Task, e.Reason)
}

// validate checks names, commands and dependency order. It returns the
// name to position index.
func validate(tasks []Task) (map[string]int, error) {
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("task %d has no name", i)}
		}
		if _, dup := index[t.Name]; dup {
			return nil, &ValidationError{Task: t.Name, Reason: "declared more than once"}
		}
		if t.Command == "" {
			return nil, &ValidationError{Task: t.Name, Reason: "command is empty"}
		}
		for _, dep := range t.DependsOn {
			if dep == t.Name {
				return nil, &ValidationError{Task: t.Name, Reason: "depends on itself"}
			}
			if _, ok := index[dep]; !ok {
				if containsName(tasks[i+1:], dep) {
					return nil, &ValidationError{Task: t.Name, Reason: fmt.Sprintf("dependency %q must be declared before it", dep)}
				}
				return nil, &ValidationError{Task: t.Name, Reason: fmt.Sprintf("unknown dependency %q", dep)}
			}
		}
		index[t.Name] = i
	}
	return index, nil
}

func containsName(tasks []Task, name string) bool {
	for _, t := range tasks {
		if t.Name == name {
			return true
		}
	}
	return false
}
