package config

import (
	"errors"
	"fmt"
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifyRun(&cfg.Run); err != nil {
		return err
	}
	if err := verifyTasks(cfg.Tasks); err != nil {
		return err
	}
	return verifyStorage(&cfg.Storage)
}

func verifyRun(cfg *RunSection) error {
	if cfg.Concurrency < 1 {
		return errors.New("run.concurrency must be at least 1")
	}
	if len(cfg.Shell) == 0 || cfg.Shell[0] == "" {
		return errors.New("run.shell is required")
	}
	if cfg.HookTimeout < 0 {
		return errors.New("run.hook_timeout must not be negative")
	}
	if cfg.KillDelay < 0 {
		return errors.New("run.kill_delay must not be negative")
	}
	return nil
}

// verifyTasks checks names and commands. Dependency ordering is checked
// when the pipeline is built.
func verifyTasks(tasks []TaskConfig) error {
	seen := make(map[string]struct{}, len(tasks))
	for i, t := range tasks {
		if t.Name == "" {
			return fmt.Errorf("tasks[%d].name is required", i)
		}
		if _, dup := seen[t.Name]; dup {
			return fmt.Errorf("tasks[%d]: duplicate task name %q", i, t.Name)
		}
		seen[t.Name] = struct{}{}
		if t.Command == "" {
			return fmt.Errorf("task %q: command is required", t.Name)
		}
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case EngineBadger:
		if cfg.DataDir == "" {
			return errors.New("storage.data_dir is required for the badger engine")
		}
	case EngineMemory:
	default:
		return fmt.Errorf("storage.engine %q is not supported (badger, memory)", cfg.Engine)
	}
	if cfg.GCInterval < 0 {
		return errors.New("storage.gc_interval must not be negative")
	}
	return nil
}
