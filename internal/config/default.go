package config

import (
	"runtime"
	"time"
)

// Default configuration values.
const (
	DefaultConfigFile = "turbine.yaml"

	DefaultHookTimeout = 10 * time.Second
	DefaultKillDelay   = 5 * time.Second

	EngineBadger      = "badger"
	EngineMemory      = "memory"
	DefaultEngine     = EngineBadger
	DefaultDataDir    = ".turbine/history"
	DefaultGCInterval = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultShell returns the platform shell prefix.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Run: RunSection{
			Concurrency: runtime.NumCPU(),
			Shell:       DefaultShell(),
			HookTimeout: DefaultHookTimeout,
			KillDelay:   DefaultKillDelay,
		},
		Storage: StorageSection{
			Engine:     DefaultEngine,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
