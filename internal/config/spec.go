package config

import "time"

// Config is the root configuration for turbine.
type Config struct {
	Run     RunSection     `koanf:"run" yaml:"run" json:"run"`
	Tasks   []TaskConfig   `koanf:"tasks" yaml:"tasks" json:"tasks"`
	Storage StorageSection `koanf:"storage" yaml:"storage" json:"storage"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics" json:"metrics"`
	Log     LogSection     `koanf:"log" yaml:"log" json:"log"`
}

// RunSection configures task execution.
type RunSection struct {
	// Concurrency is the maximum number of tasks running at once.
	Concurrency int `koanf:"concurrency" yaml:"concurrency" json:"concurrency"`

	// Shell is the command prefix used to run task commands,
	// e.g. ["sh", "-c"].
	Shell []string `koanf:"shell" yaml:"shell" json:"shell"`

	// ContinueOnError keeps launching independent tasks after a failure.
	ContinueOnError bool `koanf:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`

	// HookTimeout bounds shutdown hooks after an interrupt or a finished run.
	HookTimeout time.Duration `koanf:"hook_timeout" yaml:"hook_timeout" json:"hook_timeout"`

	// KillDelay is how long an interrupted task may take to exit before
	// it is killed.
	KillDelay time.Duration `koanf:"kill_delay" yaml:"kill_delay" json:"kill_delay"`
}

// TaskConfig declares one task.
type TaskConfig struct {
	Name      string   `koanf:"name" yaml:"name" json:"name"`
	Command   string   `koanf:"command" yaml:"command" json:"command"`
	DependsOn []string `koanf:"depends_on" yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Dir       string   `koanf:"dir" yaml:"dir,omitempty" json:"dir,omitempty"`
	Env       []string `koanf:"env" yaml:"env,omitempty" json:"env,omitempty"`
}

// StorageSection configures the duration history store.
type StorageSection struct {
	// Engine is "badger" (persistent) or "memory".
	Engine     string        `koanf:"engine" yaml:"engine" json:"engine"`
	DataDir    string        `koanf:"data_dir" yaml:"data_dir" json:"data_dir"`
	GCInterval time.Duration `koanf:"gc_interval" yaml:"gc_interval" json:"gc_interval"`
}

// MetricsSection configures metrics export.
type MetricsSection struct {
	// Textfile, when set, receives the run's metrics in Prometheus text
	// format (for the node_exporter textfile collector).
	Textfile string `koanf:"textfile" yaml:"textfile,omitempty" json:"textfile,omitempty"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level" json:"level"`
	Format string `koanf:"format" yaml:"format" json:"format"`
}
