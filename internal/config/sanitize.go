package config

import "github.com/yndnr/turbine-go/internal/telemetry/logger"

// Sanitize returns a copy of the config with secrets in task environments
// masked.
//
// This is used for printing or logging configuration.
func Sanitize(cfg *Config) *Config {
	sanitized := *cfg

	sanitized.Tasks = make([]TaskConfig, len(cfg.Tasks))
	for i, t := range cfg.Tasks {
		if len(t.Env) > 0 {
			env := make([]string, len(t.Env))
			for j, kv := range t.Env {
				env[j] = logger.RedactEnv(kv)
			}
			t.Env = env
		}
		sanitized.Tasks[i] = t
	}

	return &sanitized
}
