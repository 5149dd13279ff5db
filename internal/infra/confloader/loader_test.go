package confloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Run struct {
		Concurrency     int           `koanf:"concurrency"`
		ContinueOnError bool          `koanf:"continue_on_error"`
		HookTimeout     time.Duration `koanf:"hook_timeout"`
	} `koanf:"run"`
	Storage struct {
		DataDir string `koanf:"data_dir"`
	} `koanf:"storage"`
	Tasks []struct {
		Name    string `koanf:"name"`
		Command string `koanf:"command"`
	} `koanf:"tasks"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "turbine.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}

	l = NewLoader(WithEnvPrefix("TEST_"), WithConfigFile("/etc/turbine.yaml"))
	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q", l.envPrefix)
	}
	if l.filePath != "/etc/turbine.yaml" {
		t.Errorf("filePath = %q", l.filePath)
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
run:
  concurrency: 4
tasks:
  - name: build
    command: go build ./...
  - name: test
    command: go test ./...
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got := l.GetInt("run.concurrency"); got != 4 {
		t.Errorf("run.concurrency = %d, want 4", got)
	}

	var cfg testConfig
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(cfg.Tasks) != 2 || cfg.Tasks[1].Name != "test" {
		t.Errorf("tasks = %+v", cfg.Tasks)
	}
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/turbine.yaml"); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") error = %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("TURBINE_STORAGE_DATA_DIR", "/tmp/turbine")
	t.Setenv("TURBINE_RUN_CONTINUE_ON_ERROR", "true")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := l.GetString("storage.data_dir"); got != "/tmp/turbine" {
		t.Errorf("storage.data_dir = %q", got)
	}
	if !l.GetBool("run.continue_on_error") {
		t.Error("run.continue_on_error should be true")
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
run:
  concurrency: 2
  hook_timeout: 5s
storage:
  data_dir: /from/file
`)
	t.Setenv("TURBINE_STORAGE_DATA_DIR", "/from/env")

	var cfg testConfig
	cfg.Run.ContinueOnError = true // default survives when no source sets it

	l := NewLoader(
		WithConfigFile(path),
		WithOverrides(map[string]any{"run.concurrency": 8}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() = false after Load")
	}

	if cfg.Run.Concurrency != 8 {
		t.Errorf("concurrency = %d, want override 8", cfg.Run.Concurrency)
	}
	if cfg.Storage.DataDir != "/from/env" {
		t.Errorf("data_dir = %q, want env value", cfg.Storage.DataDir)
	}
	if cfg.Run.HookTimeout != 5*time.Second {
		t.Errorf("hook_timeout = %v, want 5s", cfg.Run.HookTimeout)
	}
	if !cfg.Run.ContinueOnError {
		t.Error("default continue_on_error was lost")
	}
}

func TestLoader_Load_BadFile(t *testing.T) {
	var cfg testConfig
	err := NewLoader(WithConfigFile("/nonexistent.yaml")).Load(&cfg)
	if err == nil {
		t.Fatal("Load() should fail")
	}
}

func TestMapProvider(t *testing.T) {
	p := mapProvider{"run.concurrency": 3}
	if _, err := p.ReadBytes(); !errors.Is(err, ErrReadBytesNotSupported) {
		t.Errorf("ReadBytes() error = %v", err)
	}
	m, err := p.Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	run, ok := m["run"].(map[string]any)
	if !ok || run["concurrency"] != 3 {
		t.Errorf("Read() = %v", m)
	}
}
