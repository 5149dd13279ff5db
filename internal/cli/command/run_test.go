//go:build !windows

package command

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestRunCommand_Success(t *testing.T) {
	path := writeConfig(t, `
tasks:
  - name: build
    command: echo building
  - name: test
    command: echo testing
    depends_on: [build]
storage:
  engine: memory
`)

	code, stdout, stderr := runApp(t, "-c", path, "run")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "build | building") {
		t.Errorf("stdout = %q, want prefixed build output", stdout)
	}
	if !strings.Contains(stdout, "test | testing") {
		t.Errorf("stdout = %q, want prefixed test output", stdout)
	}
}

func TestRunCommand_TaskExitCode(t *testing.T) {
	path := writeConfig(t, `
tasks:
  - name: lint
    command: exit 3
storage:
  engine: memory
`)

	code, _, stderr := runApp(t, "-c", path, "run")
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(stderr, "lint") {
		t.Errorf("stderr = %q, want the failed task named", stderr)
	}
}

func TestRunCommand_SelectTask(t *testing.T) {
	path := writeConfig(t, `
tasks:
  - name: build
    command: echo building
  - name: docs
    command: echo documenting
storage:
  engine: memory
`)

	code, stdout, stderr := runApp(t, "-c", path, "run", "build")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}
	if strings.Contains(stdout, "documenting") {
		t.Errorf("stdout = %q, unselected task ran", stdout)
	}

	code, _, stderr = runApp(t, "-c", path, "run", "deploy")
	if code != 1 {
		t.Errorf("unknown task: exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "deploy") {
		t.Errorf("stderr = %q, want the unknown task named", stderr)
	}
}

func TestRunCommand_NoTasks(t *testing.T) {
	path := writeConfig(t, "storage:\n  engine: memory\n")

	code, _, stderr := runApp(t, "-c", path, "run")
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr, "no tasks configured") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestRunCommand_MetricsTextfile(t *testing.T) {
	textfile := filepath.Join(t.TempDir(), "turbine.prom")
	path := writeConfig(t, `
tasks:
  - name: build
    command: "true"
storage:
  engine: memory
metrics:
  textfile: `+textfile+`
`)

	if code, _, stderr := runApp(t, "-c", path, "run"); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr)
	}

	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`turbine_runs_total{outcome="success"} 1`,
		`turbine_task_executions_total{status="succeeded"} 1`,
		`turbine_storage_keys{engine="memory"}`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestRunCommand_HistoryRoundTrip(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "history")
	path := writeConfig(t, `
tasks:
  - name: build
    command: "true"
  - name: test
    command: exit 2
    depends_on: [build]
`)

	if code, _, stderr := runApp(t, "-c", path, "--data-dir", dataDir, "run"); code != 2 {
		t.Fatalf("first run: exit code = %d, want 2 (stderr %q)", code, stderr)
	}
	if code, _, stderr := runApp(t, "-c", path, "--data-dir", dataDir, "run", "build"); code != 0 {
		t.Fatalf("second run: exit code = %d, stderr = %q", code, stderr)
	}

	code, stdout, stderr := runApp(t, "-c", path, "--data-dir", dataDir, "-o", "json", "history")
	if code != 0 {
		t.Fatalf("history: exit code = %d, stderr = %q", code, stderr)
	}

	var runs []struct {
		ID       string `json:"id"`
		ExitCode int    `json:"exit_code"`
		Tasks    []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(stdout), &runs); err != nil {
		t.Fatalf("decode history %q: %v", stdout, err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	// Newest first.
	if runs[0].ExitCode != 0 || len(runs[0].Tasks) != 1 {
		t.Errorf("runs[0] = %+v, want the selective successful run", runs[0])
	}
	if runs[1].ExitCode != 2 || len(runs[1].Tasks) != 2 {
		t.Errorf("runs[1] = %+v, want the failed full run", runs[1])
	}

	code, stdout, stderr = runApp(t, "-c", path, "--data-dir", dataDir, "history", "show", runs[1].ID)
	if code != 0 {
		t.Fatalf("history show: exit code = %d, stderr = %q", code, stderr)
	}
	for _, want := range []string{"TASK", "build", "succeeded", "test", "failed"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("history show output missing %q:\n%s", want, stdout)
		}
	}

	code, stdout, _ = runApp(t, "-c", path, "--data-dir", dataDir, "history", "--limit", "1")
	if code != 0 {
		t.Fatalf("history --limit: exit code = %d", code)
	}
	if !strings.Contains(stdout, runs[0].ID) || strings.Contains(stdout, runs[1].ID) {
		t.Errorf("history --limit 1 output = %q, want only the newest run", stdout)
	}
}

func TestHistoryShow_Errors(t *testing.T) {
	path := writeConfig(t, "storage:\n  engine: memory\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing id", []string{"history", "show"}, "run id required"},
		{"malformed id", []string{"history", "show", "not-a-ulid"}, "invalid run id"},
		{"unknown id", []string{"history", "show", "01ARZ3NDEKTSV4RRFFQ69G5FAV"}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runApp(t, append([]string{"-c", path}, tt.args...)...)
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want %q", stderr, tt.want)
			}
		})
	}
}

func TestRunCommand_Interrupt(t *testing.T) {
	path := writeConfig(t, `
tasks:
  - name: slow
    command: echo started; sleep 30
  - name: after
    command: echo should not run
    depends_on: [slow]
storage:
  engine: memory
`)

	var stdout, stderr syncBuffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	codes := make(chan int, 1)
	start := time.Now()
	go func() {
		codes <- execute(app, []string{"turbine", "-c", path, "run"})
	}()

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "slow | started") {
		if time.Now().After(deadline) {
			t.Fatalf("task never started; stderr = %q", stderr.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := syscall.Kill(os.Getpid(), syscall.SIGINT); err != nil {
		t.Fatalf("send SIGINT: %v", err)
	}

	select {
	case code := <-codes:
		if code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run did not stop after SIGINT")
	}

	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("run took %v, want prompt stop", elapsed)
	}
	if !strings.Contains(stderr.String(), "Received SIGINT") {
		t.Errorf("stderr = %q, want the signal notice", stderr.String())
	}
	if strings.Contains(stdout.String(), "should not run") {
		t.Error("dependent task ran after interrupt")
	}
}
