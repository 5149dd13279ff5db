package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yndnr/turbine-go/internal/storage"
)

func names(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Name
	}
	return out
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		tasks   []Task
		wantErr string
	}{
		{
			name:  "valid",
			tasks: []Task{{Name: "a", Command: "true"}, {Name: "b", Command: "true", DependsOn: []string{"a"}}},
		},
		{
			name:    "missing name",
			tasks:   []Task{{Command: "true"}},
			wantErr: "task 0 has no name",
		},
		{
			name:    "duplicate",
			tasks:   []Task{{Name: "a", Command: "true"}, {Name: "a", Command: "false"}},
			wantErr: "declared more than once",
		},
		{
			name:    "empty command",
			tasks:   []Task{{Name: "a"}},
			wantErr: "command is empty",
		},
		{
			name:    "self dependency",
			tasks:   []Task{{Name: "a", Command: "true", DependsOn: []string{"a"}}},
			wantErr: "depends on itself",
		},
		{
			name:    "unknown dependency",
			tasks:   []Task{{Name: "a", Command: "true", DependsOn: []string{"ghost"}}},
			wantErr: `unknown dependency "ghost"`,
		},
		{
			name: "forward dependency",
			tasks: []Task{
				{Name: "a", Command: "true", DependsOn: []string{"b"}},
				{Name: "b", Command: "true"},
			},
			wantErr: `dependency "b" must be declared before it`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.tasks)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, len(tt.tasks), p.Len())
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNew_CopiesTasks(t *testing.T) {
	tasks := []Task{{Name: "a", Command: "true"}}
	p, err := New(tasks)
	require.NoError(t, err)

	tasks[0].Name = "changed"
	assert.Equal(t, "a", p.Tasks()[0].Name)
}

func TestSelect(t *testing.T) {
	p, err := New([]Task{
		{Name: "gen", Command: "true"},
		{Name: "build", Command: "true", DependsOn: []string{"gen"}},
		{Name: "lint", Command: "true"},
		{Name: "test", Command: "true", DependsOn: []string{"build"}},
		{Name: "docs", Command: "true", DependsOn: []string{"gen"}},
	})
	require.NoError(t, err)

	t.Run("transitive deps in declared order", func(t *testing.T) {
		sel, err := p.Select("test")
		require.NoError(t, err)
		assert.Equal(t, []string{"gen", "build", "test"}, names(sel.Tasks()))
	})

	t.Run("several roots", func(t *testing.T) {
		sel, err := p.Select("docs", "lint")
		require.NoError(t, err)
		assert.Equal(t, []string{"gen", "lint", "docs"}, names(sel.Tasks()))
	})

	t.Run("no names keeps everything", func(t *testing.T) {
		sel, err := p.Select()
		require.NoError(t, err)
		assert.Same(t, p, sel)
	})

	t.Run("unknown task", func(t *testing.T) {
		_, err := p.Select("deploy")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "deploy", verr.Task)
	})
}

func TestTaskKey(t *testing.T) {
	a := Task{Name: "build", Command: "go build ./..."}
	same := Task{Name: "build", Command: "go build ./...", Dir: "elsewhere"}
	otherCmd := Task{Name: "build", Command: "go build ./cmd/..."}
	// The separator keeps name/command boundaries distinct.
	shifted := Task{Name: "buildgo", Command: " build ./..."}

	assert.Equal(t, a.Key(), same.Key(), "dir does not change identity")
	assert.NotEqual(t, a.Key(), otherCmd.Key())
	assert.NotEqual(t, a.Key(), shifted.Key())
	assert.Len(t, a.Fingerprint(), 16)
}

func TestExitCode(t *testing.T) {
	tasks := []Task{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	states := []*taskState{
		{status: storage.StatusFailed, exitCode: 2},
		{status: storage.StatusFailed, exitCode: -1}, // killed by signal
		{status: storage.StatusSucceeded},
	}

	code, failed := exitCode(tasks, states)
	assert.Equal(t, 2, code)
	assert.Equal(t, []string{"a", "b"}, failed)

	code, failed = exitCode(tasks[2:], states[2:])
	assert.Equal(t, 0, code)
	assert.Empty(t, failed)
}
