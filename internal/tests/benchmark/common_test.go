package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/turbine-go/internal/storage"
	"github.com/yndnr/turbine-go/pkg/pico"
)

// TaskCounts defines the number of tasks per run for benchmarking.
var TaskCounts = []int{1, 10, 100, 1000}

// RunCounts defines how many stored runs history scans walk.
var RunCounts = []int{100, 1000, 10000}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newRunRecord builds a run summary with taskCount tasks.
func newRunRecord(taskCount int) *storage.RunRecord {
	r := &storage.RunRecord{
		ID:    ulid.Make(),
		Total: pico.FromDuration[pico.Second](time.Duration(taskCount) * time.Second),
		Tasks: make([]storage.TaskRecord, taskCount),
	}
	for i := range r.Tasks {
		r.Tasks[i] = storage.TaskRecord{
			Name:     fmt.Sprintf("task-%04d", i),
			Key:      uint64(i) * 0x9e3779b97f4a7c15,
			Status:   storage.StatusSucceeded,
			Duration: pico.FromMillis[pico.Millisecond](uint64(i) * 37),
		}
	}
	return r
}

// prefillHistory stores count run summaries of taskCount tasks each.
func prefillHistory(b *testing.B, h *storage.History, count, taskCount int) {
	b.Helper()
	ctx := context.Background()
	for i := 0; i < count; i++ {
		if err := h.RecordRun(ctx, newRunRecord(taskCount)); err != nil {
			b.Fatalf("RecordRun failed: %v", err)
		}
	}
}

// newBadgerHistory opens a Badger-backed history in a temp dir.
func newBadgerHistory(b *testing.B) *storage.History {
	b.Helper()
	cfg := storage.DefaultKVConfig(b.TempDir())
	cfg.Badger.GCInterval = 0

	kv, err := storage.NewBadgerEngine(cfg, discardLogger())
	if err != nil {
		b.Fatalf("Failed to open badger: %v", err)
	}
	b.Cleanup(func() { kv.Close() })
	return storage.NewHistory(kv, discardLogger())
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithCounts runs a benchmark function with various sizes.
func runWithCounts(b *testing.B, label string, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("%s_%d", label, count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
