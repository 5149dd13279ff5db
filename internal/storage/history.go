package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/turbine-go/pkg/pico"
)

// Key prefixes.
const (
	taskPrefix = "task/"
	runPrefix  = "run/"
)

// History is the typed duration history stored in a KVEngine.
type History struct {
	kv     KVEngine
	logger *slog.Logger
}

// NewHistory wraps kv. The caller keeps ownership of kv and closes it.
func NewHistory(kv KVEngine, logger *slog.Logger) *History {
	if logger == nil {
		logger = slog.Default()
	}
	return &History{kv: kv, logger: logger}
}

// Engine returns the underlying engine.
func (h *History) Engine() KVEngine {
	return h.kv
}

// TaskKey returns the storage key for a task fingerprint.
func TaskKey(fingerprint uint64) []byte {
	return fmt.Appendf(nil, "%s%016x", taskPrefix, fingerprint)
}

// RunKey returns the storage key for a run id. ULIDs sort by time, so runs
// scan oldest first.
func RunKey(id ulid.ULID) []byte {
	return append([]byte(runPrefix), id.String()...)
}

// RecordTask stores the latest duration of the task with the given
// fingerprint.
func (h *History) RecordTask(ctx context.Context, fingerprint uint64, d pico.Duration[pico.Millisecond]) error {
	value, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	if err := h.kv.Set(ctx, TaskKey(fingerprint), value); err != nil {
		return fmt.Errorf("record task %016x: %w", fingerprint, err)
	}
	return nil
}

// LastTask returns the most recently recorded duration for a task. ok is
// false when the task has never been recorded.
func (h *History) LastTask(ctx context.Context, fingerprint uint64) (d pico.Duration[pico.Millisecond], ok bool, err error) {
	value, err := h.kv.Get(ctx, TaskKey(fingerprint))
	if errors.Is(err, ErrKeyNotFound) {
		return d, false, nil
	}
	if err != nil {
		return d, false, fmt.Errorf("load task %016x: %w", fingerprint, err)
	}
	if err := d.UnmarshalBinary(value); err != nil {
		return d, false, fmt.Errorf("load task %016x: %w", fingerprint, err)
	}
	return d, true, nil
}

// RecordRun stores a run summary.
func (h *History) RecordRun(ctx context.Context, r *RunRecord) error {
	if r == nil {
		return errors.New("record run: nil record")
	}
	if err := h.kv.Set(ctx, RunKey(r.ID), encodeRunRecord(r)); err != nil {
		return fmt.Errorf("record run %s: %w", r.ID, err)
	}
	return nil
}

// Run loads one run summary. Returns ErrKeyNotFound for unknown ids.
func (h *History) Run(ctx context.Context, id ulid.ULID) (*RunRecord, error) {
	value, err := h.kv.Get(ctx, RunKey(id))
	if err != nil {
		return nil, err
	}
	return decodeRunRecord(id, value)
}

// Runs returns up to limit run summaries, newest first. A non-positive
// limit returns all of them. Records that fail to decode are logged and
// skipped.
func (h *History) Runs(ctx context.Context, limit int) ([]*RunRecord, error) {
	var runs []*RunRecord
	err := h.kv.Scan(ctx, []byte(runPrefix), func(key, value []byte) bool {
		id, err := ulid.ParseStrict(string(key[len(runPrefix):]))
		if err != nil {
			h.logger.Warn("skipping run with malformed id", "id", string(key))
			return true
		}
		r, err := decodeRunRecord(id, value)
		if err != nil {
			h.logger.Warn("skipping unreadable run", "run_id", id.String(), "error", err)
			return true
		}
		runs = append(runs, r)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}

	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// TaskCount returns the number of tasks with recorded durations.
func (h *History) TaskCount(ctx context.Context) (int, error) {
	n := 0
	err := h.kv.Scan(ctx, []byte(taskPrefix), func(key, value []byte) bool {
		if len(value) == pico.Size && len(key) == len(taskPrefix)+16 {
			n++
		}
		return true
	})
	return n, err
}
