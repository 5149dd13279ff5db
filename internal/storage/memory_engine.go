package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/yndnr/turbine-go/pkg/cmap"
)

// MemoryEngine implements KVEngine on a sharded in-process map. Contents
// are lost on Close.
type MemoryEngine struct {
	items  *cmap.Map[string, []byte]
	closed atomic.Bool
}

// NewMemoryEngine creates an empty in-memory engine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{items: cmap.New[string, []byte]()}
}

// Get retrieves a value by key.
func (e *MemoryEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}
	v, ok := e.items.Get(string(key))
	if !ok {
		return nil, ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

// Set stores a copy of value under key.
func (e *MemoryEngine) Set(ctx context.Context, key, value []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.items.Set(string(key), bytes.Clone(value))
	return nil
}

// Delete removes a key.
func (e *MemoryEngine) Delete(ctx context.Context, key []byte) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.items.Delete(string(key))
	return nil
}

// Scan iterates over keys with a given prefix in ascending key order.
func (e *MemoryEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return ErrClosed
	}

	p := string(prefix)
	matched := e.items.Filter(func(k string, _ []byte) bool {
		return strings.HasPrefix(k, p)
	})

	keys := make([]string, 0, len(matched))
	for k := range matched {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !fn([]byte(k), bytes.Clone(matched[k])) {
			break
		}
	}
	return nil
}

// GC is a no-op; deleted entries are freed by the Go runtime.
func (e *MemoryEngine) GC(ctx context.Context) (uint64, error) {
	if e.closed.Load() {
		return 0, ErrClosed
	}
	return 0, nil
}

// Stats returns the key count and the summed size of keys and values.
func (e *MemoryEngine) Stats(ctx context.Context) (*KVStats, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	stats := &KVStats{Engine: EngineMemory}
	e.items.Range(func(k string, v []byte) bool {
		stats.TotalKeys++
		stats.TotalSize += uint64(len(k) + len(v))
		return true
	})
	return stats, nil
}

// Close drops all entries.
func (e *MemoryEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	e.items.Clear()
	return nil
}

// Open builds the engine named by cfg.Engine. An empty name selects Badger.
func Open(cfg KVConfig, logger *slog.Logger) (KVEngine, error) {
	switch cfg.Engine {
	case EngineBadger, "":
		return NewBadgerEngine(cfg, logger)
	case EngineMemory:
		return NewMemoryEngine(), nil
	default:
		return nil, &UnsupportedEngineError{Engine: cfg.Engine}
	}
}

// UnsupportedEngineError reports an unknown engine name passed to Open.
type UnsupportedEngineError struct {
	Engine string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("storage: unsupported engine %q", e.Engine)
}
