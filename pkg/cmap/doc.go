// Package cmap provides a sharded concurrent map.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so writers on different shards never contend:
//
//	m := cmap.New[string, []byte]()
//	m.Set("task/9f2c", value)
//	v, ok := m.Get("task/9f2c")
//
// Iteration locks one shard at a time and therefore observes a view that
// may not be consistent across shards.
package cmap
