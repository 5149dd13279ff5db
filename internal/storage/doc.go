// Package storage persists task and run duration history.
//
// Two layers live here:
//
//   - KVEngine: an embedded key-value engine. BadgerEngine keeps history
//     on disk across invocations; MemoryEngine keeps it for the lifetime
//     of the process (tests, --storage-engine=memory).
//   - History: the typed view the pipeline writes to. Task durations are
//     stored as 2-byte pico values; run summaries as CRC-checked binary
//     records keyed by run ULID.
package storage
