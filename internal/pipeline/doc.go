// Package pipeline runs a small graph of shell tasks.
//
// Tasks are declared in order and may only depend on tasks declared before
// them, which keeps the graph acyclic by construction. Execute launches
// tasks in declared order under a concurrency limit; each task waits for
// its dependencies and is skipped if any of them did not succeed.
//
// Execute takes a run.Handler. When the handler's Subscribe latch closes,
// running commands receive an interrupt, no new task starts, and Execute
// returns ErrInterrupted.
//
// Every finished task's wall time is recorded in storage.History as a
// millisecond pico.Duration keyed by the task fingerprint, and each run is
// summarized in a RunRecord.
package pipeline
