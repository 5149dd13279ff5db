// Package run decides when a pipeline run is over.
//
// Race starts the pipeline and waits for whichever finishes first: the
// pipeline, or the shutdown coordinator's signal latch. A signal always
// wins ties. Orchestrator wraps Race with coordinator setup, teardown,
// logging and metrics.
package run
