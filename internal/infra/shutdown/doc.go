// Package shutdown turns process termination signals into a single
// shutdown decision.
//
// A Coordinator owns the process signal listener for the lifetime of one
// run:
//
//   - Done() is a latch closed on the first SIGINT/SIGTERM (Ctrl-C on
//     Windows) and observable by any number of waiters
//   - Close() releases the listener when the run finished on its own and
//     is safe to call any number of times
//   - subscribers (Subscribe, OnShutdown) are notified exactly once, on
//     whichever of the two happens first
//
// Usage:
//
//	c, err := shutdown.New(shutdown.Notify(shutdown.DefaultSignals...))
//	if err != nil {
//		return err // *SetupError
//	}
//	defer c.Close(context.Background())
//
//	select {
//	case <-c.Done():
//		// interrupted
//	case <-finished:
//	}
//
// @design DS-0501
package shutdown
