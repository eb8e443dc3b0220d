/*
Package reconciler retries placement of pending pods.

The rescheduler wakes every 15 seconds (configurable) and asks the
manager to re-submit every pending pod to the scheduler under the
current cluster strategy. Pods land in pending three ways: admitted at
launch but no single node fit, evicted when their node failed, or
orphaned when their node was removed. This loop is the path back to
running for all of them.

# Retry Model

Retry is unconditional:

  - No backoff: every pending pod is attempted every cycle.
  - No attempt limit: a pod too large for any node is retried forever.
  - No priority: pods are attempted in ascending id order, so a large
    unplaceable pod never blocks a small placeable one, but nothing
    ages pods out or bumps them up.

An oversized pod therefore stays pending indefinitely, visible in
ListPods and the pending gauge, consuming one scheduler call per
cycle. That is an operator signal, not an error; see
roost_reschedule_attempts_total.

# Interaction with the Detector

The detector (pkg/health) evicts pods from silent nodes; this loop
puts them back. The two run on independent tickers against the same
manager, serialized by its critical section, so a sweep never observes
a half-applied eviction.

Usage:

	rescheduler := reconciler.NewRescheduler(mgr, clock.New(), cfg.RescheduleInterval)
	rescheduler.Start()
	defer rescheduler.Stop()

Sweep errors are logged and swallowed; the next cycle retries from
current state.
*/
package reconciler
