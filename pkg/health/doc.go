/*
Package health runs the failure detector loop.

The detector wakes every 10 seconds (configurable) and asks the
manager to sweep for nodes whose last heartbeat is older than the
liveness window. The manager owns the actual transition (marking the
node unhealthy and evicting its pods in one critical section), so a
detector tick and a manual FailNode are indistinguishable in effect.

Silence is the only failure signal. A node that heartbeats regularly
is never failed by this loop, however it behaves otherwise, and a
failed node rejoins the moment it heartbeats again.

Sweep errors are logged and swallowed; the next tick retries against
current state. The loop holds no state of its own beyond the stop
channel, so there is nothing to recover if it restarts.

Usage:

	detector := health.NewDetector(mgr, clock.New(), cfg.DetectorInterval)
	detector.Start()
	defer detector.Stop()

Tests drive sweeps synchronously through a fake clock instead of
sleeping; see pkg/clock.
*/
package health
