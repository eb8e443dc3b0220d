/*
Package scheduler implements bin-packing pod placement for Roost
clusters.

Placement is a pure function: SelectNode takes a node snapshot, a CPU
request, and a strategy, and returns the chosen node or nil. It never
touches the store, the clock, or the nodes it is given. The manager
calls it inside the cluster critical section and commits the result
(deduct CPU, bind pod) before releasing the lock, which is what makes
a placement decision atomic.

# Strategies

Three strategies, all scanning the snapshot in ascending node-id
order and considering only healthy nodes with AvailableCPU >= request:

	first_fit   first fitting node; cheapest scan
	best_fit    fitting node with the LEAST available CPU; packs
	            tightly, preserving large holes for large pods
	worst_fit   fitting node with the MOST leftover after placement;
	            spreads load, keeping free space even

Ties go to the first node in snapshot order in every strategy: best
fit compares with strict less-than, worst fit with strict
greater-than. An exact fit (leftover zero) is acceptable to all three.

Example with nodes A(10 free) and B(4 free) and a 3-CPU pod:

	first_fit → A  (first in order that fits)
	best_fit  → B  (4 < 10; B leaves the smaller hole)
	worst_fit → A  (7 > 1; A leaves the bigger hole)

An unknown strategy value behaves as best_fit, mirroring how the
settings layer normalizes unrecognized strategy names.

# Periodic placement

This package has no loop of its own. Pods that could not be placed at
launch stay pending, and the reconciler package retries them on a
fixed interval with whatever strategy the cluster is configured for at
that moment.
*/
package scheduler
