/*
Package registry implements node and pod bookkeeping over the storage
layer.

NodeRegistry owns cluster membership: registration, removal, heartbeat
refresh, health transitions, and the CPU reserve/release bookkeeping
the scheduler's placements drive. PodRegistry owns pod records: the
admission gate, assignment, and eviction.

Neither registry locks. The manager wraps every call in its single
cluster-wide critical section, so multi-step transitions (check
capacity, create pod, reserve CPU, assign) stay atomic without any
locking here. Calling registry methods outside that section is unsafe.

Store errors are translated at this boundary: storage.ErrNotFound
becomes types.ErrNodeNotFound or types.ErrPodNotFound, and duplicate
ids become types.ErrDuplicateNode / types.ErrDuplicatePod, so callers
above the registry never see storage-level errors.

Admission deserves a note: PodRegistry.Create admits a pod when the
nodes with a sufficiently fresh heartbeat have, in aggregate, enough
free CPU. Recency is what counts, not the recorded health status, and
aggregate capacity can admit a pod no single node fits. Such a pod is
stored pending and waits for the rescheduler.
*/
package registry
