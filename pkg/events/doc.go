/*
Package events provides an in-memory event broker for Roost's pub/sub
messaging.

The broker broadcasts cluster state transitions to interested
subscribers: the API streams them to clients over /v1/events, and
tests subscribe to observe transition ordering. Publishing is
non-blocking end to end so a slow consumer can never stall the
manager's critical section.

# Delivery

	Publisher → event channel (buffer: 100)
	     ↓
	broadcast loop (one goroutine)
	     ↓
	subscriber channels (buffer: 50 each, drop when full)

Delivery is best-effort: a subscriber that stops draining its channel
silently misses events rather than applying backpressure.
State of record lives in the store; events are a notification surface,
not a ledger.

# Event Types

Node lifecycle: node.joined, node.removed, node.down, node.recovered.
Pod lifecycle: pod.created, pod.scheduled, pod.evicted.
Control plane: leader.elected, strategy.changed.

Events carry a generated id, a timestamp, a human-readable message,
and a flat string metadata map (node_id, pod_id, strategy, ...).
*/
package events
