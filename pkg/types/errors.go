package types

import "errors"

// Sentinel errors returned by cluster operations. Callers branch with
// errors.Is; the API layer maps each to an HTTP status and a stable
// error code.
var (
	// ErrDuplicateNode is returned when registering a node whose ID is taken.
	ErrDuplicateNode = errors.New("node already exists")

	// ErrDuplicatePod is returned when launching a pod whose ID is taken.
	ErrDuplicatePod = errors.New("pod already exists")

	// ErrNodeNotFound is returned when an operation names an unknown node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPodNotFound is returned when an operation names an unknown pod.
	ErrPodNotFound = errors.New("pod not found")

	// ErrMissingField is returned when a request omits a required field.
	ErrMissingField = errors.New("missing required field")

	// ErrInsufficientCapacity is returned by the admission gate when the
	// live cluster cannot hold the requested CPU even in aggregate.
	ErrInsufficientCapacity = errors.New("insufficient cluster capacity")

	// ErrNoFeasibleNode is returned when no single healthy node has room
	// for a pod. The pod stays pending and is retried by the rescheduler.
	ErrNoFeasibleNode = errors.New("no feasible node")
)
