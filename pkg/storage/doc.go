/*
Package storage provides state persistence for Roost's cluster data.

The storage package defines the Store interface over nodes, pods, and
the cluster settings record, with three interchangeable backends:
embedded BoltDB (default), in-memory maps, and Redis. All backends
serialize records as JSON and list them in ascending id order, so
placement and leader election behave identically regardless of which
backend a deployment runs.

# Architecture

	┌───────────────────── STORAGE LAYER ─────────────────────┐
	│                                                          │
	│  ┌────────────────────────────────────────────┐         │
	│  │               Store interface               │         │
	│  │  - Node CRUD  (CreateNode ... DeleteNode)   │         │
	│  │  - Pod CRUD   (CreatePod ... DeletePod)     │         │
	│  │  - Settings   (GetSettings / PutSettings)   │         │
	│  │  - Reset      (clean-slate boot)            │         │
	│  └──────┬──────────────┬──────────────┬───────┘         │
	│         │              │              │                  │
	│  ┌──────▼─────┐ ┌──────▼─────┐ ┌──────▼─────┐           │
	│  │ BoltStore  │ │MemoryStore │ │ RedisStore │           │
	│  │ roost.db   │ │ maps +     │ │ roost:*    │           │
	│  │ buckets:   │ │ RWMutex    │ │ keys +     │           │
	│  │ nodes,pods,│ │            │ │ index sets │           │
	│  │ settings   │ │            │ │            │           │
	│  └────────────┘ └────────────┘ └────────────┘           │
	└──────────────────────────────────────────────────────────┘

# Backends

BoltStore:
  - Single file <dataDir>/roost.db, one bucket per record kind
  - db.View for reads, db.Update for writes (ACID, fsync on commit)
  - bbolt iterates keys sorted, which provides the id order natively

MemoryStore:
  - Map-backed, guarded by an RWMutex; no durability
  - Backs unit tests and the "memory" backend for throwaway clusters

RedisStore:
  - JSON strings under roost:node:<id> and roost:pod:<id>
  - Index sets roost:nodes / roost:pods so listing avoids SCAN
  - Lists sort ids to restore the order sets do not keep

# Semantics

Create and Update are both upserts; callers that need
create-if-absent check existence first (the registries do, under the
manager's lock). Get and Delete return ErrNotFound, wrapped with the
record id, for missing records:

	node, err := store.GetNode("node-a")
	if errors.Is(err, storage.ErrNotFound) {
		// handle missing node
	}

Reset drops every record and is called at boot when the server runs
with reset_on_boot enabled, giving each run a clean slate.

The store performs no locking across calls; multi-step transitions
(admit, place, evict) are serialized by the manager's critical
section.
*/
package storage
