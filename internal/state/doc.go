// Package state provides thread-safe stores shared between the sync
// coordinator and the UI.
//
// # Overview
//
// Each dashboard resource (appointments, products, staff, calendar events,
// stats, analytics) lives in its own Store. The sync coordinator writes into
// them as refetches complete; the UI reads immutable snapshots on its render
// ticks. The Store is the one point where those goroutines meet.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (sync coordinator):        Consumer (UI):
//	┌──────────────────────┐           ┌────────────────────┐
//	│ seq := store.Begin() │           │                    │
//	│ data := fetch()      │           │                    │
//	│ store.Apply(seq, d)  │──────────→│ store.Snapshot()   │
//	│   or store.Fail(...) │  (mutex)  │       ↓            │
//	└──────────────────────┘           │   render views     │
//	                                   └────────────────────┘
//
// # Fetch Sequencing
//
// Pushed change notifications can trigger refetches in quick succession, and
// HTTP responses are free to land out of order. Without a guard, a slow
// response from an earlier fetch could overwrite the data from a later one
// and the dashboard would display stale rows until the next change.
//
// The Store prevents this with a per-store fetch sequence:
//
//	seq := store.Begin()        // reserve before issuing the request
//	data, err := fetch(ctx)
//	if err != nil {
//	    store.Fail(seq, err)    // dropped if a newer fetch already applied
//	    return
//	}
//	store.Apply(seq, data)      // rejected if a newer fetch already applied
//
// Apply installs data only when no later sequence has applied yet; Begin,
// Apply, and Fail share the store mutex, so the ordering is race-free.
//
// # Failure Semantics
//
// Fail keeps the previous data and records the error and the consecutive
// failure streak. Snapshot.IsStale reports two or more consecutive failures,
// which the UI surfaces as a connectivity warning while still showing the
// last good data.
//
// # Derived State
//
// Stores also carries the two pieces of state computed from pushes rather
// than fetched:
//
//   - The conflict set, rebuilt from the appointment snapshot after every
//     appointment apply (RecomputeConflicts).
//   - The online-staff roster, replaced wholesale on each presence push
//     (SetRoster).
//
// # Defensive Copying
//
// Apply and Snapshot clone slice-backed data through the store's clone
// function, so a snapshot held by the UI can never be mutated by a later
// apply, and vice versa. Stat pointers are treated as immutable once
// applied.
//
// # Testing Considerations
//
// Stores are ready to use from NewStore with no further initialization, and
// Snapshot on a never-applied store returns a zero Snapshot with HasData
// false.
package state
