// Package realtime keeps the dashboard stores synchronized with the server
// through pushed change notifications.
//
// # Overview
//
// The server does not push data, only change notifications: small tagged
// events saying an appointment, product, staff, calendar, analytics, or
// presence change happened. The Coordinator long-polls the event stream,
// funnels the notifications into one channel, and runs a single dispatch
// loop that refetches the affected resources and applies them to the
// stores.
//
// # Architecture
//
//	         long-poll goroutine                dispatch goroutine
//	┌────────────────────────────┐      ┌──────────────────────────────┐
//	│ PollEvents(since=cursor)   │      │ for ev := range notes {      │
//	│   cursor = batch.Next      │─────→│   refetch(ev.Kind)           │
//	│   notes <- event...        │ chan │   store.Apply / Fail         │
//	│ backoff on failure         │      │ }                            │
//	└────────────────────────────┘      └──────────────────────────────┘
//
// Handlers never overlap: one goroutine consumes the channel, so pipelines
// run strictly in arrival order. Responses may still resolve out of order
// relative to earlier refreshes; the store sequence guard makes that
// harmless.
//
// # Pipelines
//
// Each event kind maps to a fixed pipeline:
//
//   - appointment_update: refetch appointments, recompute the conflict set,
//     then refresh the dashboard and today counters that depend on them.
//     A failed appointment fetch skips the dependent stats.
//   - analytics_update: refetch the analytics bundle, but only while the
//     analytics view is on screen. Hidden pushes set a dirty mark settled
//     by ViewOpened, so a flood of background analytics changes costs one
//     fetch on the next open.
//   - products_update, staff_update: refetch the list. Staff refetches
//     carry the current search and status filter.
//   - events_update: refetch calendar events and holidays.
//   - online_staff_update: no fetch; the pushed id list replaces the
//     online roster wholesale.
//
// A failure inside a pipeline is logged and recorded on its store; the
// dispatch loop continues with the next notification.
//
// # Coalescing
//
// By default every notification is handled individually (FireEveryTime),
// matching the server's delivery. With the Coalesce policy the dispatcher
// drains the queue first and collapses duplicate kinds into one handling,
// keeping the last presence payload. Useful on slow links where pushes
// outpace refetches.
//
// # Session Presence
//
// Run announces this staff session once at startup with a fresh UUID
// session id. The announcement is best-effort; failure degrades only the
// online indicators.
package realtime
