// Package ui renders the pawdesk terminal dashboard with tview.
//
// # Overview
//
// The UI is a thin consumer of the state stores: a one-second ticker reads
// snapshots through Application.QueueUpdateDraw and re-renders the active
// view. All data movement happens in the sync coordinator; the UI never
// fetches on its own except to re-query staff after a search change and to
// refresh after a mutation it issued.
//
// # Views
//
// Eight views, switched with the number keys:
//
//	1 dashboard    counters, today's stats, status distribution
//	2 appointments pending table with conflict highlighting + conflicts pane
//	3 products     searchable list with pet filter and stock bands
//	4 staff        roster with live online indicators
//	5 calendar     clinic events + holidays for the current month
//	6 visits       appointments with an outcome, with per-status actions
//	7 analytics    loaded lazily the first time the view opens
//	8 diagnostics  tail of pawdesk's own log
//
// # Mutations
//
// Write actions (approve, cancel, reschedule, walk-in, follow-up, confirm
// arrival, no-show, product and staff forms, deletes, new events) validate
// client-side, confirm
// through a modal where destructive, then run off the UI goroutine with a
// timeout. After a successful write the affected resource is refetched;
// the push notification usually arrives first and the store sequence guard
// absorbs the overlap.
//
// # Theme
//
// Dark and light palettes, toggled with t and persisted to the prefs file.
package ui
