// Package api provides the HTTP client for the Pawfessional desktop API.
//
// # Overview
//
// The package covers the three surfaces the dashboard consumes:
//
//   - Resource reads: appointments, products, staff, calendar events,
//     holidays, dashboard counters, and the analytics bundle.
//   - Mutations: appointment status changes, reschedules, visit
//     confirmation, walk-in logging, follow-up booking, and the
//     product/staff/calendar/analytics delete-and-create operations.
//   - The event stream: a long-poll cursor over pushed change
//     notifications, plus the once-per-session online announcement.
//
// # Files
//
//   - client.go: HTTP client, resource fetches, validated mutations
//   - events.go: change-notification long-poll and presence announcement
//   - types.go: wire structures mirroring the server's JSON schema
//
// # Request Handling
//
// All requests use context for cancellation, set Accept and User-Agent
// headers, run under a 10-second client timeout, and return wrapped errors
// naming the failed step ("execute request", "decode response", "api
// /products returned status 500").
//
// # Validation
//
// Mutating request types carry a Validate method that is checked before any
// bytes leave the process. An invalid payload (walk-in without a pet,
// follow-up without a time) is reported to the caller directly and no
// request is issued.
//
// # Event Stream
//
// PollEvents implements a sequence-cursor long poll: the caller passes the
// last cursor it has seen ("since") and a maximum hold time ("wait_ms");
// the response carries any newer events plus the next cursor. Presence
// events embed the complete online staff id list rather than join/leave
// deltas, so a missed poll is self-healing.
//
// # Error Taxonomy
//
// Network and HTTP failures surface as ordinary wrapped errors for the
// caller to log; the client performs no retries. Malformed domain data
// (unknown status strings, missing times) is not an error at this layer:
// types.go canonicalizes statuses with a Cancelled fallback and leaves
// time-of-day handling to the consumers that care.
package api
