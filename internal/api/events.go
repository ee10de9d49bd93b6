package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// EventKind names a change-notification topic on the wire.
type EventKind string

const (
	EventAppointments EventKind = "appointment_update"
	EventAnalytics    EventKind = "analytics_update"
	EventProducts     EventKind = "products_update"
	EventStaff        EventKind = "staff_update"
	EventCalendar     EventKind = "events_update"
	EventPresence     EventKind = "online_staff_update"
)

// Event is one pushed change notification. OnlineIDs is populated only for
// presence events and always carries the complete online set, never a delta.
type Event struct {
	Seq       uint64    `json:"seq"`
	Kind      EventKind `json:"kind"`
	OnlineIDs []int64   `json:"online_ids,omitempty"`
}

// EventBatch aggregates pushed events with the next sequence cursor.
type EventBatch struct {
	Events []Event `json:"events"`
	Next   uint64  `json:"next"`
}

// EventQuery configures /events long-poll requests.
type EventQuery struct {
	Since  uint64
	Limit  int
	WaitMS int
}

// PollEvents retrieves pushed change notifications at or after the cursor.
// When WaitMS is set the server holds the request open until an event
// arrives or the wait expires, whichever comes first; the request then runs
// on the untimed stream client so the hold outlives the fixed request
// timeout, bounded instead by the wait window plus a grace period.
func (c *Client) PollEvents(ctx context.Context, query EventQuery) (EventBatch, error) {
	values := url.Values{}
	if query.Since > 0 {
		values.Set("since", strconv.FormatUint(query.Since, 10))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	hc := c.http
	if query.WaitMS > 0 {
		values.Set("wait_ms", strconv.Itoa(query.WaitMS))
		hc = c.stream
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(query.WaitMS)*time.Millisecond+streamGrace)
		defer cancel()
	}
	rel := &url.URL{Path: "/events/stream", RawQuery: values.Encode()}
	var payload EventBatch
	if err := c.doWith(ctx, hc, http.MethodGet, rel, nil, &payload); err != nil {
		return EventBatch{}, err
	}
	return payload, nil
}

// OnlineAnnouncement identifies this session to the presence fan-out. The
// session id distinguishes multiple terminals sharing one staff account.
type OnlineAnnouncement struct {
	StaffID   int64  `json:"staff_id"`
	SessionID string `json:"session_id"`
}

// AnnounceOnline marks this staff session as online. Sent once per session
// start; the server folds it into subsequent presence pushes.
func (c *Client) AnnounceOnline(ctx context.Context, ann OnlineAnnouncement) error {
	rel := &url.URL{Path: "/staff/online"}
	return c.do(ctx, http.MethodPost, rel, ann, nil)
}
