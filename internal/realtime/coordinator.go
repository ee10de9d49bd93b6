package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/presence"
	"github.com/pawfessional/pawdesk/internal/state"
)

// View identifies a dashboard tab for the visibility predicate.
type View int

const (
	ViewDashboard View = iota
	ViewAppointments
	ViewProducts
	ViewStaff
	ViewCalendar
	ViewVisits
	ViewAnalytics
	ViewDiagnostics
)

// CoalescePolicy controls how queued notifications of the same kind are
// handled when the dispatch loop falls behind.
type CoalescePolicy int

const (
	// FireEveryTime handles every notification individually, in arrival
	// order.
	FireEveryTime CoalescePolicy = iota
	// Coalesce drains the queue before dispatching and collapses duplicate
	// kinds into one handling each. The last presence payload wins.
	Coalesce
)

// EventSource is the push side of the server API. Implemented by
// *api.Client; fakes implement it in tests.
type EventSource interface {
	PollEvents(ctx context.Context, query api.EventQuery) (api.EventBatch, error)
	AnnounceOnline(ctx context.Context, ann api.OnlineAnnouncement) error
}

// Options configure a Coordinator.
type Options struct {
	Fetcher api.Fetcher
	Events  EventSource
	Stores  *state.Stores
	Logger  *slog.Logger

	// StaffID identifies this session in the online announcement. Zero
	// skips the announcement.
	StaffID int64

	// Visible reports whether a view is currently on screen. Nil treats
	// every view as visible.
	Visible func(View) bool

	Policy CoalescePolicy

	// PollWait is how long the server may hold a poll open. PollLimit caps
	// events per batch. Zero values use defaults.
	PollWait  time.Duration
	PollLimit int
}

const (
	defaultPollWait  = 25 * time.Second
	defaultPollLimit = 100
	retryBase        = 2 * time.Second
	maxBackoff       = 30 * time.Second

	// notifyBuffer absorbs push bursts while a pipeline is mid-refetch.
	notifyBuffer = 64
)

// Coordinator owns the event long-poll and the single dispatch loop that
// turns pushed notifications into store refreshes.
type Coordinator struct {
	fetcher api.Fetcher
	events  EventSource
	stores  *state.Stores
	log     *slog.Logger

	staffID   int64
	sessionID string
	visible   func(View) bool
	policy    CoalescePolicy
	pollWait  time.Duration
	pollLimit int

	notes chan api.Event

	// analyticsDirty marks a deferred analytics push, refetched when the
	// analytics view next comes on screen.
	analyticsDirty atomic.Bool

	mu         sync.Mutex
	staffQuery api.StaffQuery
}

// New builds a Coordinator. Fetcher, Events, and Stores are required.
func New(opts Options) (*Coordinator, error) {
	if opts.Fetcher == nil || opts.Events == nil || opts.Stores == nil {
		return nil, errors.New("realtime: fetcher, event source, and stores are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	visible := opts.Visible
	if visible == nil {
		visible = func(View) bool { return true }
	}
	pollWait := opts.PollWait
	if pollWait <= 0 {
		pollWait = defaultPollWait
	}
	pollLimit := opts.PollLimit
	if pollLimit <= 0 {
		pollLimit = defaultPollLimit
	}
	return &Coordinator{
		fetcher:   opts.Fetcher,
		events:    opts.Events,
		stores:    opts.Stores,
		log:       logger.With("component", "realtime"),
		staffID:   opts.StaffID,
		sessionID: uuid.NewString(),
		visible:   visible,
		policy:    opts.Policy,
		pollWait:  pollWait,
		pollLimit: pollLimit,
		notes:     make(chan api.Event, notifyBuffer),
	}, nil
}

// SessionID returns this session's presence identifier.
func (c *Coordinator) SessionID() string { return c.sessionID }

// SetStaffQuery records the staff search and status filter used by
// subsequent staff refetches.
func (c *Coordinator) SetStaffQuery(q api.StaffQuery) {
	c.mu.Lock()
	c.staffQuery = q
	c.mu.Unlock()
}

func (c *Coordinator) currentStaffQuery() api.StaffQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staffQuery
}

// InitialLoad populates every store before the UI starts. Analytics is
// excluded; it loads the first time its view opens. Individual failures are
// recorded on their stores and joined into the returned error, so a partial
// load still leaves whatever succeeded on screen.
func (c *Coordinator) InitialLoad(ctx context.Context) error {
	errs := []error{
		c.refreshAppointments(ctx),
		c.refreshProducts(ctx),
		c.refreshStaff(ctx),
		c.refreshCalendar(ctx),
		c.refreshHolidays(ctx),
		c.refreshDashboard(ctx),
		c.refreshToday(ctx),
	}
	return errors.Join(errs...)
}

// Run announces the session, starts the long-poll, and dispatches pushed
// notifications until the context is cancelled. Handlers run one at a time
// in arrival order.
func (c *Coordinator) Run(ctx context.Context) {
	c.announce(ctx)
	go c.pollLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.notes:
			if c.policy == Coalesce {
				for _, pending := range c.drain(ev) {
					c.handle(ctx, pending)
				}
			} else {
				c.handle(ctx, ev)
			}
		}
	}
}

// announce marks this staff session online. Presence is best-effort: a
// failed announcement degrades the roster, never the dashboard.
func (c *Coordinator) announce(ctx context.Context) {
	if c.staffID <= 0 {
		return
	}
	ann := api.OnlineAnnouncement{StaffID: c.staffID, SessionID: c.sessionID}
	if err := c.events.AnnounceOnline(ctx, ann); err != nil {
		c.log.Warn("online announcement failed", "error", err)
	}
}

// pollLoop feeds the notification channel from the server's event stream,
// backing off exponentially while the stream is unreachable.
func (c *Coordinator) pollLoop(ctx context.Context) {
	var cursor uint64
	failures := 0

	for ctx.Err() == nil {
		batch, err := c.events.PollEvents(ctx, api.EventQuery{
			Since:  cursor,
			Limit:  c.pollLimit,
			WaitMS: int(c.pollWait / time.Millisecond),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			wait := calculateBackoff(failures, retryBase)
			c.log.Warn("event poll failed", "error", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		if batch.Next > cursor {
			cursor = batch.Next
		}
		for _, ev := range batch.Events {
			select {
			case <-ctx.Done():
				return
			case c.notes <- ev:
			}
		}
	}
}

// drain empties the queued notifications behind first and collapses
// duplicate kinds, keeping arrival order of each kind's first appearance
// and the payload of its last.
func (c *Coordinator) drain(first api.Event) []api.Event {
	ordered := []api.Event{first}
	index := map[api.EventKind]int{first.Kind: 0}
	for {
		select {
		case ev := <-c.notes:
			if i, dup := index[ev.Kind]; dup {
				ordered[i] = ev
				continue
			}
			index[ev.Kind] = len(ordered)
			ordered = append(ordered, ev)
		default:
			return ordered
		}
	}
}

func (c *Coordinator) handle(ctx context.Context, ev api.Event) {
	switch ev.Kind {
	case api.EventAppointments:
		// The three refetches are independent; a dead appointments
		// endpoint must not stale the counters too.
		_ = c.refreshAppointments(ctx)
		_ = c.refreshDashboard(ctx)
		_ = c.refreshToday(ctx)
	case api.EventAnalytics:
		if !c.visible(ViewAnalytics) {
			c.analyticsDirty.Store(true)
			return
		}
		_ = c.RefreshAnalytics(ctx)
	case api.EventProducts:
		_ = c.refreshProducts(ctx)
	case api.EventStaff:
		_ = c.refreshStaff(ctx)
	case api.EventCalendar:
		_ = c.refreshCalendar(ctx)
		_ = c.refreshHolidays(ctx)
	case api.EventPresence:
		c.stores.SetRoster(presence.NewRoster(ev.OnlineIDs))
	default:
		c.log.Debug("unknown event kind", "kind", ev.Kind, "seq", ev.Seq)
	}
}

// ViewOpened tells the coordinator a view just came on screen. A deferred
// analytics push is settled here.
func (c *Coordinator) ViewOpened(ctx context.Context, v View) {
	if v != ViewAnalytics {
		return
	}
	if c.analyticsDirty.Swap(false) || !c.stores.Analytics.Snapshot().HasData {
		_ = c.RefreshAnalytics(ctx)
	}
}

// RefreshAnalytics refetches the full analytics bundle.
func (c *Coordinator) RefreshAnalytics(ctx context.Context) error {
	seq := c.stores.Analytics.Begin()
	data, err := c.fetcher.FetchAnalytics(ctx)
	if err != nil {
		c.stores.Analytics.Fail(seq, err)
		c.log.Warn("analytics refresh failed", "error", err)
		return fmt.Errorf("refresh analytics: %w", err)
	}
	c.stores.Analytics.Apply(seq, data)
	return nil
}

// RefreshStaff refetches the staff roster with the current query. Exposed
// so the UI can re-query on search or filter changes without waiting for a
// push.
func (c *Coordinator) RefreshStaff(ctx context.Context) error {
	return c.refreshStaff(ctx)
}

// RefreshAppointments refetches appointments on demand, after a local
// mutation whose push may race the response.
func (c *Coordinator) RefreshAppointments(ctx context.Context) error {
	return c.refreshAppointments(ctx)
}

// RefreshProducts refetches products on demand.
func (c *Coordinator) RefreshProducts(ctx context.Context) error {
	return c.refreshProducts(ctx)
}

// RefreshCalendar refetches calendar events and holidays on demand.
func (c *Coordinator) RefreshCalendar(ctx context.Context) error {
	if err := c.refreshCalendar(ctx); err != nil {
		return err
	}
	return c.refreshHolidays(ctx)
}

func (c *Coordinator) refreshAppointments(ctx context.Context) error {
	seq := c.stores.Appointments.Begin()
	data, err := c.fetcher.FetchAppointments(ctx)
	if err != nil {
		c.stores.Appointments.Fail(seq, err)
		c.log.Warn("appointment refresh failed", "error", err)
		return fmt.Errorf("refresh appointments: %w", err)
	}
	if c.stores.Appointments.Apply(seq, data) {
		c.stores.RecomputeConflicts()
	}
	return nil
}

func (c *Coordinator) refreshProducts(ctx context.Context) error {
	seq := c.stores.Products.Begin()
	data, err := c.fetcher.FetchProducts(ctx)
	if err != nil {
		c.stores.Products.Fail(seq, err)
		c.log.Warn("product refresh failed", "error", err)
		return fmt.Errorf("refresh products: %w", err)
	}
	c.stores.Products.Apply(seq, data)
	return nil
}

func (c *Coordinator) refreshStaff(ctx context.Context) error {
	seq := c.stores.Staff.Begin()
	data, err := c.fetcher.FetchStaff(ctx, c.currentStaffQuery())
	if err != nil {
		c.stores.Staff.Fail(seq, err)
		c.log.Warn("staff refresh failed", "error", err)
		return fmt.Errorf("refresh staff: %w", err)
	}
	c.stores.Staff.Apply(seq, data)
	return nil
}

func (c *Coordinator) refreshCalendar(ctx context.Context) error {
	seq := c.stores.Calendar.Begin()
	data, err := c.fetcher.FetchCalendarEvents(ctx)
	if err != nil {
		c.stores.Calendar.Fail(seq, err)
		c.log.Warn("calendar refresh failed", "error", err)
		return fmt.Errorf("refresh calendar: %w", err)
	}
	c.stores.Calendar.Apply(seq, data)
	return nil
}

func (c *Coordinator) refreshHolidays(ctx context.Context) error {
	seq := c.stores.Holidays.Begin()
	data, err := c.fetcher.FetchHolidays(ctx)
	if err != nil {
		c.stores.Holidays.Fail(seq, err)
		c.log.Warn("holiday refresh failed", "error", err)
		return fmt.Errorf("refresh holidays: %w", err)
	}
	c.stores.Holidays.Apply(seq, data)
	return nil
}

func (c *Coordinator) refreshDashboard(ctx context.Context) error {
	seq := c.stores.Dashboard.Begin()
	data, err := c.fetcher.FetchDashboardStats(ctx)
	if err != nil {
		c.stores.Dashboard.Fail(seq, err)
		c.log.Warn("dashboard stats refresh failed", "error", err)
		return fmt.Errorf("refresh dashboard stats: %w", err)
	}
	c.stores.Dashboard.Apply(seq, data)
	return nil
}

func (c *Coordinator) refreshToday(ctx context.Context) error {
	seq := c.stores.Today.Begin()
	data, err := c.fetcher.FetchTodayStats(ctx)
	if err != nil {
		c.stores.Today.Fail(seq, err)
		c.log.Warn("today stats refresh failed", "error", err)
		return fmt.Errorf("refresh today stats: %w", err)
	}
	c.stores.Today.Apply(seq, data)
	return nil
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
