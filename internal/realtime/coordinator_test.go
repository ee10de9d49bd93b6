package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/state"
)

// fakeFetcher serves canned data and counts calls per resource.
type fakeFetcher struct {
	appointments []api.Appointment
	apptErr      error

	calls map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int)}
}

func (f *fakeFetcher) FetchAppointments(ctx context.Context) ([]api.Appointment, error) {
	f.calls["appointments"]++
	return f.appointments, f.apptErr
}

func (f *fakeFetcher) FetchProducts(ctx context.Context) ([]api.Product, error) {
	f.calls["products"]++
	return []api.Product{{ID: 1, Name: "Kibble"}}, nil
}

func (f *fakeFetcher) FetchStaff(ctx context.Context, q api.StaffQuery) ([]api.Staff, error) {
	f.calls["staff"]++
	return []api.Staff{{ID: 5, Status: "active"}}, nil
}

func (f *fakeFetcher) FetchCalendarEvents(ctx context.Context) ([]api.CalendarEvent, error) {
	f.calls["calendar"]++
	return nil, nil
}

func (f *fakeFetcher) FetchHolidays(ctx context.Context) ([]api.Holiday, error) {
	f.calls["holidays"]++
	return nil, nil
}

func (f *fakeFetcher) FetchDashboardStats(ctx context.Context) (*api.DashboardStats, error) {
	f.calls["dashboard"]++
	return &api.DashboardStats{TotalPets: 3}, nil
}

func (f *fakeFetcher) FetchTodayStats(ctx context.Context) (*api.TodayStats, error) {
	f.calls["today"]++
	return &api.TodayStats{TotalBooked: 2}, nil
}

func (f *fakeFetcher) FetchAnalytics(ctx context.Context) (*api.Analytics, error) {
	f.calls["analytics"]++
	return &api.Analytics{Today: api.TodayStats{TotalBooked: 2}}, nil
}

// fakeEvents scripts poll batches; once exhausted it blocks until the
// context ends.
type fakeEvents struct {
	batches   []api.EventBatch
	announced []api.OnlineAnnouncement
}

func (f *fakeEvents) PollEvents(ctx context.Context, q api.EventQuery) (api.EventBatch, error) {
	if len(f.batches) == 0 {
		<-ctx.Done()
		return api.EventBatch{}, ctx.Err()
	}
	b := f.batches[0]
	f.batches = f.batches[1:]
	return b, nil
}

func (f *fakeEvents) AnnounceOnline(ctx context.Context, ann api.OnlineAnnouncement) error {
	f.announced = append(f.announced, ann)
	return nil
}

func newCoordinator(t *testing.T, f *fakeFetcher, ev *fakeEvents, opts Options) *Coordinator {
	t.Helper()
	opts.Fetcher = f
	opts.Events = ev
	if opts.Stores == nil {
		opts.Stores = state.NewStores()
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return c
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("New accepted empty options, want error")
	}
}

func TestInitialLoad_PopulatesStoresExceptAnalytics(t *testing.T) {
	f := newFakeFetcher()
	f.appointments = []api.Appointment{
		{ID: 1, Date: "2024-06-01", Time: "10:00", Status: "Pending"},
		{ID: 2, Date: "2024-06-01", Time: "10:15", Status: "Pending"},
	}
	stores := state.NewStores()
	c := newCoordinator(t, f, &fakeEvents{}, Options{Stores: stores})

	if err := c.InitialLoad(context.Background()); err != nil {
		t.Fatalf("InitialLoad returned error: %v", err)
	}

	if !stores.Appointments.Snapshot().HasData {
		t.Fatalf("appointments store empty after initial load")
	}
	if !stores.Products.Snapshot().HasData || !stores.Staff.Snapshot().HasData {
		t.Fatalf("products or staff store empty after initial load")
	}
	if !stores.Dashboard.Snapshot().HasData || !stores.Today.Snapshot().HasData {
		t.Fatalf("stat stores empty after initial load")
	}
	if stores.Analytics.Snapshot().HasData {
		t.Fatalf("analytics loaded eagerly, want lazy")
	}
	if !stores.Conflicted(1) || !stores.Conflicted(2) {
		t.Fatalf("conflict set not derived during initial load")
	}
}

func TestInitialLoad_PartialFailureKeepsRest(t *testing.T) {
	f := newFakeFetcher()
	f.apptErr = errors.New("appointments endpoint down")
	stores := state.NewStores()
	c := newCoordinator(t, f, &fakeEvents{}, Options{Stores: stores})

	err := c.InitialLoad(context.Background())
	if err == nil {
		t.Fatalf("InitialLoad returned nil, want joined error")
	}
	if stores.Appointments.Snapshot().LastError == nil {
		t.Fatalf("appointment store missing failure record")
	}
	if !stores.Products.Snapshot().HasData {
		t.Fatalf("product store empty; one failing endpoint must not block others")
	}
}

func TestHandle_AppointmentPushCascades(t *testing.T) {
	f := newFakeFetcher()
	f.appointments = []api.Appointment{
		{ID: 1, Date: "2024-06-01", Time: "10:00", Status: "Pending"},
		{ID: 2, Date: "2024-06-01", Time: "10:29", Status: "Pending"},
	}
	stores := state.NewStores()
	c := newCoordinator(t, f, &fakeEvents{}, Options{Stores: stores})

	c.handle(context.Background(), api.Event{Kind: api.EventAppointments})

	if f.calls["appointments"] != 1 || f.calls["dashboard"] != 1 || f.calls["today"] != 1 {
		t.Fatalf("calls = %v, want appointments, dashboard, and today each fetched once", f.calls)
	}
	if !stores.Conflicted(1) || !stores.Conflicted(2) {
		t.Fatalf("conflicts not recomputed after appointment push")
	}

	// A second push with statuses resolved clears the conflict pair.
	f.appointments[0].Status = "Approved"
	c.handle(context.Background(), api.Event{Kind: api.EventAppointments})
	if stores.Conflicted(1) || stores.Conflicted(2) {
		t.Fatalf("conflicts survived status change")
	}
}

func TestHandle_AppointmentFetchFailureStillRefreshesStats(t *testing.T) {
	f := newFakeFetcher()
	f.apptErr = errors.New("boom")
	stores := state.NewStores()
	c := newCoordinator(t, f, &fakeEvents{}, Options{Stores: stores})

	c.handle(context.Background(), api.Event{Kind: api.EventAppointments})

	if f.calls["dashboard"] != 1 || f.calls["today"] != 1 {
		t.Fatalf("calls = %v, want counters refetched despite appointment failure", f.calls)
	}
	if stores.Appointments.Snapshot().LastError == nil {
		t.Fatalf("appointment store carries no error after failed refresh")
	}
	if !stores.Dashboard.Snapshot().HasData {
		t.Fatalf("dashboard store empty after independent refresh")
	}
}

func TestHandle_AnalyticsDeferredUntilVisible(t *testing.T) {
	f := newFakeFetcher()
	stores := state.NewStores()
	visible := false
	c := newCoordinator(t, f, &fakeEvents{}, Options{
		Stores:  stores,
		Visible: func(v View) bool { return visible },
	})

	c.handle(context.Background(), api.Event{Kind: api.EventAnalytics})
	if f.calls["analytics"] != 0 {
		t.Fatalf("analytics fetched while view hidden")
	}

	// Opening the view settles the deferred push.
	visible = true
	c.ViewOpened(context.Background(), ViewAnalytics)
	if f.calls["analytics"] != 1 {
		t.Fatalf("analytics calls = %d, want 1 after view opened", f.calls["analytics"])
	}
	if !stores.Analytics.Snapshot().HasData {
		t.Fatalf("analytics store empty after deferred refresh")
	}

	// No push pending and data present: reopening does not refetch.
	c.ViewOpened(context.Background(), ViewAnalytics)
	if f.calls["analytics"] != 1 {
		t.Fatalf("analytics calls = %d, want no refetch without a push", f.calls["analytics"])
	}
}

func TestHandle_AnalyticsFetchedWhenVisible(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f, &fakeEvents{}, Options{})

	c.handle(context.Background(), api.Event{Kind: api.EventAnalytics})
	if f.calls["analytics"] != 1 {
		t.Fatalf("analytics calls = %d, want 1 with default visibility", f.calls["analytics"])
	}
}

func TestHandle_PresenceReplacesRosterWithoutFetch(t *testing.T) {
	f := newFakeFetcher()
	stores := state.NewStores()
	c := newCoordinator(t, f, &fakeEvents{}, Options{Stores: stores})

	c.handle(context.Background(), api.Event{Kind: api.EventPresence, OnlineIDs: []int64{5, 9}})
	if !stores.Roster().Contains(5) || !stores.Roster().Contains(9) {
		t.Fatalf("roster not installed from presence push")
	}

	c.handle(context.Background(), api.Event{Kind: api.EventPresence, OnlineIDs: []int64{9}})
	if stores.Roster().Contains(5) {
		t.Fatalf("roster merged instead of replaced")
	}
	if len(f.calls) != 0 {
		t.Fatalf("calls = %v, want presence handled without any fetch", f.calls)
	}
}

func TestHandle_StaffPushUsesCurrentQuery(t *testing.T) {
	f := newFakeFetcher()
	c := newCoordinator(t, f, &fakeEvents{}, Options{})

	c.SetStaffQuery(api.StaffQuery{Search: "dana", Status: "all"})
	c.handle(context.Background(), api.Event{Kind: api.EventStaff})
	if f.calls["staff"] != 1 {
		t.Fatalf("staff calls = %d, want 1", f.calls["staff"])
	}
}

func TestDrain_CollapsesDuplicateKinds(t *testing.T) {
	c := newCoordinator(t, newFakeFetcher(), &fakeEvents{}, Options{Policy: Coalesce})

	c.notes <- api.Event{Seq: 2, Kind: api.EventProducts}
	c.notes <- api.Event{Seq: 3, Kind: api.EventAppointments}
	c.notes <- api.Event{Seq: 4, Kind: api.EventPresence, OnlineIDs: []int64{1}}
	c.notes <- api.Event{Seq: 5, Kind: api.EventPresence, OnlineIDs: []int64{1, 2}}

	got := c.drain(api.Event{Seq: 1, Kind: api.EventAppointments})

	if len(got) != 3 {
		t.Fatalf("drain = %#v, want 3 collapsed events", got)
	}
	if got[0].Kind != api.EventAppointments || got[0].Seq != 3 {
		t.Fatalf("first = %#v, want latest appointment event in first-arrival position", got[0])
	}
	if got[1].Kind != api.EventProducts {
		t.Fatalf("second = %#v, want products", got[1])
	}
	if got[2].Kind != api.EventPresence || len(got[2].OnlineIDs) != 2 {
		t.Fatalf("third = %#v, want last presence payload", got[2])
	}
}

func TestRun_DispatchesScriptedBatches(t *testing.T) {
	f := newFakeFetcher()
	f.appointments = []api.Appointment{{ID: 1, Date: "2024-06-01", Time: "10:00", Status: "Pending"}}
	stores := state.NewStores()
	ev := &fakeEvents{batches: []api.EventBatch{
		{Events: []api.Event{
			{Seq: 1, Kind: api.EventAppointments},
			{Seq: 2, Kind: api.EventPresence, OnlineIDs: []int64{5}},
		}, Next: 3},
	}}
	c := newCoordinator(t, f, ev, Options{Stores: stores, StaffID: 5})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for !stores.Appointments.Snapshot().HasData || !stores.Roster().Contains(5) {
		select {
		case <-deadline:
			t.Fatalf("stores not updated from scripted batch")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop on context cancellation")
	}

	if len(ev.announced) != 1 || ev.announced[0].StaffID != 5 {
		t.Fatalf("announced = %#v, want one announcement for staff 5", ev.announced)
	}
	if ev.announced[0].SessionID != c.SessionID() {
		t.Fatalf("announcement session id mismatch")
	}
}

func TestCalculateBackoff(t *testing.T) {
	base := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second},
		{"many failures capped", 10, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := calculateBackoff(tt.failures, base); got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, base, got, tt.want)
			}
		})
	}
}
