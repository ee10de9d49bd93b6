package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/presence"
)

func TestStore_ApplyAndSnapshotClone(t *testing.T) {
	s := NewStore(cloneSlice[api.Appointment])

	before := time.Now()
	seq := s.Begin()
	if !s.Apply(seq, []api.Appointment{{ID: 1}, {ID: 2}}) {
		t.Fatalf("Apply(%d) = false, want true", seq)
	}

	snap := s.Snapshot()
	if !snap.HasData || len(snap.Data) != 2 {
		t.Fatalf("snapshot = %#v, want 2 items", snap)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Data[0].ID = 999
	snap2 := s.Snapshot()
	if snap2.Data[0].ID != 1 {
		t.Fatalf("Snapshot should clone data; got id %d want 1", snap2.Data[0].ID)
	}
}

func TestStore_StaleApplyRejected(t *testing.T) {
	s := NewStore(cloneSlice[api.Appointment])

	first := s.Begin()
	second := s.Begin()

	// The later fetch lands first.
	if !s.Apply(second, []api.Appointment{{ID: 2}}) {
		t.Fatalf("Apply(second) = false, want true")
	}
	// The earlier fetch's response arrives afterwards and must not win.
	if s.Apply(first, []api.Appointment{{ID: 1}}) {
		t.Fatalf("Apply(first) = true, want false for stale sequence")
	}

	snap := s.Snapshot()
	if len(snap.Data) != 1 || snap.Data[0].ID != 2 {
		t.Fatalf("snapshot = %#v, want data from the newer fetch", snap.Data)
	}
}

func TestStore_StaleFailDropped(t *testing.T) {
	s := NewStore(cloneSlice[api.Appointment])

	first := s.Begin()
	second := s.Begin()

	if !s.Apply(second, []api.Appointment{{ID: 2}}) {
		t.Fatalf("Apply(second) = false, want true")
	}
	s.Fail(first, errors.New("slow request timed out"))

	snap := s.Snapshot()
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("snapshot = %#v, want stale failure ignored", snap)
	}
}

func TestStore_FailKeepsPreviousData(t *testing.T) {
	s := NewStore(cloneSlice[api.Appointment])

	s.Apply(s.Begin(), []api.Appointment{{ID: 1}})

	origErr := errors.New("boom")
	s.Fail(s.Begin(), origErr)

	snap := s.Snapshot()
	if !snap.HasData || len(snap.Data) != 1 || snap.Data[0].ID != 1 {
		t.Fatalf("data changed on failure: %#v", snap.Data)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_FailureStreakAndStaleness(t *testing.T) {
	s := NewStore[*api.TodayStats](nil)

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsStale() {
		t.Fatalf("fresh store reports stale: %#v", snap)
	}

	s.Fail(s.Begin(), errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsStale() {
		t.Fatalf("after 1 failure: %#v", snap)
	}

	s.Fail(s.Begin(), errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsStale() {
		t.Fatalf("after 2 failures: %#v", snap)
	}

	s.Apply(s.Begin(), &api.TodayStats{TotalBooked: 4})
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsStale() {
		t.Fatalf("after recovery: %#v", snap)
	}
	if snap.Data == nil || snap.Data.TotalBooked != 4 {
		t.Fatalf("data after recovery = %#v, want TotalBooked=4", snap.Data)
	}
}

func TestStores_RecomputeConflicts(t *testing.T) {
	stores := NewStores()

	stores.Appointments.Apply(stores.Appointments.Begin(), []api.Appointment{
		{ID: 1, Date: "2024-06-01", Time: "10:00", Status: "Pending"},
		{ID: 2, Date: "2024-06-01", Time: "10:15", Status: "Pending"},
		{ID: 3, Date: "2024-06-01", Time: "11:00", Status: "Pending"},
	})
	stores.RecomputeConflicts()

	if !stores.Conflicted(1) || !stores.Conflicted(2) || stores.Conflicted(3) {
		t.Fatalf("conflict set wrong: want ids 1 and 2 only")
	}
	if got := stores.ConflictCount(); got != 2 {
		t.Fatalf("ConflictCount = %d, want 2", got)
	}

	// Approving one side clears the pair.
	stores.Appointments.Apply(stores.Appointments.Begin(), []api.Appointment{
		{ID: 1, Date: "2024-06-01", Time: "10:00", Status: "Approved"},
		{ID: 2, Date: "2024-06-01", Time: "10:15", Status: "Pending"},
		{ID: 3, Date: "2024-06-01", Time: "11:00", Status: "Pending"},
	})
	stores.RecomputeConflicts()

	if stores.Conflicted(1) || stores.Conflicted(2) {
		t.Fatalf("conflict set should clear after approval")
	}
}

func TestStores_RosterReplacement(t *testing.T) {
	stores := NewStores()

	stores.SetRoster(presence.NewRoster([]int64{5, 9}))
	if !stores.Roster().Contains(5) {
		t.Fatalf("roster missing id 5")
	}

	stores.SetRoster(presence.NewRoster([]int64{9}))
	if stores.Roster().Contains(5) || !stores.Roster().Contains(9) {
		t.Fatalf("roster not replaced wholesale")
	}
}

func TestStores_RosterReadsAreCopies(t *testing.T) {
	stores := NewStores()
	stores.SetRoster(presence.NewRoster([]int64{5, 9}))

	got := stores.Roster()
	delete(got, 5)
	got[11] = struct{}{}

	if !stores.Roster().Contains(5) || stores.Roster().Contains(11) {
		t.Fatalf("mutating a returned roster leaked into the stores")
	}
}
