package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/presence"
	"github.com/pawfessional/pawdesk/internal/schedule"
)

// Snapshot is an immutable view of one store at a point in time.
type Snapshot[T any] struct {
	Data                T
	HasData             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsStale returns true when refreshes have failed repeatedly and the data
// shown may no longer reflect the server.
func (s Snapshot[T]) IsStale() bool {
	return s.ConsecutiveFailures >= 2
}

// Store holds the latest fetched value of one resource. It hands out a
// monotonic fetch sequence so that responses landing out of order cannot
// overwrite newer data: callers take a sequence with Begin before fetching
// and present it back with Apply or Fail.
type Store[T any] struct {
	mu       sync.RWMutex
	seq      uint64
	applied  uint64
	snapshot Snapshot[T]
	clone    func(T) T
}

// NewStore builds a Store. The clone function guards shared references in T
// when snapshots are handed out; pass nil for value types copied by
// assignment.
func NewStore[T any](clone func(T) T) *Store[T] {
	return &Store[T]{clone: clone}
}

// Begin reserves the next fetch sequence. Every refresh attempt takes its
// own sequence before issuing the request.
func (s *Store[T]) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Apply installs freshly fetched data. It reports false, leaving the store
// untouched, when a later fetch already applied: the late response is the
// stale one, whatever order the requests went out in.
func (s *Store[T]) Apply(seq uint64, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		return false
	}
	s.applied = seq
	if s.clone != nil {
		data = s.clone(data)
	}
	s.snapshot.Data = data
	s.snapshot.HasData = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	return true
}

// Fail records a refresh failure. Previous data is kept for display; the
// error and failure streak are surfaced alongside it. A failure that lost
// the race to a newer Apply is dropped entirely.
func (s *Store[T]) Fail(seq uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.applied {
		return
	}
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.clone != nil {
		snap.Data = s.clone(s.snapshot.Data)
	}
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// cloneSlice copies a slice of value-type elements.
func cloneSlice[E any](items []E) []E {
	if len(items) == 0 {
		return nil
	}
	dup := make([]E, len(items))
	copy(dup, items)
	return dup
}

// Stores bundles every resource the dashboard displays.
type Stores struct {
	Appointments *Store[[]api.Appointment]
	Products     *Store[[]api.Product]
	Staff        *Store[[]api.Staff]
	Calendar     *Store[[]api.CalendarEvent]
	Holidays     *Store[[]api.Holiday]
	Dashboard    *Store[*api.DashboardStats]
	Today        *Store[*api.TodayStats]
	Analytics    *Store[*api.Analytics]

	mu        sync.RWMutex
	conflicts map[int64]bool
	roster    presence.Roster
}

// NewStores builds the full store bundle.
func NewStores() *Stores {
	return &Stores{
		Appointments: NewStore(cloneSlice[api.Appointment]),
		Products:     NewStore(cloneSlice[api.Product]),
		Staff:        NewStore(cloneSlice[api.Staff]),
		Calendar:     NewStore(cloneSlice[api.CalendarEvent]),
		Holidays:     NewStore(cloneSlice[api.Holiday]),
		Dashboard:    NewStore[*api.DashboardStats](nil),
		Today:        NewStore[*api.TodayStats](nil),
		Analytics:    NewStore[*api.Analytics](nil),
		conflicts:    make(map[int64]bool),
		roster:       presence.Roster{},
	}
}

// RecomputeConflicts rebuilds the conflict set from the current appointment
// snapshot. Called after every appointment apply.
func (s *Stores) RecomputeConflicts() {
	snap := s.Appointments.Snapshot()
	set := schedule.Conflicted(snap.Data)

	s.mu.Lock()
	s.conflicts = set
	s.mu.Unlock()
}

// Conflicted reports whether the appointment id is in the current conflict
// set.
func (s *Stores) Conflicted(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conflicts[id]
}

// ConflictCount returns the size of the current conflict set.
func (s *Stores) ConflictCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conflicts)
}

// SetRoster replaces the online-staff roster from a presence push.
func (s *Stores) SetRoster(r presence.Roster) {
	s.mu.Lock()
	s.roster = r
	s.mu.Unlock()
}

// Roster returns an independent copy of the latest online-staff roster.
func (s *Stores) Roster() presence.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Clone()
}
