// Package presence tracks which staff members are online right now.
//
// Online state is transient and lives only in the presence push: the server
// sends the complete set of online staff ids on every change, and each push
// replaces the previous set wholesale. A staff member shows as online only
// when their database status is active and their id appears in the latest
// push. Deactivated accounts never show as online, whatever the push says.
package presence

import "github.com/pawfessional/pawdesk/internal/api"

// Roster is the set of staff ids from the most recent presence push.
type Roster map[int64]struct{}

// NewRoster builds a Roster from a pushed id list. The list is the complete
// online set, so the previous roster is discarded, not merged.
func NewRoster(ids []int64) Roster {
	r := make(Roster, len(ids))
	for _, id := range ids {
		r[id] = struct{}{}
	}
	return r
}

// Clone returns an independent copy of the roster.
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	for id := range r {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports whether the id is in the roster.
func (r Roster) Contains(id int64) bool {
	_, ok := r[id]
	return ok
}

// Online reports whether the staff member should display as online.
func Online(s api.Staff, roster Roster) bool {
	return s.Status == "active" && roster.Contains(s.ID)
}

// CountOnline returns how many of the given staff display as online.
func CountOnline(staff []api.Staff, roster Roster) int {
	n := 0
	for _, s := range staff {
		if Online(s, roster) {
			n++
		}
	}
	return n
}
