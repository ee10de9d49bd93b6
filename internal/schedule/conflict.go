// Package schedule derives booking-conflict state from the appointment list.
package schedule

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pawfessional/pawdesk/internal/api"
)

// SlotMinutes is the fixed appointment duration. The clinic books in
// half-hour slots; the server does not send per-appointment durations.
const SlotMinutes = 30

// Detect returns the ids of pending appointments that overlap another
// pending appointment on the same calendar day. Ids appear once each, in
// the order the overlaps are discovered within each day's time-sorted
// list, days in ascending date order.
//
// Only pending appointments participate. Approving or completing one side
// of an overlap resolves the conflict.
func Detect(appts []api.Appointment) []int64 {
	byDay := make(map[string][]api.Appointment)
	for _, a := range appts {
		if !a.IsPending() {
			continue
		}
		if _, ok := parseMinutes(a.Time); !ok {
			continue
		}
		byDay[a.DateKey()] = append(byDay[a.DateKey()], a)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	var ordered []int64
	seen := make(map[int64]struct{})
	add := func(id int64) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		ordered = append(ordered, id)
	}

	type slot struct {
		id    int64
		start int
	}
	for _, day := range days {
		group := make([]slot, 0, len(byDay[day]))
		for _, a := range byDay[day] {
			start, _ := parseMinutes(a.Time)
			group = append(group, slot{id: a.ID, start: start})
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].start < group[j].start
		})
		for i, a := range group {
			end := a.start + SlotMinutes
			for _, b := range group[i+1:] {
				if b.start >= end {
					break
				}
				add(a.id)
				add(b.id)
			}
		}
	}
	return ordered
}

// Conflicted builds a membership set from Detect's output for O(1) row
// highlighting.
func Conflicted(appts []api.Appointment) map[int64]bool {
	set := make(map[int64]bool)
	for _, id := range Detect(appts) {
		set[id] = true
	}
	return set
}

// parseMinutes converts an "HH:MM" or "HH:MM:SS" clock string to minutes
// past midnight. Appointments without a usable time are skipped rather
// than flagged.
func parseMinutes(clock string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return hours*60 + minutes, true
}
