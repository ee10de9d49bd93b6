package ui

import (
	"strings"

	"github.com/pawfessional/pawdesk/internal/api"
)

// petFilter narrows the product table by target species.
type petFilter int

const (
	petAll petFilter = iota
	petDogs
	petCats
)

func (f petFilter) label() string {
	switch f {
	case petDogs:
		return "Dogs"
	case petCats:
		return "Cats"
	default:
		return "All"
	}
}

func (f petFilter) cycle() petFilter {
	return (f + 1) % 3
}

// matchesPetFilter reports whether a product's pet type passes the filter.
// "Dog and Cat" products match both species filters.
func matchesPetFilter(p api.Product, f petFilter) bool {
	pet := strings.ToLower(p.PetType)
	switch f {
	case petDogs:
		return strings.Contains(pet, "dog")
	case petCats:
		return strings.Contains(pet, "cat")
	default:
		return true
	}
}

// filterProducts applies the search text (name or brand substring,
// case-insensitive) and the pet filter.
func filterProducts(products []api.Product, search string, f petFilter) []api.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []api.Product
	for _, p := range products {
		if !matchesPetFilter(p, f) {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Brand), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// pendingAppointments returns the rows for the appointments table.
func pendingAppointments(appts []api.Appointment) []api.Appointment {
	var out []api.Appointment
	for _, a := range appts {
		if a.IsPending() {
			out = append(out, a)
		}
	}
	return out
}

// visitLogs returns the non-pending rows for the visit log table, i.e.
// appointments that already have an outcome.
func visitLogs(appts []api.Appointment) []api.Appointment {
	var out []api.Appointment
	for _, a := range appts {
		if !a.IsPending() {
			out = append(out, a)
		}
	}
	return out
}

// statusDistribution counts appointments per canonical status. Unknown
// statuses fold into Cancelled through CanonicalStatus.
func statusDistribution(appts []api.Appointment) map[api.Status]int {
	counts := make(map[api.Status]int)
	for _, a := range appts {
		counts[api.CanonicalStatus(a.Status)]++
	}
	return counts
}

// holidaysInMonth returns the holidays whose start date falls in the given
// year and month.
func holidaysInMonth(holidays []api.Holiday, year int, month int) []api.Holiday {
	var out []api.Holiday
	for _, h := range holidays {
		t := api.ParsedDate(h.Start)
		if t.IsZero() {
			continue
		}
		if t.Year() == year && int(t.Month()) == month {
			out = append(out, h)
		}
	}
	return out
}
