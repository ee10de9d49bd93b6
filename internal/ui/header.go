package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pawfessional/pawdesk/internal/presence"
)

// renderHeader paints the two-line status header: identity and connection
// state on top, live counts below.
func (vm *viewModel) renderHeader() {
	t := vm.theme
	stores := vm.options.Stores

	appts := stores.Appointments.Snapshot()
	staff := stores.Staff.Snapshot()

	var b strings.Builder

	b.WriteString(fmt.Sprintf(" [%s::b]pawdesk[-::-]", t.Accent))
	if name := vm.options.Config.StaffName; name != "" {
		b.WriteString(fmt.Sprintf("  [%s]%s[-]", t.Text, formatClientName(name)))
		if role := vm.options.Config.StaffRole; role != "" {
			b.WriteString(fmt.Sprintf(" [%s](%s)[-]", t.Muted, role))
		}
	}

	switch {
	case !appts.HasData && appts.LastError != nil:
		b.WriteString(fmt.Sprintf("  [%s::b]server unreachable[-::-]", t.Danger))
	case appts.IsStale():
		b.WriteString(fmt.Sprintf("  [%s::b]connection lost, showing last data[-::-]", t.Warning))
	case !appts.HasData:
		b.WriteString(fmt.Sprintf("  [%s]waiting for server...[-]", t.Muted))
	default:
		b.WriteString(fmt.Sprintf("  [%s]connected[-]", t.Success))
	}

	if !appts.LastUpdated.IsZero() {
		b.WriteString(fmt.Sprintf("  [%s]synced %s ago[-]", t.Muted, humanizeDuration(time.Since(appts.LastUpdated))))
	}

	b.WriteString("\n ")

	pending := len(pendingAppointments(appts.Data))
	b.WriteString(fmt.Sprintf("[%s]%d pending[-]", t.Warning, pending))

	if n := stores.ConflictCount(); n > 0 {
		b.WriteString(fmt.Sprintf("  [%s::b]%d in conflict[-::-]", t.Danger, n))
	} else {
		b.WriteString(fmt.Sprintf("  [%s]no conflicts[-]", t.Muted))
	}

	if staff.HasData {
		online := presence.CountOnline(staff.Data, stores.Roster())
		b.WriteString(fmt.Sprintf("  [%s]%d staff online[-]", t.Info, online))
	}

	vm.header.SetText(b.String())
}
