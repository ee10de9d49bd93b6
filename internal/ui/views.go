package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/logtail"
	"github.com/pawfessional/pawdesk/internal/presence"
)

const diagnosticsTailLines = 400

func (vm *viewModel) renderDashboard() {
	t := vm.theme
	stores := vm.options.Stores

	dash := stores.Dashboard.Snapshot()
	today := stores.Today.Snapshot()
	appts := stores.Appointments.Snapshot()

	var b strings.Builder
	b.WriteString("\n")

	if dash.HasData && dash.Data != nil {
		d := dash.Data
		b.WriteString(fmt.Sprintf(" [%s]Pets[-] %d   [%s]Clients[-] %d   [%s]Staff[-] %d   [%s]Products[-] %d   [%s]Appointments today[-] %d\n\n",
			t.Muted, d.TotalPets, t.Muted, d.TotalUsers, t.Muted, d.TotalStaff, t.Muted, d.TotalProducts, t.Muted, d.AppointmentsToday))
	} else {
		b.WriteString(fmt.Sprintf(" [%s]no dashboard data yet[-]\n\n", t.Muted))
	}

	if today.HasData && today.Data != nil {
		b.WriteString(fmt.Sprintf(" [::b]Today[::-]   [%s]booked[-] %d   [%s]approved[-] %d   [%s]completed[-] %d\n\n",
			t.Warning, today.Data.TotalBooked, t.Success, today.Data.Approved, t.Info, today.Data.Completed))
	}

	if appts.HasData {
		dist := statusDistribution(appts.Data)
		b.WriteString(" [::b]All appointments[::-]  ")
		for _, status := range []api.Status{api.StatusPending, api.StatusApproved, api.StatusCompleted, api.StatusCancelled, api.StatusNoShow} {
			if n := dist[status]; n > 0 {
				b.WriteString(fmt.Sprintf("[%s]%s[-] %d   ", t.statusColor(string(status)), status, n))
			}
		}
		b.WriteString("\n\n")
	}

	if n := stores.ConflictCount(); n > 0 {
		b.WriteString(fmt.Sprintf(" [%s::b]%d appointments need rescheduling[-::-], see the conflicts pane (key 2)\n", t.Danger, n))
	}

	vm.dashboardView.SetText(b.String())
}

func (vm *viewModel) renderAppointments() {
	t := vm.theme
	stores := vm.options.Stores
	snap := stores.Appointments.Snapshot()
	vm.pendingRows = pendingAppointments(snap.Data)

	table := vm.apptTable
	row, _ := table.GetSelection()
	table.Clear()

	headers := []string{"Client", "Pet", "Services", "Date", "Time", ""}
	for col, h := range headers {
		cell := tview.NewTableCell("[::b]" + h).SetSelectable(false).SetExpansion(1)
		table.SetCell(0, col, cell)
	}

	for i, a := range vm.pendingRows {
		color := t.Text
		flag := ""
		if stores.Conflicted(a.ID) {
			color = t.Danger
			flag = "[" + t.Danger + "::b]CONFLICT[-::-]"
		}
		table.SetCell(i+1, 0, tview.NewTableCell(fmt.Sprintf("[%s]%s", color, formatClientName(a.ClientName))).SetExpansion(1))
		table.SetCell(i+1, 1, tview.NewTableCell(fmt.Sprintf("[%s]%s", color, a.PetName)).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(fmt.Sprintf("[%s]%s", color, truncate(formatServices(a.Services), 30))).SetExpansion(2))
		table.SetCell(i+1, 3, tview.NewTableCell(fmt.Sprintf("[%s]%s", color, formatDate(a.Date))).SetExpansion(1))
		table.SetCell(i+1, 4, tview.NewTableCell(fmt.Sprintf("[%s]%s", color, formatClock(a.Time))).SetExpansion(1))
		table.SetCell(i+1, 5, tview.NewTableCell(flag).SetExpansion(1))
	}

	if row >= table.GetRowCount() {
		row = table.GetRowCount() - 1
	}
	if row < 1 {
		row = 1
	}
	if table.GetRowCount() > 1 {
		table.Select(row, 0)
	}

	vm.renderConflictPane(snap.Data)
}

func (vm *viewModel) renderConflictPane(appts []api.Appointment) {
	t := vm.theme
	stores := vm.options.Stores

	var conflicted []api.Appointment
	for _, a := range appts {
		if stores.Conflicted(a.ID) {
			conflicted = append(conflicted, a)
		}
	}

	var b strings.Builder
	if len(conflicted) == 0 {
		b.WriteString(fmt.Sprintf("[%s]no overlapping pending appointments[-]\n", t.Success))
	} else {
		byDay := make(map[string][]api.Appointment)
		var days []string
		for _, a := range conflicted {
			key := a.DateKey()
			if _, seen := byDay[key]; !seen {
				days = append(days, key)
			}
			byDay[key] = append(byDay[key], a)
		}
		sort.Strings(days)
		for _, day := range days {
			b.WriteString(fmt.Sprintf("[%s::b]%s[-::-]\n", t.Warning, formatDate(day)))
			for _, a := range byDay[day] {
				b.WriteString(fmt.Sprintf("  [%s]%s[-] %s (%s)\n", t.Danger, formatClock(a.Time), formatClientName(a.ClientName), a.PetName))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("[%s]reschedule with R or approve one side with A[-]\n", t.Muted))
	}
	vm.conflictPane.SetText(b.String())
}

func (vm *viewModel) renderProducts() {
	t := vm.theme
	snap := vm.options.Stores.Products.Snapshot()
	vm.productRows = filterProducts(snap.Data, vm.productSearch, vm.productFilter)

	table := vm.productTable
	table.Clear()

	title := " [::b]Products[::-] "
	if vm.productSearch != "" || vm.productFilter != petAll {
		title = fmt.Sprintf(" [::b]Products[::-] [%s](%s%s)[-] ", t.Muted,
			vm.productFilter.label(), ternary(vm.productSearch != "", " / "+vm.productSearch, ""))
	}
	table.SetTitle(title)

	for col, h := range []string{"Name", "Brand", "Category", "Pet", "Price", "Stock"} {
		table.SetCell(0, col, tview.NewTableCell("[::b]"+h).SetSelectable(false).SetExpansion(1))
	}
	for i, p := range vm.productRows {
		price := fmt.Sprintf("%.2f", p.DiscountedPrice())
		if p.Discount > 0 {
			price = fmt.Sprintf("[%s]%.2f[-] [%s]-%.0f%%[-]", t.Success, p.DiscountedPrice(), t.Muted, p.Discount)
		}
		table.SetCell(i+1, 0, tview.NewTableCell(truncate(p.Name, 32)).SetExpansion(2))
		table.SetCell(i+1, 1, tview.NewTableCell(p.Brand).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(p.Category).SetExpansion(1))
		table.SetCell(i+1, 3, tview.NewTableCell(p.PetType).SetExpansion(1))
		table.SetCell(i+1, 4, tview.NewTableCell(price).SetExpansion(1))
		table.SetCell(i+1, 5, tview.NewTableCell(stockLabel(p, t)).SetExpansion(1))
	}
	if table.GetRowCount() > 1 {
		table.Select(1, 0)
	}
}

func (vm *viewModel) renderStaff() {
	t := vm.theme
	stores := vm.options.Stores
	snap := stores.Staff.Snapshot()
	roster := stores.Roster()
	vm.staffRows = snap.Data

	title := " [::b]Staff[::-] (" + vm.staffStatus + ") "
	if vm.staffSearch != "" {
		title = fmt.Sprintf(" [::b]Staff[::-] (%s, search %q) ", vm.staffStatus, vm.staffSearch)
	}
	vm.staffTable.SetTitle(title)

	table := vm.staffTable
	table.Clear()
	for col, h := range []string{"", "Name", "Role", "Contact", "Status", "Hired"} {
		table.SetCell(0, col, tview.NewTableCell("[::b]"+h).SetSelectable(false).SetExpansion(1))
	}
	for i, s := range vm.staffRows {
		dot := fmt.Sprintf("[%s]o[-]", t.Muted)
		if presence.Online(s, roster) {
			dot = fmt.Sprintf("[%s::b]*[-::-]", t.Success)
		}
		table.SetCell(i+1, 0, tview.NewTableCell(dot))
		table.SetCell(i+1, 1, tview.NewTableCell(s.Name).SetExpansion(2))
		table.SetCell(i+1, 2, tview.NewTableCell(s.Role).SetExpansion(1))
		table.SetCell(i+1, 3, tview.NewTableCell(s.Contact).SetExpansion(1))
		table.SetCell(i+1, 4, tview.NewTableCell(s.Status).SetExpansion(1))
		table.SetCell(i+1, 5, tview.NewTableCell(formatDate(s.HiredDate)).SetExpansion(1))
	}
	if table.GetRowCount() > 1 {
		table.Select(1, 0)
	}
}

func (vm *viewModel) renderCalendar() {
	t := vm.theme
	stores := vm.options.Stores
	events := stores.Calendar.Snapshot()
	holidays := stores.Holidays.Snapshot()
	vm.eventRows = events.Data

	table := vm.calendarTable
	table.Clear()
	for col, h := range []string{"Title", "Start", "End", "Pet", "Notes"} {
		table.SetCell(0, col, tview.NewTableCell("[::b]"+h).SetSelectable(false).SetExpansion(1))
	}
	for i, e := range vm.eventRows {
		table.SetCell(i+1, 0, tview.NewTableCell(truncate(e.Title, 30)).SetExpansion(2))
		table.SetCell(i+1, 1, tview.NewTableCell(formatDate(e.Start)).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(formatDate(e.End)).SetExpansion(1))
		table.SetCell(i+1, 3, tview.NewTableCell(e.PetType).SetExpansion(1))
		table.SetCell(i+1, 4, tview.NewTableCell(truncate(e.Notes, 40)).SetExpansion(2))
	}
	if table.GetRowCount() > 1 {
		table.Select(1, 0)
	}

	now := time.Now()
	month := holidaysInMonth(holidays.Data, now.Year(), int(now.Month()))
	var b strings.Builder
	if len(month) == 0 {
		b.WriteString(fmt.Sprintf("[%s]no holidays this month[-]", t.Muted))
	} else {
		for _, h := range month {
			b.WriteString(fmt.Sprintf("[%s]%s[-]  %s\n", t.Info, formatDate(h.Start), h.Title))
		}
	}
	vm.holidayPane.SetText(b.String())
}

func (vm *viewModel) renderVisits() {
	t := vm.theme
	snap := vm.options.Stores.Appointments.Snapshot()
	vm.visitRows = visitLogs(snap.Data)

	table := vm.visitTable
	table.Clear()
	for col, h := range []string{"Client", "Pet", "Services", "Date", "Time", "Status"} {
		table.SetCell(0, col, tview.NewTableCell("[::b]"+h).SetSelectable(false).SetExpansion(1))
	}
	for i, a := range vm.visitRows {
		status := string(api.CanonicalStatus(a.Status))
		table.SetCell(i+1, 0, tview.NewTableCell(formatClientName(a.ClientName)).SetExpansion(1))
		table.SetCell(i+1, 1, tview.NewTableCell(a.PetName).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(truncate(formatServices(a.Services), 30)).SetExpansion(2))
		table.SetCell(i+1, 3, tview.NewTableCell(formatDate(a.Date)).SetExpansion(1))
		table.SetCell(i+1, 4, tview.NewTableCell(formatClock(a.Time)).SetExpansion(1))
		table.SetCell(i+1, 5, tview.NewTableCell(fmt.Sprintf("[%s]%s", t.statusColor(status), status)).SetExpansion(1))
	}
	if table.GetRowCount() > 1 {
		table.Select(1, 0)
	}
}

func (vm *viewModel) renderAnalytics() {
	t := vm.theme
	snap := vm.options.Stores.Analytics.Snapshot()

	var b strings.Builder
	b.WriteString("\n")

	if !snap.HasData || snap.Data == nil {
		if snap.LastError != nil {
			b.WriteString(fmt.Sprintf(" [%s]analytics unavailable: %v[-]\n", t.Danger, snap.LastError))
		} else {
			b.WriteString(fmt.Sprintf(" [%s]loading analytics...[-]\n", t.Muted))
		}
		vm.analyticsView.SetText(b.String())
		return
	}

	a := snap.Data
	b.WriteString(fmt.Sprintf(" [::b]Today[::-]   [%s]booked[-] %d   [%s]approved[-] %d   [%s]completed[-] %d\n\n",
		t.Warning, a.Today.TotalBooked, t.Success, a.Today.Approved, t.Info, a.Today.Completed))

	if len(a.Distribution) > 0 {
		b.WriteString(" [::b]Status distribution[::-]\n")
		for _, sc := range a.Distribution {
			status := string(api.CanonicalStatus(sc.Status))
			b.WriteString(fmt.Sprintf("   [%s]%-10s[-] %d\n", t.statusColor(status), status, sc.Count))
		}
		b.WriteString("\n")
	}

	if len(a.Monthly.Labels) > 0 {
		b.WriteString(" [::b]Monthly productivity[::-]\n")
		for i, label := range a.Monthly.Labels {
			if i >= len(a.Monthly.Data) {
				break
			}
			b.WriteString(fmt.Sprintf("   [%s]%-12s[-] %.0f\n", t.Muted, label, a.Monthly.Data[i]))
		}
		b.WriteString("\n")
	}

	if len(a.Records) > 0 {
		b.WriteString(fmt.Sprintf(" [::b]Recent records[::-] [%s](D deletes by number)[-]\n", t.Muted))
		for i, r := range a.Records {
			if i >= 10 {
				break
			}
			b.WriteString(fmt.Sprintf("   [%s]%2d.[-] [%s]%s[-]  booked %d  approved %d  completed %d\n",
				t.Accent, i+1, t.Muted, formatDate(r.RecordDate), r.TotalBooked, r.TotalApproved, r.TotalCompleted))
		}
		b.WriteString("\n")
	}

	if len(a.Cancellations) > 0 {
		b.WriteString(fmt.Sprintf(" [::b]Recent cancellations[::-] [%s](%d)[-]\n", t.Muted, len(a.Cancellations)))
		for i, c := range a.Cancellations {
			if i >= 5 {
				break
			}
			b.WriteString(fmt.Sprintf("   [%s]%s[-] %s (%s)\n", t.Danger, formatDate(c.Date), formatClientName(c.ClientName), c.PetName))
		}
	}

	vm.analyticsView.SetText(b.String())
}

func (vm *viewModel) renderDiagnostics() {
	t := vm.theme
	path := vm.options.LogPath
	if path == "" {
		path = vm.options.Config.ClientLogPath()
	}

	lines, err := logtail.Read(path, diagnosticsTailLines)
	if err != nil {
		vm.diagnosticsView.SetText(fmt.Sprintf("[%s]cannot read log %s: %v[-]", t.Danger, path, err))
		return
	}
	if len(lines) == 0 {
		vm.diagnosticsView.SetText(fmt.Sprintf("[%s]log empty: %s[-]", t.Muted, path))
		return
	}
	vm.diagnosticsView.SetText(strings.Join(logtail.FormatLines(lines), "\n"))
	vm.diagnosticsView.ScrollToEnd()
}

// selectedAppointment returns the pending appointment under the cursor.
func (vm *viewModel) selectedAppointment() (api.Appointment, bool) {
	row, _ := vm.apptTable.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(vm.pendingRows) {
		return api.Appointment{}, false
	}
	return vm.pendingRows[idx], true
}

func (vm *viewModel) selectedVisit() (api.Appointment, bool) {
	row, _ := vm.visitTable.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(vm.visitRows) {
		return api.Appointment{}, false
	}
	return vm.visitRows[idx], true
}

func (vm *viewModel) selectedProduct() (api.Product, bool) {
	row, _ := vm.productTable.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(vm.productRows) {
		return api.Product{}, false
	}
	return vm.productRows[idx], true
}

func (vm *viewModel) selectedStaff() (api.Staff, bool) {
	row, _ := vm.staffTable.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(vm.staffRows) {
		return api.Staff{}, false
	}
	return vm.staffRows[idx], true
}

func (vm *viewModel) selectedEvent() (api.CalendarEvent, bool) {
	row, _ := vm.calendarTable.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(vm.eventRows) {
		return api.CalendarEvent{}, false
	}
	return vm.eventRows[idx], true
}
