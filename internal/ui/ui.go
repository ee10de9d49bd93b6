package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/realtime"
)

const defaultUIInterval = time.Second

// Run wires up the tview components and blocks until ctx is cancelled or
// the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Stores == nil {
		return fmt.Errorf("ui requires the data stores")
	}
	if opts.Mutator == nil {
		return fmt.Errorf("ui requires an api client")
	}
	if opts.Context == nil {
		opts.Context = ctx
	}

	app := tview.NewApplication()
	vm := newViewModel(app, opts)

	refreshEvery := opts.RefreshEvery
	if refreshEvery <= 0 {
		refreshEvery = defaultUIInterval
	}

	go func() {
		ticker := time.NewTicker(refreshEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				app.QueueUpdateDraw(func() { app.Stop() })
				return
			case <-ticker.C:
				app.QueueUpdateDraw(func() {
					vm.lastRefresh = time.Now()
					vm.refresh()
				})
			}
		}
	}()

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// A modal owns the keyboard while open.
		if vm.modalOpen() {
			if event.Key() == tcell.KeyCtrlC {
				app.Stop()
				return nil
			}
			return event
		}

		if vm.searchMode {
			switch event.Key() {
			case tcell.KeyEnter:
				vm.applySearch()
				return nil
			case tcell.KeyESC:
				vm.cancelSearch()
				return nil
			case tcell.KeyCtrlC:
				app.Stop()
				return nil
			}
			return event
		}

		switch event.Key() {
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyESC:
			vm.switchView(realtime.ViewDashboard)
			return nil
		case tcell.KeyRune:
			if vm.handleRune(event.Rune()) {
				return nil
			}
		}
		return event
	})

	vm.switchView(realtime.ViewDashboard)
	return app.SetRoot(vm.root, true).Run()
}

// handleRune routes a key press; returns true when consumed.
func (vm *viewModel) handleRune(r rune) bool {
	switch r {
	case '1':
		vm.switchView(realtime.ViewDashboard)
	case '2':
		vm.switchView(realtime.ViewAppointments)
	case '3':
		vm.switchView(realtime.ViewProducts)
	case '4':
		vm.switchView(realtime.ViewStaff)
	case '5':
		vm.switchView(realtime.ViewCalendar)
	case '6':
		vm.switchView(realtime.ViewVisits)
	case '7':
		vm.switchView(realtime.ViewAnalytics)
	case '8':
		vm.switchView(realtime.ViewDiagnostics)
	case 't':
		vm.toggleTheme()
	case 'h', '?':
		vm.showHelp()
	case 'e':
		vm.app.Stop()
	case '/':
		if vm.currentView == realtime.ViewProducts || vm.currentView == realtime.ViewStaff {
			vm.startSearch()
		} else {
			return false
		}
	case 'f':
		switch vm.currentView {
		case realtime.ViewProducts:
			vm.productFilter = vm.productFilter.cycle()
			vm.renderProducts()
		case realtime.ViewStaff:
			vm.staffStatus = nextStaffStatus(vm.staffStatus)
			vm.pushStaffQuery()
		default:
			return false
		}
	case 'A':
		if vm.currentView == realtime.ViewAppointments {
			vm.approveSelected()
		} else {
			return false
		}
	case 'C':
		if vm.currentView == realtime.ViewAppointments {
			vm.cancelSelected()
		} else {
			return false
		}
	case 'R':
		if vm.currentView == realtime.ViewAppointments {
			vm.rescheduleSelected()
		} else {
			return false
		}
	case 'W':
		if vm.currentView == realtime.ViewAppointments {
			vm.walkInForm()
		} else {
			return false
		}
	case 'V':
		if vm.currentView == realtime.ViewVisits {
			vm.confirmVisitSelected()
		} else {
			return false
		}
	case 'N':
		switch vm.currentView {
		case realtime.ViewVisits:
			vm.noShowSelected()
		case realtime.ViewProducts:
			vm.newProductForm()
		case realtime.ViewStaff:
			vm.newStaffForm()
		default:
			return false
		}
	case 'U':
		if vm.currentView == realtime.ViewProducts {
			vm.editProductForm()
		} else {
			return false
		}
	case 'F':
		if vm.currentView == realtime.ViewVisits {
			vm.followUpForm()
		} else {
			return false
		}
	case 'E':
		if vm.currentView == realtime.ViewCalendar {
			vm.newEventForm()
		} else {
			return false
		}
	case 'D':
		switch vm.currentView {
		case realtime.ViewProducts:
			vm.deleteSelectedProduct()
		case realtime.ViewStaff:
			vm.deleteSelectedStaff()
		case realtime.ViewCalendar:
			vm.deleteSelectedEvent()
		case realtime.ViewAnalytics:
			vm.deleteAnalyticsRecordForm()
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// startSearch opens the search bar for the current view. Product search
// filters the local snapshot; staff search is a server-side query.
func (vm *viewModel) startSearch() {
	switch vm.currentView {
	case realtime.ViewProducts:
		vm.searchInput.SetText(vm.productSearch)
	case realtime.ViewStaff:
		vm.searchInput.SetText(vm.staffSearch)
	default:
		return
	}
	vm.searchTarget = vm.currentView
	vm.searchMode = true
	vm.layout.ResizeItem(vm.searchBar, 1, 0)
	vm.app.SetFocus(vm.searchInput)
}

func (vm *viewModel) applySearch() {
	text := vm.searchInput.GetText()
	vm.endSearch()
	switch vm.searchTarget {
	case realtime.ViewProducts:
		vm.productSearch = text
		vm.renderProducts()
	case realtime.ViewStaff:
		vm.staffSearch = text
		vm.pushStaffQuery()
	}
}

func (vm *viewModel) cancelSearch() {
	vm.endSearch()
	switch vm.searchTarget {
	case realtime.ViewProducts:
		vm.productSearch = ""
		vm.renderProducts()
	case realtime.ViewStaff:
		if vm.staffSearch != "" {
			vm.staffSearch = ""
			vm.pushStaffQuery()
		}
	}
}

func (vm *viewModel) endSearch() {
	vm.searchMode = false
	vm.layout.ResizeItem(vm.searchBar, 0, 0)
	vm.app.SetFocus(vm.mainContent)
}

// pushStaffQuery hands the current search and status filter to the sync
// coordinator, which uses it for this and every later staff refetch.
func (vm *viewModel) pushStaffQuery() {
	if vm.options.Coordinator == nil {
		vm.renderStaff()
		return
	}
	vm.options.Coordinator.SetStaffQuery(api.StaffQuery{
		Search: vm.staffSearch,
		Status: vm.staffStatus,
	})
	vm.mutate("staff query", func(ctx context.Context) error {
		return vm.options.Coordinator.RefreshStaff(ctx)
	}, nil)
}

func nextStaffStatus(status string) string {
	switch status {
	case "active":
		return "inactive"
	case "inactive":
		return "all"
	default:
		return "active"
	}
}
