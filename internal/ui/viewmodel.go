package ui

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/config"
	"github.com/pawfessional/pawdesk/internal/realtime"
	"github.com/pawfessional/pawdesk/internal/state"
)

// Mutator is the write side of the server API consumed by the UI. Satisfied
// by *api.Client.
type Mutator interface {
	UpdateAppointmentStatus(ctx context.Context, id int64, status api.Status) error
	ConfirmVisit(ctx context.Context, id int64) error
	RescheduleAppointment(ctx context.Context, id int64, req api.RescheduleRequest) error
	LogWalkIn(ctx context.Context, req api.WalkInRequest) error
	BookFollowUp(ctx context.Context, req api.FollowUpRequest) error
	CreateProduct(ctx context.Context, req api.ProductRequest) error
	UpdateProduct(ctx context.Context, id int64, req api.ProductRequest) error
	DeleteProducts(ctx context.Context, ids []int64) error
	AddStaff(ctx context.Context, req api.StaffRequest) error
	DeleteStaff(ctx context.Context, id int64) error
	CreateCalendarEvent(ctx context.Context, req api.CalendarEventRequest) error
	DeleteCalendarEvent(ctx context.Context, id int64) error
	DeleteAnalyticsRecord(ctx context.Context, id int64) error
	Logout(ctx context.Context) error
}

// Directory resolves registered clients and their pets for walk-in entry.
// Satisfied by *api.Client.
type Directory interface {
	FetchClients(ctx context.Context) ([]api.User, error)
	FetchPets(ctx context.Context, userID int64) ([]api.Pet, error)
}

// ViewTracker publishes which view is on screen. The UI writes it on every
// switch; the sync coordinator reads it through its visibility predicate.
type ViewTracker struct {
	current atomic.Int32
}

// Set records the active view.
func (t *ViewTracker) Set(v realtime.View) { t.current.Store(int32(v)) }

// Visible reports whether v is the active view.
func (t *ViewTracker) Visible(v realtime.View) bool {
	return realtime.View(t.current.Load()) == v
}

// Options configure the UI runtime.
type Options struct {
	Context     context.Context
	Stores      *state.Stores
	Coordinator *realtime.Coordinator
	Mutator     Mutator
	Directory   Directory
	Tracker     *ViewTracker
	Config      config.Config
	Logger      *slog.Logger

	ThemeName    string
	PrefsPath    string
	LogPath      string
	RefreshEvery time.Duration
}

const mutationTimeout = 10 * time.Second

type viewModel struct {
	app     *tview.Application
	options Options
	log     *slog.Logger

	root        *tview.Pages
	header      *tview.TextView
	cmdBar      *tview.TextView
	mainContent *tview.Pages

	dashboardView   *tview.TextView
	apptTable       *tview.Table
	conflictPane    *tview.TextView
	apptLayout      *tview.Flex
	productTable    *tview.Table
	staffTable      *tview.Table
	calendarTable   *tview.Table
	holidayPane     *tview.TextView
	calendarLayout  *tview.Flex
	visitTable      *tview.Table
	analyticsView   *tview.TextView
	diagnosticsView *tview.TextView

	searchInput *tview.InputField
	searchBar   *tview.Flex
	layout      *tview.Flex

	theme       Theme
	currentView realtime.View
	lastRefresh time.Time

	// appointments view data backing the table rows
	pendingRows []api.Appointment
	visitRows   []api.Appointment
	productRows []api.Product
	staffRows   []api.Staff
	eventRows   []api.CalendarEvent

	productSearch string
	productFilter petFilter
	searchMode    bool
	searchTarget  realtime.View
	staffSearch   string
	staffStatus   string
}

func newViewModel(app *tview.Application, opts Options) *viewModel {
	tview.Borders.HorizontalFocus = tview.Borders.Horizontal
	tview.Borders.VerticalFocus = tview.Borders.Vertical
	tview.Borders.TopLeftFocus = tview.Borders.TopLeft
	tview.Borders.TopRightFocus = tview.Borders.TopRight
	tview.Borders.BottomLeftFocus = tview.Borders.BottomLeft
	tview.Borders.BottomRightFocus = tview.Borders.BottomRight

	theme := themeByName(opts.ThemeName)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	vm := &viewModel{
		app:         app,
		options:     opts,
		log:         logger.With("component", "ui"),
		theme:       theme,
		staffStatus: "active",
	}

	vm.header = tview.NewTextView().SetDynamicColors(true).SetWrap(false)
	vm.cmdBar = tview.NewTextView().SetDynamicColors(true).SetWrap(false)

	vm.dashboardView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	vm.dashboardView.SetBorder(true).SetTitle(" [::b]Dashboard[::-] ")

	vm.apptTable = tview.NewTable()
	vm.apptTable.SetBorder(true).SetTitle(" [::b]Pending Appointments[::-] ")
	vm.apptTable.SetSelectable(true, false)
	vm.apptTable.SetFixed(1, 0)

	vm.conflictPane = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	vm.conflictPane.SetBorder(true).SetTitle(" [::b]Conflicts[::-] ")

	vm.apptLayout = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(vm.apptTable, 0, 3, true).
		AddItem(vm.conflictPane, 0, 1, false)

	vm.productTable = tview.NewTable()
	vm.productTable.SetBorder(true).SetTitle(" [::b]Products[::-] ")
	vm.productTable.SetSelectable(true, false)
	vm.productTable.SetFixed(1, 0)

	vm.staffTable = tview.NewTable()
	vm.staffTable.SetBorder(true).SetTitle(" [::b]Staff[::-] ")
	vm.staffTable.SetSelectable(true, false)
	vm.staffTable.SetFixed(1, 0)

	vm.calendarTable = tview.NewTable()
	vm.calendarTable.SetBorder(true).SetTitle(" [::b]Calendar Events[::-] ")
	vm.calendarTable.SetSelectable(true, false)
	vm.calendarTable.SetFixed(1, 0)

	vm.holidayPane = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	vm.holidayPane.SetBorder(true).SetTitle(" [::b]Holidays This Month[::-] ")

	vm.calendarLayout = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(vm.calendarTable, 0, 3, true).
		AddItem(vm.holidayPane, 0, 1, false)

	vm.visitTable = tview.NewTable()
	vm.visitTable.SetBorder(true).SetTitle(" [::b]Visit Logs[::-] ")
	vm.visitTable.SetSelectable(true, false)
	vm.visitTable.SetFixed(1, 0)

	vm.analyticsView = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	vm.analyticsView.SetBorder(true).SetTitle(" [::b]Analytics[::-] ")

	vm.diagnosticsView = tview.NewTextView().SetDynamicColors(true)
	vm.diagnosticsView.SetBorder(true).SetTitle(" [::b]Diagnostics[::-] ")
	vm.diagnosticsView.ScrollToEnd()

	vm.searchInput = tview.NewInputField().SetLabel(" search: ")
	vm.searchBar = tview.NewFlex().AddItem(vm.searchInput, 0, 1, true)

	vm.mainContent = tview.NewPages()
	vm.mainContent.AddPage(pageName(realtime.ViewDashboard), vm.dashboardView, true, true)
	vm.mainContent.AddPage(pageName(realtime.ViewAppointments), vm.apptLayout, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewProducts), vm.productTable, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewStaff), vm.staffTable, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewCalendar), vm.calendarLayout, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewVisits), vm.visitTable, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewAnalytics), vm.analyticsView, true, false)
	vm.mainContent.AddPage(pageName(realtime.ViewDiagnostics), vm.diagnosticsView, true, false)

	vm.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(vm.header, 2, 0, false).
		AddItem(vm.mainContent, 0, 1, true).
		AddItem(vm.searchBar, 0, 0, false).
		AddItem(vm.cmdBar, 1, 0, false)

	vm.root = tview.NewPages()
	vm.root.AddPage("main", vm.layout, true, true)

	vm.applyTheme()
	vm.renderCmdBar()
	if opts.Tracker != nil {
		opts.Tracker.Set(realtime.ViewDashboard)
	}
	return vm
}

func pageName(v realtime.View) string {
	switch v {
	case realtime.ViewAppointments:
		return "appointments"
	case realtime.ViewProducts:
		return "products"
	case realtime.ViewStaff:
		return "staff"
	case realtime.ViewCalendar:
		return "calendar"
	case realtime.ViewVisits:
		return "visits"
	case realtime.ViewAnalytics:
		return "analytics"
	case realtime.ViewDiagnostics:
		return "diagnostics"
	default:
		return "dashboard"
	}
}

// switchView flips the visible page and tells the coordinator, so deferred
// analytics pushes settle on open.
func (vm *viewModel) switchView(v realtime.View) {
	vm.currentView = v
	vm.mainContent.SwitchToPage(pageName(v))
	if vm.options.Tracker != nil {
		vm.options.Tracker.Set(v)
	}
	if vm.options.Coordinator != nil {
		go vm.options.Coordinator.ViewOpened(vm.options.Context, v)
	}
	vm.renderCmdBar()
	vm.refresh()
}

// refresh re-renders the active view from store snapshots.
func (vm *viewModel) refresh() {
	vm.renderHeader()
	switch vm.currentView {
	case realtime.ViewAppointments:
		vm.renderAppointments()
	case realtime.ViewProducts:
		vm.renderProducts()
	case realtime.ViewStaff:
		vm.renderStaff()
	case realtime.ViewCalendar:
		vm.renderCalendar()
	case realtime.ViewVisits:
		vm.renderVisits()
	case realtime.ViewAnalytics:
		vm.renderAnalytics()
	case realtime.ViewDiagnostics:
		vm.renderDiagnostics()
	default:
		vm.renderDashboard()
	}
}

func (vm *viewModel) applyTheme() {
	t := vm.theme
	tview.Styles.PrimitiveBackgroundColor = t.Background
	tview.Styles.ContrastBackgroundColor = t.Background
	tview.Styles.MoreContrastBackgroundColor = t.Background

	for _, box := range []*tview.Box{
		vm.dashboardView.Box, vm.apptTable.Box, vm.conflictPane.Box,
		vm.productTable.Box, vm.staffTable.Box, vm.calendarTable.Box,
		vm.holidayPane.Box, vm.visitTable.Box, vm.analyticsView.Box,
		vm.diagnosticsView.Box,
	} {
		box.SetBackgroundColor(t.Surface)
		box.SetBorderColor(t.Border)
	}
	vm.header.SetBackgroundColor(t.Background)
	vm.cmdBar.SetBackgroundColor(t.Background)

	selStyle := tcell.StyleDefault.Background(t.FocusTitle).Foreground(t.Background)
	for _, table := range []*tview.Table{
		vm.apptTable, vm.productTable, vm.staffTable, vm.calendarTable, vm.visitTable,
	} {
		table.SetSelectedStyle(selStyle)
	}
}

func (vm *viewModel) toggleTheme() {
	vm.theme = vm.theme.next()
	vm.applyTheme()
	vm.refresh()
	vm.renderCmdBar()
	go vm.persistTheme()
}

func (vm *viewModel) renderCmdBar() {
	t := vm.theme
	vm.cmdBar.SetText(" [" + t.Accent + "]1[-][" + t.Muted + "] dash  [-][" + t.Accent + "]2[-][" + t.Muted + "] appts  [-][" + t.Accent + "]3[-][" + t.Muted + "] products  [-][" + t.Accent + "]4[-][" + t.Muted + "] staff  [-][" + t.Accent + "]5[-][" + t.Muted + "] calendar  [-][" + t.Accent + "]6[-][" + t.Muted + "] visits  [-][" + t.Accent + "]7[-][" + t.Muted + "] analytics  [-][" + t.Accent + "]8[-][" + t.Muted + "] diagnostics  [-][" + t.Accent + "]t[-][" + t.Muted + "] theme  [-][" + t.Accent + "]?[-][" + t.Muted + "] help[-]")
}

// mutate runs a write against the server off the UI goroutine, then asks the
// coordinator to refresh the affected resource. Push notifications usually
// arrive first; the store sequence guard makes the double refresh harmless.
func (vm *viewModel) mutate(name string, op func(context.Context) error, after func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(vm.options.Context, mutationTimeout)
		defer cancel()
		if err := op(ctx); err != nil {
			vm.log.Warn("mutation failed", "op", name, "error", err)
			vm.app.QueueUpdateDraw(func() {
				vm.showError(name + " failed: " + err.Error())
			})
			return
		}
		if after != nil {
			_ = after(ctx)
		}
		vm.app.QueueUpdateDraw(func() { vm.refresh() })
	}()
}
