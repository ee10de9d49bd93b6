package ui

import (
	"context"
	"fmt"

	"github.com/rivo/tview"

	"github.com/pawfessional/pawdesk/internal/api"
	"github.com/pawfessional/pawdesk/internal/prefs"
)

func (vm *viewModel) approveSelected() {
	a, ok := vm.selectedAppointment()
	if !ok {
		return
	}
	vm.confirmThen(fmt.Sprintf("Approve %s's appointment for %s?", formatClientName(a.ClientName), a.PetName), func() {
		vm.mutate("approve", func(ctx context.Context) error {
			return vm.options.Mutator.UpdateAppointmentStatus(ctx, a.ID, api.StatusApproved)
		}, vm.refreshAppointmentsAfterWrite)
	})
}

func (vm *viewModel) cancelSelected() {
	a, ok := vm.selectedAppointment()
	if !ok {
		return
	}
	vm.confirmThen(fmt.Sprintf("Cancel %s's appointment for %s?", formatClientName(a.ClientName), a.PetName), func() {
		vm.mutate("cancel", func(ctx context.Context) error {
			return vm.options.Mutator.UpdateAppointmentStatus(ctx, a.ID, api.StatusCancelled)
		}, vm.refreshAppointmentsAfterWrite)
	})
}

func (vm *viewModel) confirmVisitSelected() {
	a, ok := vm.selectedVisit()
	if !ok || api.CanonicalStatus(a.Status) != api.StatusApproved {
		return
	}
	vm.confirmThen(fmt.Sprintf("Confirm %s arrived with %s?", formatClientName(a.ClientName), a.PetName), func() {
		vm.mutate("confirm visit", func(ctx context.Context) error {
			return vm.options.Mutator.ConfirmVisit(ctx, a.ID)
		}, vm.refreshAppointmentsAfterWrite)
	})
}

func (vm *viewModel) noShowSelected() {
	a, ok := vm.selectedVisit()
	if !ok || api.CanonicalStatus(a.Status) != api.StatusApproved {
		return
	}
	vm.confirmThen(fmt.Sprintf("Mark %s's appointment as a no-show?", formatClientName(a.ClientName)), func() {
		vm.mutate("mark no-show", func(ctx context.Context) error {
			return vm.options.Mutator.UpdateAppointmentStatus(ctx, a.ID, api.StatusNoShow)
		}, vm.refreshAppointmentsAfterWrite)
	})
}

func (vm *viewModel) rescheduleSelected() {
	a, ok := vm.selectedAppointment()
	if !ok {
		return
	}

	form := tview.NewForm()
	form.AddInputField("Date (YYYY-MM-DD)", a.DateKey(), 14, nil, nil)
	form.AddInputField("Time (HH:MM)", a.Time, 8, nil, nil)
	form.AddInputField("Note to client", "", 40, nil, nil)
	form.AddButton("Reschedule", func() {
		req := api.RescheduleRequest{
			Date:  form.GetFormItem(0).(*tview.InputField).GetText(),
			Time:  form.GetFormItem(1).(*tview.InputField).GetText(),
			Notes: form.GetFormItem(2).(*tview.InputField).GetText(),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("reschedule", func(ctx context.Context) error {
			return vm.options.Mutator.RescheduleAppointment(ctx, a.ID, req)
		}, vm.refreshAppointmentsAfterWrite)
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(fmt.Sprintf(" Reschedule %s ", a.PetName))
	vm.openModal(center(52, 13, form), form)
}

// walkInForm loads the registered client list first, the way the booking
// desk works: the form opens with client and pet pickers, never raw ids.
func (vm *viewModel) walkInForm() {
	if vm.options.Directory == nil {
		vm.showError("walk-in entry needs a server connection")
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(vm.options.Context, mutationTimeout)
		defer cancel()
		clients, err := vm.options.Directory.FetchClients(ctx)
		vm.app.QueueUpdateDraw(func() {
			if err != nil {
				vm.showError("load clients failed: " + err.Error())
				return
			}
			if len(clients) == 0 {
				vm.showError("no registered clients to log a walk-in for")
				return
			}
			vm.openWalkInForm(clients)
		})
	}()
}

func (vm *viewModel) openWalkInForm(clients []api.User) {
	var pets []api.Pet

	petDrop := tview.NewDropDown().SetLabel("Pet")
	loadPets := func(userID int64) {
		go func() {
			ctx, cancel := context.WithTimeout(vm.options.Context, mutationTimeout)
			defer cancel()
			got, err := vm.options.Directory.FetchPets(ctx, userID)
			vm.app.QueueUpdateDraw(func() {
				if err != nil {
					pets = nil
					petDrop.SetOptions([]string{"could not load pets"}, nil)
					return
				}
				pets = got
				names := make([]string, len(got))
				for i, p := range got {
					names[i] = p.Name
				}
				petDrop.SetOptions(names, nil)
				if len(names) > 0 {
					petDrop.SetCurrentOption(0)
				}
			})
		}()
	}

	clientNames := make([]string, len(clients))
	for i, u := range clients {
		clientNames[i] = formatClientName(u.FullName)
	}
	clientDrop := tview.NewDropDown().SetLabel("Client").
		SetOptions(clientNames, func(text string, index int) {
			if index >= 0 && index < len(clients) {
				loadPets(clients[index].ID)
			}
		})

	form := tview.NewForm()
	form.AddFormItem(clientDrop)
	form.AddFormItem(petDrop)
	form.AddInputField("Services (comma separated)", "", 40, nil, nil)
	form.AddInputField("Follow-up service", "", 30, nil, nil)
	form.AddInputField("Follow-up date (YYYY-MM-DD)", "", 14, nil, nil)
	form.AddInputField("Follow-up time (HH:MM)", "", 8, nil, nil)
	form.AddButton("Log walk-in", func() {
		ci, _ := clientDrop.GetCurrentOption()
		pi, _ := petDrop.GetCurrentOption()
		if ci < 0 || ci >= len(clients) {
			vm.showError("select a client")
			return
		}
		if pi < 0 || pi >= len(pets) {
			vm.showError("select one of the client's pets")
			return
		}
		req := api.WalkInRequest{
			UserID:          clients[ci].ID,
			PetID:           pets[pi].ID,
			TodayServices:   splitServices(formText(form, 2)),
			FollowUpService: formText(form, 3),
			FollowUpDate:    formText(form, 4),
			FollowUpTime:    formText(form, 5),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("log walk-in", func(ctx context.Context) error {
			return vm.options.Mutator.LogWalkIn(ctx, req)
		}, vm.refreshAppointmentsAfterWrite)
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(" Walk-In Visit ")
	vm.openModal(center(56, 17, form), form)

	// Preselecting the first client fires its selected handler and loads
	// that client's pets.
	clientDrop.SetCurrentOption(0)
}

func (vm *viewModel) followUpForm() {
	a, ok := vm.selectedVisit()
	if !ok || api.CanonicalStatus(a.Status) != api.StatusCompleted {
		return
	}

	form := tview.NewForm()
	form.AddInputField("Service", "", 30, nil, nil)
	form.AddInputField("Date (YYYY-MM-DD)", "", 14, nil, nil)
	form.AddInputField("Time (HH:MM)", "", 8, nil, nil)
	form.AddInputField("Notes", "", 40, nil, nil)
	form.AddButton("Book", func() {
		req := api.FollowUpRequest{
			UserID:   a.UserID,
			PetID:    a.PetID,
			Services: splitServices(formText(form, 0)),
			Date:     formText(form, 1),
			Time:     formText(form, 2),
			Notes:    formText(form, 3),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("book follow-up", func(ctx context.Context) error {
			return vm.options.Mutator.BookFollowUp(ctx, req)
		}, vm.refreshAppointmentsAfterWrite)
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(fmt.Sprintf(" Follow-Up for %s ", a.PetName))
	vm.openModal(center(52, 13, form), form)
}

func (vm *viewModel) newProductForm() {
	vm.productForm("Add Product", api.Product{}, func(ctx context.Context, req api.ProductRequest) error {
		return vm.options.Mutator.CreateProduct(ctx, req)
	})
}

func (vm *viewModel) editProductForm() {
	p, ok := vm.selectedProduct()
	if !ok {
		return
	}
	vm.productForm("Edit Product", p, func(ctx context.Context, req api.ProductRequest) error {
		return vm.options.Mutator.UpdateProduct(ctx, p.ID, req)
	})
}

func (vm *viewModel) productForm(title string, p api.Product, save func(context.Context, api.ProductRequest) error) {
	stock := ""
	if p.Stock != nil {
		stock = fmt.Sprintf("%d", *p.Stock)
	}
	price := ""
	if p.Price > 0 {
		price = fmt.Sprintf("%.2f", p.Price)
	}

	form := tview.NewForm()
	form.AddInputField("Name", p.Name, 30, nil, nil)
	form.AddInputField("Brand", p.Brand, 24, nil, nil)
	form.AddInputField("Category", p.Category, 20, nil, nil)
	form.AddInputField("Pet type", p.PetType, 16, nil, nil)
	form.AddInputField("Life stage", p.LifeStage, 16, nil, nil)
	form.AddInputField("Price", price, 10, tview.InputFieldFloat, nil)
	form.AddInputField("Discount %", fmt.Sprintf("%g", p.Discount), 6, tview.InputFieldFloat, nil)
	form.AddInputField("Stock", stock, 6, tview.InputFieldInteger, nil)
	form.AddInputField("Description", p.Description, 40, nil, nil)
	form.AddButton("Save", func() {
		req := api.ProductRequest{
			Name:        formText(form, 0),
			Brand:       formText(form, 1),
			Category:    formText(form, 2),
			PetType:     formText(form, 3),
			LifeStage:   formText(form, 4),
			Price:       formFloat(form, 5),
			Discount:    formFloat(form, 6),
			Stock:       int(formInt(form, 7)),
			Description: formText(form, 8),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("save product", func(ctx context.Context) error {
			return save(ctx, req)
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshProducts(ctx)
		})
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(" " + title + " ")
	vm.openModal(center(56, 23, form), form)
}

func (vm *viewModel) deleteSelectedProduct() {
	p, ok := vm.selectedProduct()
	if !ok {
		return
	}
	vm.confirmThen(fmt.Sprintf("Delete product %q?", p.Name), func() {
		vm.mutate("delete product", func(ctx context.Context) error {
			return vm.options.Mutator.DeleteProducts(ctx, []int64{p.ID})
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshProducts(ctx)
		})
	})
}

func (vm *viewModel) deleteSelectedStaff() {
	s, ok := vm.selectedStaff()
	if !ok {
		return
	}
	vm.confirmThen(fmt.Sprintf("Remove staff member %s?", s.Name), func() {
		vm.mutate("delete staff", func(ctx context.Context) error {
			return vm.options.Mutator.DeleteStaff(ctx, s.ID)
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshStaff(ctx)
		})
	})
}

func (vm *viewModel) newStaffForm() {
	form := tview.NewForm()
	form.AddInputField("First name", "", 24, nil, nil)
	form.AddInputField("Last name", "", 24, nil, nil)
	form.AddInputField("Middle initial", "", 4, nil, nil)
	form.AddInputField("Email", "", 30, nil, nil)
	form.AddInputField("Phone", "", 14, nil, nil)
	form.AddInputField("Role", "Staff", 12, nil, nil)
	form.AddInputField("Address", "", 40, nil, nil)
	form.AddInputField("Username", "", 20, nil, nil)
	form.AddPasswordField("Password", "", 20, '*', nil)
	form.AddButton("Create", func() {
		req := api.StaffRequest{
			FirstName:     formText(form, 0),
			LastName:      formText(form, 1),
			MiddleInitial: formText(form, 2),
			Email:         formText(form, 3),
			Phone:         formText(form, 4),
			Role:          formText(form, 5),
			Address:       formText(form, 6),
			Username:      formText(form, 7),
			Password:      formText(form, 8),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("add staff", func(ctx context.Context) error {
			return vm.options.Mutator.AddStaff(ctx, req)
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshStaff(ctx)
		})
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(" New Staff Member ")
	vm.openModal(center(56, 23, form), form)
}

func (vm *viewModel) newEventForm() {
	form := tview.NewForm()
	form.AddInputField("Title", "", 30, nil, nil)
	form.AddInputField("Start (YYYY-MM-DD)", "", 14, nil, nil)
	form.AddInputField("End (YYYY-MM-DD)", "", 14, nil, nil)
	form.AddInputField("Pet type", "", 16, nil, nil)
	form.AddInputField("Notes", "", 40, nil, nil)
	form.AddButton("Create", func() {
		req := api.CalendarEventRequest{
			Title:   formText(form, 0),
			Start:   formText(form, 1),
			End:     formText(form, 2),
			PetType: formText(form, 3),
			Notes:   formText(form, 4),
		}
		if err := req.Validate(); err != nil {
			vm.showError(err.Error())
			return
		}
		vm.closeModal()
		vm.mutate("create event", func(ctx context.Context) error {
			return vm.options.Mutator.CreateCalendarEvent(ctx, req)
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshCalendar(ctx)
		})
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(" New Calendar Event ")
	vm.openModal(center(52, 15, form), form)
}

func (vm *viewModel) deleteSelectedEvent() {
	e, ok := vm.selectedEvent()
	if !ok {
		return
	}
	vm.confirmThen(fmt.Sprintf("Delete event %q?", e.Title), func() {
		vm.mutate("delete event", func(ctx context.Context) error {
			return vm.options.Mutator.DeleteCalendarEvent(ctx, e.ID)
		}, func(ctx context.Context) error {
			return vm.options.Coordinator.RefreshCalendar(ctx)
		})
	})
}

func (vm *viewModel) deleteAnalyticsRecordForm() {
	snap := vm.options.Stores.Analytics.Snapshot()
	if !snap.HasData || snap.Data == nil || len(snap.Data.Records) == 0 {
		return
	}
	records := snap.Data.Records
	if len(records) > 10 {
		records = records[:10]
	}

	form := tview.NewForm()
	form.AddInputField("Record number", "", 4, tview.InputFieldInteger, nil)
	form.AddButton("Delete", func() {
		n := int(formInt(form, 0))
		if n < 1 || n > len(records) {
			vm.showError(fmt.Sprintf("record number must be between 1 and %d", len(records)))
			return
		}
		rec := records[n-1]
		vm.closeModal()
		vm.confirmThen(fmt.Sprintf("Delete analytics record for %s?", formatDate(rec.RecordDate)), func() {
			vm.mutate("delete analytics record", func(ctx context.Context) error {
				return vm.options.Mutator.DeleteAnalyticsRecord(ctx, rec.ID)
			}, func(ctx context.Context) error {
				return vm.options.Coordinator.RefreshAnalytics(ctx)
			})
		})
	})
	form.AddButton("Back", vm.closeModal)
	form.SetBorder(true).SetTitle(" Delete Analytics Record ")
	vm.openModal(center(40, 9, form), form)
}

// refreshAppointmentsAfterWrite pulls appointments and dependent stats after
// a successful mutation, covering the window before the push lands.
func (vm *viewModel) refreshAppointmentsAfterWrite(ctx context.Context) error {
	if vm.options.Coordinator == nil {
		return nil
	}
	return vm.options.Coordinator.RefreshAppointments(ctx)
}

func (vm *viewModel) persistTheme() {
	if err := prefs.Save(vm.options.PrefsPath, prefs.Prefs{Theme: vm.theme.Name}); err != nil {
		vm.log.Warn("persist theme failed", "error", err)
	}
}

func formText(form *tview.Form, i int) string {
	return form.GetFormItem(i).(*tview.InputField).GetText()
}

func formFloat(form *tview.Form, i int) float64 {
	var f float64
	_, _ = fmt.Sscanf(formText(form, i), "%g", &f)
	return f
}

func formInt(form *tview.Form, i int) int64 {
	var n int64
	_, _ = fmt.Sscanf(formText(form, i), "%d", &n)
	return n
}

func splitServices(raw string) []string {
	var out []string
	for _, s := range splitAndTrim(raw, ",") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
