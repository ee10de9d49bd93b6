package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

const modalPage = "modal"

func (vm *viewModel) openModal(wrapped tview.Primitive, focus tview.Primitive) {
	vm.root.RemovePage(modalPage)
	vm.root.AddPage(modalPage, wrapped, true, true)
	if focus != nil {
		vm.app.SetFocus(focus)
	}
}

func (vm *viewModel) closeModal() {
	vm.root.RemovePage(modalPage)
	vm.app.SetFocus(vm.mainContent)
}

func (vm *viewModel) modalOpen() bool {
	return vm.root.HasPage(modalPage)
}

// confirmThen shows a yes/no modal and runs proceed on confirmation.
func (vm *viewModel) confirmThen(question string, proceed func()) {
	modal := tview.NewModal().
		SetText(question).
		AddButtons([]string{"Yes", "No"})
	modal.SetBorderColor(vm.theme.FocusTitle)
	modal.SetBackgroundColor(vm.theme.Background)
	modal.SetDoneFunc(func(buttonIndex int, buttonLabel string) {
		vm.closeModal()
		if buttonLabel == "Yes" {
			proceed()
		}
	})
	vm.openModal(modal, modal)
}

func (vm *viewModel) showError(message string) {
	modal := tview.NewModal().
		SetText(message).
		AddButtons([]string{"Close"})
	modal.SetBorderColor(vm.theme.FocusTitle)
	modal.SetBackgroundColor(vm.theme.Background)
	modal.SetDoneFunc(func(int, string) { vm.closeModal() })
	vm.openModal(modal, modal)
}

func (vm *viewModel) showHelp() {
	helpCommands := []struct{ key, desc string }{
		{"1-8", "Switch views"},
		{"A", "Approve selected appointment"},
		{"C", "Cancel selected appointment"},
		{"R", "Reschedule selected appointment"},
		{"W", "Log walk-in visit"},
		{"V", "Confirm client arrived (visits)"},
		{"N", "No-show (visits); new product/staff"},
		{"F", "Book follow-up (completed visits)"},
		{"U", "Edit selected product"},
		{"E", "New calendar event"},
		{"D", "Delete selected row"},
		{"/", "Search (products, staff)"},
		{"f", "Cycle pet filter / staff status"},
		{"t", "Toggle theme"},
		{"h/?", "Help"},
		{"e", "Exit"},
		{"Ctrl+C", "Exit"},
	}

	var helpLines []string
	maxRows := 6
	for i, cmd := range helpCommands {
		row := i % maxRows
		col := i / maxRows
		text := fmt.Sprintf("[%s]<%s>[%s] %s", vm.theme.Accent, cmd.key, vm.theme.Muted, cmd.desc)
		for len(helpLines) <= row {
			helpLines = append(helpLines, "")
		}
		if col > 0 {
			helpLines[row] += "  |  " + text
		} else {
			helpLines[row] = text
		}
	}

	modal := tview.NewModal().
		SetText(strings.Join(helpLines, "\n")).
		AddButtons([]string{"Close"})
	modal.SetBorderColor(vm.theme.FocusTitle)
	modal.SetBackgroundColor(vm.theme.Background)
	modal.SetDoneFunc(func(int, string) { vm.closeModal() })
	vm.openModal(center(100, 10, modal), modal)
}
