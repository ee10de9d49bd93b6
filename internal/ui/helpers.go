package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/rivo/tview"

	"github.com/pawfessional/pawdesk/internal/api"
)

// formatClientName renders "First M. Last" when the client has a middle
// name, matching how the clinic prints names on receipts.
func formatClientName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 3 {
		return strings.Join(parts, " ")
	}
	first := parts[0]
	last := parts[len(parts)-1]
	middle := parts[1 : len(parts)-1]
	initials := make([]string, len(middle))
	for i, m := range middle {
		initials[i] = string([]rune(m)[0]) + "."
	}
	return first + " " + strings.Join(initials, " ") + " " + last
}

// formatServices joins a service list for a table cell.
func formatServices(services []string) string {
	if len(services) == 0 {
		return "-"
	}
	return strings.Join(services, ", ")
}

// formatDate renders a wire date for display, falling back to the raw
// value when it does not parse.
func formatDate(raw string) string {
	t := api.ParsedDate(raw)
	if t.IsZero() {
		return raw
	}
	return t.Format("Mon, Jan 2 2006")
}

// formatClock renders "HH:MM" as a 12-hour clock.
func formatClock(clock string) string {
	t, err := time.Parse("15:04", strings.TrimSpace(clock))
	if err != nil {
		if t2, err2 := time.Parse("15:04:05", strings.TrimSpace(clock)); err2 == nil {
			return t2.Format("3:04 PM")
		}
		return clock
	}
	return t.Format("3:04 PM")
}

// stockLabel renders the stock band for a product cell.
func stockLabel(p api.Product, t Theme) string {
	switch p.Band() {
	case api.StockOut:
		return fmt.Sprintf("[%s]out of stock[-]", t.Danger)
	case api.StockLow:
		return fmt.Sprintf("[%s]low (%d)[-]", t.Warning, *p.Stock)
	case api.StockIn:
		return fmt.Sprintf("%d", *p.Stock)
	default:
		return fmt.Sprintf("[%s]unknown[-]", t.Muted)
	}
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func ternary(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

func splitAndTrim(raw, sep string) []string {
	parts := strings.Split(raw, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func center(width, height int, primitive tview.Primitive) tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexColumn).
			AddItem(nil, 0, 1, false).
			AddItem(primitive, width, 0, true).
			AddItem(nil, 0, 1, false), height, 0, true).
		AddItem(nil, 0, 1, false)
}
