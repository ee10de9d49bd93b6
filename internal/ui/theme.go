package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Theme defines the palette for the dashboard.
type Theme struct {
	Name string

	Background tcell.Color
	Surface    tcell.Color
	Border     tcell.Color
	FocusTitle tcell.Color

	Text   string
	Muted  string
	Accent string

	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors keys are canonical appointment statuses.
	StatusColors map[string]string
}

var darkTheme = Theme{
	Name:       "dark",
	Background: tcell.ColorBlack,
	Surface:    tcell.ColorBlack,
	Border:     tcell.ColorSlateGray,
	FocusTitle: tcell.ColorDodgerBlue,
	Text:       "white",
	Muted:      "#808080",
	Accent:     "dodgerblue",
	Success:    "#5FD75F",
	Warning:    "#FFD75F",
	Danger:     "#FF5F5F",
	Info:       "#87AFFF",
	StatusColors: map[string]string{
		"Pending":   "#FFD75F",
		"Approved":  "#5FD75F",
		"Completed": "#87AFFF",
		"Cancelled": "#FF5F5F",
		"No Show":   "#FF875F",
	},
}

var lightTheme = Theme{
	Name:       "light",
	Background: tcell.ColorWhite,
	Surface:    tcell.ColorWhite,
	Border:     tcell.ColorDarkSlateGray,
	FocusTitle: tcell.ColorDarkBlue,
	Text:       "black",
	Muted:      "#606060",
	Accent:     "#005faf",
	Success:    "#008700",
	Warning:    "#af8700",
	Danger:     "#d70000",
	Info:       "#005fd7",
	StatusColors: map[string]string{
		"Pending":   "#af8700",
		"Approved":  "#008700",
		"Completed": "#005fd7",
		"Cancelled": "#d70000",
		"No Show":   "#d75f00",
	},
}

// themeByName resolves a preference string to a Theme, defaulting to dark.
func themeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "light":
		return lightTheme
	default:
		return darkTheme
	}
}

// next returns the other theme, for the toggle key.
func (t Theme) next() Theme {
	if t.Name == "dark" {
		return lightTheme
	}
	return darkTheme
}

// statusColor returns the display color tag for an appointment status.
func (t Theme) statusColor(status string) string {
	if c, ok := t.StatusColors[status]; ok {
		return c
	}
	return t.Muted
}
