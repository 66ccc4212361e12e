// Package ui renders the forecast page in the terminal.
package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	Primary     = lipgloss.Color("#3B82F6")
	Secondary   = lipgloss.Color("#64748B")
	Destructive = lipgloss.Color("#EF4444")
	Foreground  = lipgloss.Color("#F2F2F2")
	Muted       = lipgloss.Color("#6B7280")
	Border      = lipgloss.Color("#2A3850")
)

// Styles holds all the styled components
type Styles struct {
	// Layout
	App  lipgloss.Style
	Card lipgloss.Style

	// Text
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style

	// Components
	Button       lipgloss.Style
	ButtonBusy   lipgloss.Style
	StepReached  lipgloss.Style
	StepPending  lipgloss.Style
	Spinner      lipgloss.Style
	ResultDate   lipgloss.Style
	ResultReason lipgloss.Style
	Badge        lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border).
			Padding(1, 2).
			MarginTop(1),

		Title: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(Foreground).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(Muted),

		Bold: lipgloss.NewStyle().
			Bold(true),

		Button: lipgloss.NewStyle().
			Background(Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 3).
			Bold(true),

		ButtonBusy: lipgloss.NewStyle().
			Background(Secondary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 3),

		StepReached: lipgloss.NewStyle().
			Foreground(Foreground),

		StepPending: lipgloss.NewStyle().
			Foreground(Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(Primary),

		ResultDate: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		ResultReason: lipgloss.NewStyle().
			Foreground(Destructive).
			Italic(true),

		Badge: lipgloss.NewStyle().
			Foreground(Foreground).
			Background(Border).
			Padding(0, 1),
	}
}
