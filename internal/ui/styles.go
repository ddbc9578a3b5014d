package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Header   lipgloss.Style
	OnAir    lipgloss.Style
	Disabled lipgloss.Style
	Good     lipgloss.Style
	Bad      lipgloss.Style
	Warn     lipgloss.Style
	Help     lipgloss.Style
	Message  lipgloss.Style
	Overlay  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(lipgloss.Color("220")).
			Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true).
			Underline(true),
		OnAir: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		Disabled: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Strikethrough(true),
		Good: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")),
		Bad: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(1, 2),
	}
}
