package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorMuted   = lipgloss.AdaptiveColor{Light: "244", Dark: "243"}
	colorItem    = lipgloss.AdaptiveColor{Light: "22", Dark: "40"}
	colorPending = lipgloss.AdaptiveColor{Light: "130", Dark: "214"}

	styleTitle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	styleMode    = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "203"}).Padding(0, 1)
	styleLoading = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	styleBorder  = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader  = lipgloss.NewStyle().Bold(true).Padding(0, 1).Align(lipgloss.Center)
	styleCell    = lipgloss.NewStyle().Padding(0, 1)
	styleHour    = styleCell.Foreground(colorMuted)
	styleItem    = styleCell.Foreground(colorItem)
	stylePending = styleCell.Foreground(colorPending).Bold(true)
	styleOutside = styleCell.Faint(true)
	styleRef     = lipgloss.NewStyle().Reverse(true)
	styleHelp    = help.Styles{
		Ellipsis:       lipgloss.NewStyle().Foreground(colorMuted),
		ShortKey:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "33"}),
		ShortDesc:      lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "238", Dark: "250"}),
		ShortSeparator: lipgloss.NewStyle().Foreground(colorMuted),
		FullKey:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "33"}),
		FullDesc:       lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "238", Dark: "250"}),
		FullSeparator:  lipgloss.NewStyle().Foreground(colorMuted),
	}
)
