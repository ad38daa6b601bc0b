package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors used by the filter bar host.
type Theme struct {
	PropertyFG  color.Color // Property labels
	OperatorFG  color.Color // Condition operators
	ValueFG     color.Color // Condition values
	LogicalFG   color.Color // AND / OR between siblings
	BracketFG   color.Color // Group parentheses
	InputBG     color.Color // Focused input background
	InputFG     color.Color // Focused input text
	GhostFG     color.Color // Placeholders and hints
	SelectedFG  color.Color // Highlighted menu item
	SelectedBG  color.Color
	MenuFG      color.Color
	DisabledFG  color.Color
	StatusError color.Color
	StatusInfo  color.Color
	FooterFG    color.Color
	BorderFG    color.Color
}

// DefaultTheme is the dark palette.
func DefaultTheme() Theme {
	return Theme{
		PropertyFG:  lipgloss.Color("14"),
		OperatorFG:  lipgloss.Color("11"),
		ValueFG:     lipgloss.Color("252"),
		LogicalFG:   lipgloss.Color("13"),
		BracketFG:   lipgloss.Color("240"),
		InputBG:     lipgloss.Color("236"),
		InputFG:     lipgloss.Color("255"),
		GhostFG:     lipgloss.Color("243"),
		SelectedFG:  lipgloss.Color("0"),
		SelectedBG:  lipgloss.Color("14"),
		MenuFG:      lipgloss.Color("250"),
		DisabledFG:  lipgloss.Color("241"),
		StatusError: lipgloss.Color("9"),
		StatusInfo:  lipgloss.Color("10"),
		FooterFG:    lipgloss.Color("245"),
		BorderFG:    lipgloss.Color("238"),
	}
}

type styles struct {
	property, operator, value, logical, bracket lipgloss.Style
	input, ghost                                lipgloss.Style
	selected, menu, disabled                    lipgloss.Style
	errText, info, footer, border               lipgloss.Style
}

func newStyles(t Theme, noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			property: plain, operator: plain, value: plain, logical: plain, bracket: plain,
			input: plain, ghost: plain,
			selected: plain.Reverse(true), menu: plain, disabled: plain,
			errText: plain, info: plain, footer: plain, border: plain,
		}
	}
	return styles{
		property: lipgloss.NewStyle().Bold(true).Foreground(t.PropertyFG),
		operator: lipgloss.NewStyle().Foreground(t.OperatorFG),
		value:    lipgloss.NewStyle().Foreground(t.ValueFG),
		logical:  lipgloss.NewStyle().Bold(true).Foreground(t.LogicalFG),
		bracket:  lipgloss.NewStyle().Foreground(t.BracketFG),
		input:    lipgloss.NewStyle().Foreground(t.InputFG).Background(t.InputBG),
		ghost:    lipgloss.NewStyle().Foreground(t.GhostFG),
		selected: lipgloss.NewStyle().Foreground(t.SelectedFG).Background(t.SelectedBG),
		menu:     lipgloss.NewStyle().Foreground(t.MenuFG),
		disabled: lipgloss.NewStyle().Italic(true).Foreground(t.DisabledFG),
		errText:  lipgloss.NewStyle().Foreground(t.StatusError),
		info:     lipgloss.NewStyle().Foreground(t.StatusInfo),
		footer:   lipgloss.NewStyle().Foreground(t.FooterFG),
		border:   lipgloss.NewStyle().Foreground(t.BorderFG),
	}
}
