package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	SuccessStyle     = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle     = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle       = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle      = lipgloss.NewStyle().Foreground(SubtleColor)
	TableHeaderStyle = lipgloss.NewStyle().Bold(true)
)

// StyleMessage picks a style from the wording of an alert line.
func StyleMessage(msg string) string {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "overspending"), strings.Contains(lower, "went over"), strings.Contains(lower, "blasted"):
		return ErrorStyle.Render(msg)
	case strings.Contains(lower, "careful"), strings.Contains(lower, "left in your"), strings.Contains(lower, "heads up"):
		return WarningStyle.Render(msg)
	default:
		return SuccessStyle.Render(msg)
	}
}
