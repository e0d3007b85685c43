package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("35")).
		MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		MarginBottom(1)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	StatusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("214"))

	HintStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	BoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("35")).
		Padding(1, 2)
)

var (
	doneDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Render("●")
	currentDot = lipgloss.NewStyle().Foreground(lipgloss.Color("35")).Bold(true).Render("◉")
	todoDot    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render("○")
)

// Progress renders the step header: one dot per step, then "Bước n/total · title".
func Progress(index, total int, title string) string {
	dots := make([]string, total)
	for i := range dots {
		switch {
		case i < index:
			dots[i] = doneDot
		case i == index:
			dots[i] = currentDot
		default:
			dots[i] = todoDot
		}
	}
	label := SubtitleStyle.UnsetMarginBottom().Render(fmt.Sprintf("Bước %d/%d · %s", index+1, total, title))
	return strings.Join(dots, " ") + "  " + label
}
