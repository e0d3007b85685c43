package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/help"
)

var (
	guideStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("35")).
		Padding(0, 2)

	guideLabelStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("35")).
		Bold(true)

	guideRequiredStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("196"))

	guideNoteStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		Italic(true)
)

const minGuideWidth = 30

// Guide shows what is being asked and how to answer, for the focused
// vitals field or the active dictation topic.
type Guide struct {
	key   string
	width int
}

// NewGuide creates a guide box of the default width.
func NewGuide() *Guide {
	return &Guide{width: 60}
}

// Show switches the guide to key.
func (g *Guide) Show(key string) { g.key = key }

// Key is the key currently shown.
func (g *Guide) Key() string { return g.key }

// SetWidth resizes the box.
func (g *Guide) SetWidth(width int) {
	g.width = max(width, minGuideWidth)
}

// View renders the guide
func (g *Guide) View() string {
	style := guideStyle.Width(g.width - 4)

	e, ok := help.Lookup(g.key)
	if !ok {
		return style.Render("Chọn một mục để xem hướng dẫn")
	}

	label := guideLabelStyle.Render(strings.ToUpper(e.Label))
	if e.Required {
		label += " " + guideRequiredStyle.Render("(bắt buộc)")
	}

	lines := []string{label, e.Ask}
	if len(e.Examples) > 0 {
		lines = append(lines, "Ví dụ: "+strings.Join(e.Examples, ", "))
	}
	if e.Note != "" {
		lines = append(lines, guideNoteStyle.Render(e.Note))
	}

	return style.Render(strings.Join(lines, "\n"))
}
