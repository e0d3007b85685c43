package screens

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/components"
	"github.com/mrsinham/medkiosk/internal/dictation"
)

// DictationAction is what the patient asked for on the dictation screen.
type DictationAction int

const (
	DictationActionNone DictationAction = iota
	DictationActionCapture
	DictationActionStopCapture
	DictationActionNext
	DictationActionBack
)

var listeningStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true)

// DictationScreen shows one topic at a time with a text box the patient
// can type into or fill by voice.
type DictationScreen struct {
	session *dictation.Session
	input   textarea.Model
	guide   *components.Guide
	speech  bool

	action    DictationAction
	err       string
	cancelled bool
	width     int
}

// NewDictationScreen creates the screen over an existing session.
// speechSupported hides the voice hint on hosts without capture.
func NewDictationScreen(session *dictation.Session, speechSupported bool) *DictationScreen {
	ta := textarea.New()
	ta.ShowLineNumbers = false
	// Captured transcripts are written back through Edit; a cap here
	// would silently cut them.
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	s := &DictationScreen{
		session: session,
		input:   ta,
		guide:   components.NewGuide(),
		speech:  speechSupported,
		width:   60,
	}
	s.Reload()
	return s
}

// Init implements tea.Model
func (s *DictationScreen) Init() tea.Cmd {
	return s.input.Focus()
}

// Reload syncs the text box with the session's active topic.
func (s *DictationScreen) Reload() {
	topic := s.session.Active()
	s.input.SetValue(s.session.Text())
	s.input.Placeholder = topic.Prompt()
	s.guide.Show(topic.String())
	s.err = ""
}

// SetError shows a validation message under the text box.
func (s *DictationScreen) SetError(msg string) { s.err = msg }

// Update implements tea.Model
func (s *DictationScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "enter":
			s.action = DictationActionNext
			return s, nil
		case "esc":
			s.action = DictationActionBack
			return s, nil
		case "ctrl+r":
			if s.session.Listening() {
				s.action = DictationActionStopCapture
			} else if s.speech {
				s.action = DictationActionCapture
			}
			return s, nil
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
		w := msg.Width - 4
		if w > 80 {
			w = 80
		}
		if w > 20 {
			s.input.SetWidth(w)
		}
		s.guide.SetWidth(msg.Width / 2)
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	if _, ok := msg.(tea.KeyMsg); ok {
		s.session.Edit(s.input.Value())
		s.err = ""
	}
	return s, cmd
}

// View implements tea.Model
func (s *DictationScreen) View() string {
	if s.cancelled {
		return "Đã hủy.\n"
	}

	topic := s.session.Active()
	title := components.TitleStyle.Render(fmt.Sprintf("%s (%d/%d)", topic.Title(), s.session.Index()+1, s.session.Total()))

	parts := []string{
		title,
		topic.Prompt(),
		"",
		s.input.View(),
	}

	if s.session.Listening() {
		parts = append(parts, listeningStyle.Render("● "+s.session.Status()))
	} else if st := s.session.Status(); st != "" {
		parts = append(parts, components.StatusStyle.Render(st))
	}
	if s.err != "" {
		parts = append(parts, components.ErrorStyle.Render(s.err))
	}

	hint := "Enter: Tiếp tục | Esc: Quay lại"
	switch {
	case s.session.Listening():
		hint = "Ctrl+R: Dừng ghi âm | " + hint
	case s.speech:
		hint = "Ctrl+R: Nói | " + hint
	default:
		hint = "Nhập bằng bàn phím | " + hint
	}

	parts = append(parts,
		"",
		s.guide.View(),
		"",
		components.HintStyle.Render(hint),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Action returns and clears the pending action.
func (s *DictationScreen) Action() DictationAction {
	a := s.action
	s.action = DictationActionNone
	return a
}

// Cancelled returns true if the user cancelled
func (s *DictationScreen) Cancelled() bool { return s.cancelled }

// Value is the text box content.
func (s *DictationScreen) Value() string { return s.input.Value() }
