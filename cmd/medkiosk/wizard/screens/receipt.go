package screens

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/components"
)

// ReceiptAction is what the customer chose on the receipt screen.
type ReceiptAction int

const (
	ReceiptActionNone ReceiptAction = iota
	ReceiptActionSave
	ReceiptActionExport
	ReceiptActionNewCustomer
	ReceiptActionBack
	ReceiptActionQuit
)

var successStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("42")).
	Bold(true)

// ReceiptScreen shows the final receipt
type ReceiptScreen struct {
	text      string
	notice    string
	noticeErr bool
	action    ReceiptAction
	width     int
}

// NewReceiptScreen creates the screen for an already rendered receipt.
func NewReceiptScreen(text string) *ReceiptScreen {
	return &ReceiptScreen{text: text, width: 80}
}

// Init implements tea.Model
func (s *ReceiptScreen) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (s *ReceiptScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			s.action = ReceiptActionQuit
		case "s", "p":
			s.action = ReceiptActionSave
		case "x":
			s.action = ReceiptActionExport
		case "n", "enter":
			s.action = ReceiptActionNewCustomer
		case "esc":
			s.action = ReceiptActionBack
		}
	case tea.WindowSizeMsg:
		s.width = msg.Width
	}
	return s, nil
}

// SetNotice shows the outcome of a save or export.
func (s *ReceiptScreen) SetNotice(msg string, isErr bool) {
	s.notice = msg
	s.noticeErr = isErr
}

// View implements tea.Model
func (s *ReceiptScreen) View() string {
	parts := []string{
		successStyle.Render("✔ Thanh toán thành công!"),
		"Thuốc của bạn đang được chuẩn bị. Vui lòng chờ trong giây lát.",
		"",
		components.BoxStyle.Render(s.text),
	}

	if s.notice != "" {
		style := components.StatusStyle
		if s.noticeErr {
			style = components.ErrorStyle
		}
		parts = append(parts, style.Render(s.notice))
	}

	parts = append(parts,
		"",
		components.HintStyle.Render("S: Lưu hóa đơn | X: Xuất hồ sơ | N: Khách hàng mới | Esc: Quay lại | Q: Thoát"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Action returns and clears the pending action.
func (s *ReceiptScreen) Action() ReceiptAction {
	a := s.action
	s.action = ReceiptActionNone
	return a
}
