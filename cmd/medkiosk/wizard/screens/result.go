package screens

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/components"
	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/receipt"
	"github.com/mrsinham/medkiosk/internal/workflow"
)

// ResultAction is what the patient asked for on a result screen.
type ResultAction int

const (
	ResultActionNone ResultAction = iota
	ResultActionProceed
	ResultActionRetry
	ResultActionBack
)

var (
	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("35")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// ResultScreen shows the outcome of the remote call of the
// recommendation or prescription step: a spinner while it is pending, the
// error with retry and back actions, or the result.
type ResultScreen struct {
	step    workflow.Step
	state   workflow.State
	spinner spinner.Model

	action    ResultAction
	cancelled bool
	width     int
}

// NewResultScreen creates the screen for step, which must be
// StepRecommendation or StepPrescription.
func NewResultScreen(step workflow.Step) *ResultScreen {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))

	return &ResultScreen{step: step, spinner: sp, width: 80}
}

// Init implements tea.Model
func (s *ResultScreen) Init() tea.Cmd {
	return s.spinner.Tick
}

// SetState gives the screen the workflow state to render.
func (s *ResultScreen) SetState(st workflow.State) { s.state = st }

// Update implements tea.Model
func (s *ResultScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			s.cancelled = true
			return s, tea.Quit
		case "esc", "b":
			s.action = ResultActionBack
		case "r":
			if s.state.LastError != "" && !s.state.Pending {
				s.action = ResultActionRetry
			}
		case "enter":
			if s.ready() {
				s.action = ResultActionProceed
			}
		}
		return s, nil
	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ResultScreen) ready() bool {
	if s.state.Pending {
		return false
	}
	switch s.step {
	case workflow.StepRecommendation:
		return s.state.Recommendation != nil
	case workflow.StepPrescription:
		return s.state.Prescription != nil
	default:
		return false
	}
}

// View implements tea.Model
func (s *ResultScreen) View() string {
	if s.cancelled {
		return "Đã hủy.\n"
	}

	title := components.TitleStyle.Render(strings.ToUpper(s.step.Title()))

	var body, hint string
	switch {
	case s.state.Pending:
		body = s.spinner.View() + " " + s.pendingText()
		hint = "Esc: Quay lại"
	case s.state.LastError != "":
		body = components.ErrorStyle.Render(s.state.LastError)
		hint = "R: Thử lại | Esc: Quay lại"
	case s.step == workflow.StepRecommendation && s.state.Recommendation != nil:
		body = RenderRecommendation(s.state.Recommendation)
		hint = "Enter: Xác nhận và tạo đơn | Esc: Quay lại"
	case s.step == workflow.StepPrescription && s.state.Prescription != nil:
		body = RenderPrescription(s.state.Prescription)
		hint = "Enter: Thanh toán | Esc: Quay lại"
	default:
		body = mutedStyle.Render("Chưa có dữ liệu.")
		hint = "Esc: Quay lại"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		body,
		"",
		components.HintStyle.Render(hint),
	)
}

func (s *ResultScreen) pendingText() string {
	if s.step == workflow.StepPrescription {
		return "Đang tạo đơn thuốc..."
	}
	return "Đang phân tích triệu chứng..."
}

// Action returns and clears the pending action.
func (s *ResultScreen) Action() ResultAction {
	a := s.action
	s.action = ResultActionNone
	return a
}

// Cancelled returns true if the user cancelled
func (s *ResultScreen) Cancelled() bool { return s.cancelled }

// RenderRecommendation formats a recommendation as returned by the
// service.
func RenderRecommendation(rec *backend.Recommendation) string {
	var sb strings.Builder

	if rec.EmergencyStatus {
		sb.WriteString(components.ErrorStyle.Render("⚠ Tình trạng khẩn cấp: vui lòng đến cơ sở y tế ngay."))
		sb.WriteString("\n\n")
	} else if rec.ShouldSeeDoctor {
		sb.WriteString(warningStyle.Render("⚠ Bạn nên gặp bác sĩ để được thăm khám."))
		sb.WriteString("\n\n")
	}

	if rec.Diagnosis != "" {
		fmt.Fprintf(&sb, "%s %s", sectionStyle.Render("Chẩn đoán:"), rec.Diagnosis)
		if rec.SeverityLevel != "" {
			fmt.Fprintf(&sb, " (mức độ: %s)", rec.SeverityLevel)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString(sectionStyle.Render("Thuốc chính"))
	sb.WriteString("\n")
	if len(rec.MainMedicines) == 0 {
		sb.WriteString(mutedStyle.Render("  Không có"))
		sb.WriteString("\n")
	}
	for _, m := range rec.MainMedicines {
		fmt.Fprintf(&sb, "  • %s: %d mỗi lần", m.Name, m.QuantityPerDose)
		if m.Reason != "" {
			sb.WriteString(mutedStyle.Render(" (" + m.Reason + ")"))
		}
		sb.WriteString("\n")
	}

	if len(rec.SupportingMedicines) > 0 {
		sb.WriteString("\n")
		sb.WriteString(sectionStyle.Render("Thuốc hỗ trợ"))
		sb.WriteString("\n")
		for _, m := range rec.SupportingMedicines {
			switch {
			case m.QuantityPerDay > 0:
				fmt.Fprintf(&sb, "  • %s: %d/ngày", m.Name, m.QuantityPerDay)
			case m.Quantity > 0:
				fmt.Fprintf(&sb, "  • %s: %d", m.Name, m.Quantity)
			default:
				fmt.Fprintf(&sb, "  • %s", m.Name)
			}
			if m.Reason != "" {
				sb.WriteString(mutedStyle.Render(" (" + m.Reason + ")"))
			}
			sb.WriteString("\n")
		}
	}

	if rec.DosesPerDay > 0 || rec.TotalDays > 0 {
		fmt.Fprintf(&sb, "\n%s %d lần/ngày trong %d ngày\n", sectionStyle.Render("Liệu trình:"), rec.DosesPerDay, rec.TotalDays)
	}
	if rec.RecommendationReasoning != "" {
		fmt.Fprintf(&sb, "\n%s\n%s\n", sectionStyle.Render("Giải thích"), rec.RecommendationReasoning)
	}
	if rec.SideEffectsWarning != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", warningStyle.Render("Tác dụng phụ:"), rec.SideEffectsWarning)
	}
	if rec.MedicalAdvice != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", sectionStyle.Render("Lời khuyên:"), rec.MedicalAdvice)
	}
	if rec.Disclaimer != "" {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(rec.Disclaimer))
	}

	return components.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// RenderPrescription formats the priced order. The total is the service's,
// never a sum computed here.
func RenderPrescription(p *backend.Prescription) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s #%d\n\n", sectionStyle.Render("Mã đơn:"), p.PrescriptionID)
	if len(p.Items) == 0 {
		sb.WriteString(mutedStyle.Render("Không có thông tin"))
		sb.WriteString("\n")
	}
	for _, it := range p.Items {
		fmt.Fprintf(&sb, "  %-32s x%-4d %s\n", it.Name, it.TotalQuantity, receipt.VND(it.Price))
	}
	fmt.Fprintf(&sb, "\n%s %s\n", sectionStyle.Render("Tổng tiền:"), priceStyle.Render(receipt.VND(p.TotalPrice)))

	if p.UsageInstructions != "" {
		fmt.Fprintf(&sb, "\n%s\n%s\n", sectionStyle.Render("Hướng dẫn sử dụng"), p.UsageInstructions)
	}
	if p.SideEffectsWarning != "" {
		fmt.Fprintf(&sb, "\n%s %s\n", warningStyle.Render("Tác dụng phụ:"), p.SideEffectsWarning)
	}
	if p.Disclaimer != "" {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render(p.Disclaimer))
	}

	return components.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
