package screens

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/components"
	"github.com/mrsinham/medkiosk/internal/intake"
)

// VitalsScreen collects gender, age, height and weight
type VitalsScreen struct {
	form  *huh.Form
	guide *components.Guide

	gender string
	age    string
	height string
	weight string

	err       string
	done      bool
	cancelled bool
	winWidth  int
	winHeight int
}

// NewVitalsScreen creates the vitals form, pre-filled from r when it
// already holds vitals.
func NewVitalsScreen(r intake.Record) *VitalsScreen {
	s := &VitalsScreen{
		guide: components.NewGuide(),
	}
	if r.Gender != "" {
		s.gender = string(r.Gender)
	}
	if r.Age > 0 {
		s.age = strconv.Itoa(r.Age)
	}
	if r.HeightCm > 0 {
		s.height = strconv.Itoa(r.HeightCm)
	}
	if r.WeightKg > 0 {
		s.weight = strconv.Itoa(r.WeightKg)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key(intake.FieldGender).
				Title("Giới tính").
				Options(
					huh.NewOption("Chọn giới tính", ""),
					huh.NewOption("Nam", string(intake.GenderMale)),
					huh.NewOption("Nữ", string(intake.GenderFemale)),
				).
				Value(&s.gender).
				Validate(func(str string) error {
					return intake.ValidateGender(intake.Gender(str))
				}),

			huh.NewInput().
				Key(intake.FieldAge).
				Title("Tuổi").
				Placeholder("30").
				Value(&s.age).
				Validate(func(str string) error {
					_, err := intake.ParseBounded(intake.FieldAge, str, intake.MinAge, intake.MaxAge)
					return err
				}),

			huh.NewInput().
				Key(intake.FieldHeight).
				Title("Chiều cao (cm)").
				Placeholder("165").
				Value(&s.height).
				Validate(func(str string) error {
					_, err := intake.ParseBounded(intake.FieldHeight, str, intake.MinHeight, intake.MaxHeight)
					return err
				}),

			huh.NewInput().
				Key(intake.FieldWeight).
				Title("Cân nặng (kg)").
				Placeholder("60").
				Value(&s.weight).
				Validate(func(str string) error {
					_, err := intake.ParseBounded(intake.FieldWeight, str, intake.MinWeight, intake.MaxWeight)
					return err
				}),
		),
	).WithShowHelp(false).WithShowErrors(true)

	return s
}

// Init implements tea.Model
func (s *VitalsScreen) Init() tea.Cmd {
	return s.form.Init()
}

// Update implements tea.Model
func (s *VitalsScreen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			s.cancelled = true
			return s, tea.Quit
		}
	case tea.WindowSizeMsg:
		s.winWidth = msg.Width
		s.winHeight = msg.Height
		s.guide.SetWidth(msg.Width / 2)
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if focused := s.form.GetFocusedField(); focused != nil {
		s.guide.Show(focused.GetKey())
	}

	if s.form.State == huh.StateCompleted {
		s.done = true
	}

	return s, cmd
}

// View implements tea.Model
func (s *VitalsScreen) View() string {
	if s.cancelled {
		return "Đã hủy.\n"
	}

	title := components.TitleStyle.Render("THÔNG TIN CƠ BẢN")
	parts := []string{title, s.form.View()}
	if s.err != "" {
		parts = append(parts, components.ErrorStyle.Render(s.err))
	}
	parts = append(parts,
		"",
		s.guide.View(),
		"",
		components.HintStyle.Render("Tab: Mục tiếp theo | Enter: Tiếp tục | Esc: Thoát"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Done returns true if the form was completed
func (s *VitalsScreen) Done() bool { return s.done }

// Cancelled returns true if the user cancelled
func (s *VitalsScreen) Cancelled() bool { return s.cancelled }

// SetError shows a message the form validators could not catch.
func (s *VitalsScreen) SetError(msg string) { s.err = msg }

// Values returns the submitted vitals. The form validators guarantee the
// numbers parse; the controller re-validates them.
func (s *VitalsScreen) Values() (intake.Gender, int, int, int) {
	age, _ := strconv.Atoi(strings.TrimSpace(s.age))
	height, _ := strconv.Atoi(strings.TrimSpace(s.height))
	weight, _ := strconv.Atoi(strings.TrimSpace(s.weight))
	return intake.Gender(s.gender), age, height, weight
}
