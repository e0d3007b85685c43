// Package wizard is the terminal front end of the kiosk: one screen per
// workflow step, driven by a workflow.Controller.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/components"
	"github.com/mrsinham/medkiosk/cmd/medkiosk/wizard/screens"
	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/dictation"
	"github.com/mrsinham/medkiosk/internal/intake"
	"github.com/mrsinham/medkiosk/internal/receipt"
	"github.com/mrsinham/medkiosk/internal/speech"
	"github.com/mrsinham/medkiosk/internal/workflow"
)

// PatientRegistrar records a patient's vitals with the service.
type PatientRegistrar interface {
	CreatePatient(ctx context.Context, r intake.Record) (*backend.Patient, error)
}

// Options wires the wizard to its collaborators.
type Options struct {
	Controller *workflow.Controller
	// Recognizer captures spoken answers; nil means typing only.
	Recognizer speech.Recognizer
	// Registrar, when set, is called once the vitals are accepted.
	Registrar  PatientRegistrar
	Language   string
	ReceiptDir string
	// Prefill seeds the first session's forms.
	Prefill *intake.Record
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Messages produced by the wizard's own commands.
type (
	fetchDoneMsg struct {
		completion workflow.Completion
	}

	captureDoneMsg struct {
		id   int
		text string
		err  error
	}

	patientRegisteredMsg struct {
		patient *backend.Patient
		err     error
	}
)

// Wizard is the main orchestrator for the kiosk interface.
type Wizard struct {
	ctrl       *workflow.Controller
	recognizer speech.Recognizer
	registrar  PatientRegistrar
	language   string
	receiptDir string
	prefill    *intake.Record
	log        zerolog.Logger
	now        func() time.Time

	// Screen instances
	vitalsScreen    *screens.VitalsScreen
	dictationScreen *screens.DictationScreen
	resultScreen    *screens.ResultScreen
	receiptScreen   *screens.ReceiptScreen

	session       *dictation.Session
	cancelFetch   context.CancelFunc
	cancelCapture context.CancelFunc
	issued        time.Time

	// Window size
	width  int
	height int

	// Final state
	cancelled bool
	finished  bool
}

// NewWizard creates the wizard at the vitals step.
func NewWizard(opts Options) *Wizard {
	w := &Wizard{
		ctrl:       opts.Controller,
		recognizer: opts.Recognizer,
		registrar:  opts.Registrar,
		language:   opts.Language,
		receiptDir: opts.ReceiptDir,
		prefill:    opts.Prefill,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if w.recognizer == nil {
		w.recognizer = speech.Unsupported{}
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.language == "" {
		w.language = "vi-VN"
	}

	w.vitalsScreen = screens.NewVitalsScreen(w.vitalsSeed())
	return w
}

// Init implements tea.Model.
func (w *Wizard) Init() tea.Cmd {
	return w.vitalsScreen.Init()
}

// Update implements tea.Model.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	case fetchDoneMsg:
		return w.handleFetchDone(msg)
	case captureDoneMsg:
		return w.handleCaptureDone(msg)
	case patientRegisteredMsg:
		if msg.err != nil {
			w.log.Warn().Err(msg.err).Msg("patient registration failed")
		} else if msg.patient != nil {
			w.log.Info().Int64("patient_id", msg.patient.ID).Msg("patient registered")
		}
		return w, nil
	}

	switch w.ctrl.Step() {
	case workflow.StepVitals:
		return w.updateVitals(msg)
	case workflow.StepDictation:
		return w.updateDictation(msg)
	case workflow.StepRecommendation, workflow.StepPrescription:
		return w.updateResult(msg)
	case workflow.StepReceipt:
		return w.updateReceipt(msg)
	}

	return w, nil
}

// View implements tea.Model.
func (w *Wizard) View() string {
	step := w.ctrl.Step()

	var body string
	switch step {
	case workflow.StepVitals:
		body = w.vitalsScreen.View()
	case workflow.StepDictation:
		body = w.dictationScreen.View()
	case workflow.StepRecommendation, workflow.StepPrescription:
		body = w.resultScreen.View()
	case workflow.StepReceipt:
		body = w.receiptScreen.View()
	}

	header := components.Progress(int(step), len(workflow.Steps()), step.Title())
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

// vitalsSeed is what the vitals form starts with: the record's vitals if
// any, else the prefill.
func (w *Wizard) vitalsSeed() intake.Record {
	r := w.ctrl.Record()
	if !r.HasVitals() && w.prefill != nil {
		return *w.prefill
	}
	return r
}

// dictationSeed is what a new dictation session starts with.
func (w *Wizard) dictationSeed() intake.Record {
	r := w.ctrl.Record()
	if !r.HasSymptoms() && w.prefill != nil {
		r.Symptoms = w.prefill.Symptoms
		r.Allergies = w.prefill.Allergies
		r.UnderlyingConditions = w.prefill.UnderlyingConditions
		r.CurrentMedications = w.prefill.CurrentMedications
	}
	return r
}

func (w *Wizard) resize(m tea.Model) {
	if w.width > 0 {
		m.Update(tea.WindowSizeMsg{Width: w.width, Height: w.height})
	}
}

// transitionToVitals shows the vitals form.
func (w *Wizard) transitionToVitals() (tea.Model, tea.Cmd) {
	w.vitalsScreen = screens.NewVitalsScreen(w.vitalsSeed())
	w.resize(w.vitalsScreen)
	return w, w.vitalsScreen.Init()
}

// updateVitals handles updates on the vitals step.
func (w *Wizard) updateVitals(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.vitalsScreen.Update(msg)
	if vs, ok := model.(*screens.VitalsScreen); ok {
		w.vitalsScreen = vs
	}

	if w.vitalsScreen.Cancelled() {
		w.cancelled = true
		return w, tea.Quit
	}

	if w.vitalsScreen.Done() {
		gender, age, height, weight := w.vitalsScreen.Values()
		if err := w.ctrl.SubmitVitals(gender, age, height, weight); err != nil {
			w.vitalsScreen = screens.NewVitalsScreen(w.vitalsSeed())
			w.vitalsScreen.SetError(errorText(err))
			return w, w.vitalsScreen.Init()
		}
		return w.transitionToDictation(w.registerPatient())
	}

	return w, cmd
}

func errorText(err error) string {
	var ve *intake.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// registerPatient sends the vitals to the service, best effort.
func (w *Wizard) registerPatient() tea.Cmd {
	if w.registrar == nil {
		return nil
	}
	reg := w.registrar
	r := w.ctrl.Record()

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		p, err := reg.CreatePatient(ctx, r)
		return patientRegisteredMsg{patient: p, err: err}
	}
}

// transitionToDictation shows the dictation step, resuming the current
// session if there is one.
func (w *Wizard) transitionToDictation(extra tea.Cmd) (tea.Model, tea.Cmd) {
	if w.session == nil {
		w.session = dictation.NewSession(w.dictationSeed())
	}
	w.dictationScreen = screens.NewDictationScreen(w.session, speech.Supported(w.recognizer))
	w.resize(w.dictationScreen)
	return w, tea.Batch(extra, w.dictationScreen.Init())
}

// updateDictation handles updates on the dictation step.
func (w *Wizard) updateDictation(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.dictationScreen.Update(msg)
	if ds, ok := model.(*screens.DictationScreen); ok {
		w.dictationScreen = ds
	}

	if w.dictationScreen.Cancelled() {
		w.stopCapture()
		w.cancelled = true
		return w, tea.Quit
	}

	switch w.dictationScreen.Action() {
	case screens.DictationActionCapture:
		return w, tea.Batch(cmd, w.startCapture())

	case screens.DictationActionStopCapture:
		w.stopCapture()

	case screens.DictationActionNext:
		outcome, err := w.session.AdvanceTopic()
		w.releaseCapture()
		if err != nil {
			w.dictationScreen.SetError(errorText(err))
			return w, cmd
		}
		if outcome == dictation.OutcomeNext {
			w.dictationScreen.Reload()
			return w, cmd
		}

		f, err := w.ctrl.CompleteDictation(w.session.Captured())
		if err != nil {
			w.dictationScreen.SetError(errorText(err))
			return w, cmd
		}
		return w.transitionToResult(f)

	case screens.DictationActionBack:
		outcome := w.session.RetreatTopic()
		w.releaseCapture()
		if outcome == dictation.OutcomePrevious {
			w.dictationScreen.Reload()
			return w, cmd
		}
		w.ctrl.Retreat()
		return w.transitionToVitals()
	}

	return w, cmd
}

// startCapture listens for one utterance off the UI loop.
func (w *Wizard) startCapture() tea.Cmd {
	id, err := w.session.StartCapture()
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancelCapture = cancel
	rec := w.recognizer
	lang := w.language
	w.log.Debug().Int("capture", id).Str("topic", w.session.Active().String()).Msg("capture started")

	return func() tea.Msg {
		text, err := rec.Listen(ctx, lang)
		return captureDoneMsg{id: id, text: text, err: err}
	}
}

// stopCapture abandons the active capture and releases the microphone.
func (w *Wizard) stopCapture() {
	if w.session != nil {
		w.session.StopCapture()
	}
	w.releaseCapture()
}

// releaseCapture cancels the capture context once the session is no
// longer listening.
func (w *Wizard) releaseCapture() {
	if w.cancelCapture == nil {
		return
	}
	if w.session != nil && w.session.Listening() {
		return
	}
	w.cancelCapture()
	w.cancelCapture = nil
}

func (w *Wizard) handleCaptureDone(msg captureDoneMsg) (tea.Model, tea.Cmd) {
	if w.session == nil {
		return w, nil
	}

	if msg.err != nil {
		if w.session.CaptureFailed(msg.id, msg.err) {
			w.log.Info().Err(msg.err).Int("capture", msg.id).Msg("capture failed")
		}
	} else if w.session.CaptureSucceeded(msg.id, msg.text) {
		if w.ctrl.Step() == workflow.StepDictation && w.dictationScreen != nil {
			w.dictationScreen.Reload()
		}
	}
	w.releaseCapture()
	return w, nil
}

// transitionToResult shows the recommendation or prescription step and
// runs its fetch, if any.
func (w *Wizard) transitionToResult(f workflow.Fetch) (tea.Model, tea.Cmd) {
	w.resultScreen = screens.NewResultScreen(w.ctrl.Step())
	w.resultScreen.SetState(w.ctrl.State())
	w.resize(w.resultScreen)
	return w, tea.Batch(w.resultScreen.Init(), w.runFetch(f))
}

// runFetch turns a Fetch into a command whose result re-enters the loop.
func (w *Wizard) runFetch(f workflow.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	w.abortFetch()
	ctx, cancel := context.WithCancel(context.Background())
	w.cancelFetch = cancel

	return func() tea.Msg {
		return fetchDoneMsg{completion: f(ctx)}
	}
}

func (w *Wizard) abortFetch() {
	if w.cancelFetch != nil {
		w.cancelFetch()
		w.cancelFetch = nil
	}
}

func (w *Wizard) handleFetchDone(msg fetchDoneMsg) (tea.Model, tea.Cmd) {
	if !w.ctrl.Complete(msg.completion) {
		return w, nil
	}
	w.abortFetch()
	if w.resultScreen != nil {
		w.resultScreen.SetState(w.ctrl.State())
	}
	return w, nil
}

// updateResult handles updates on the recommendation and prescription steps.
func (w *Wizard) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.resultScreen.Update(msg)
	if rs, ok := model.(*screens.ResultScreen); ok {
		w.resultScreen = rs
	}

	if w.resultScreen.Cancelled() {
		w.abortFetch()
		w.cancelled = true
		return w, tea.Quit
	}

	switch w.resultScreen.Action() {
	case screens.ResultActionProceed:
		f, err := w.ctrl.Advance()
		if err != nil {
			w.log.Debug().Err(err).Msg("advance refused")
			return w, cmd
		}
		if w.ctrl.Step() == workflow.StepReceipt {
			return w.transitionToReceipt()
		}
		return w.transitionToResult(f)

	case screens.ResultActionRetry:
		f := w.ctrl.Retry()
		w.resultScreen.SetState(w.ctrl.State())
		return w, tea.Batch(cmd, w.resultScreen.Init(), w.runFetch(f))

	case screens.ResultActionBack:
		w.abortFetch()
		w.ctrl.Retreat()
		if w.ctrl.Step() == workflow.StepDictation {
			return w.transitionToDictation(nil)
		}
		return w.transitionToResult(nil)
	}

	return w, cmd
}

// transitionToReceipt renders the receipt for the stored prescription.
func (w *Wizard) transitionToReceipt() (tea.Model, tea.Cmd) {
	w.issued = w.now()
	text := receipt.Render(w.ctrl.Record(), w.ctrl.State().Prescription, w.issued)
	w.receiptScreen = screens.NewReceiptScreen(text)
	w.resize(w.receiptScreen)
	return w, w.receiptScreen.Init()
}

// updateReceipt handles updates on the receipt step.
func (w *Wizard) updateReceipt(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := w.receiptScreen.Update(msg)
	if rs, ok := model.(*screens.ReceiptScreen); ok {
		w.receiptScreen = rs
	}

	switch w.receiptScreen.Action() {
	case screens.ReceiptActionSave:
		path, err := receipt.Save(w.receiptDir, w.ctrl.Record(), w.ctrl.State().Prescription, w.issued)
		if err != nil {
			w.log.Error().Err(err).Msg("saving receipt failed")
			w.receiptScreen.SetNotice("Không thể lưu hóa đơn: "+err.Error(), true)
		} else {
			w.log.Info().Str("path", path).Msg("receipt saved")
			w.receiptScreen.SetNotice("Đã lưu hóa đơn: "+path, false)
		}

	case screens.ReceiptActionExport:
		path, err := w.exportIntake()
		if err != nil {
			w.log.Error().Err(err).Msg("exporting intake failed")
			w.receiptScreen.SetNotice("Không thể xuất hồ sơ: "+err.Error(), true)
		} else {
			w.receiptScreen.SetNotice("Đã xuất hồ sơ: "+path, false)
		}

	case screens.ReceiptActionNewCustomer:
		w.reset()
		return w.transitionToVitals()

	case screens.ReceiptActionBack:
		w.ctrl.Retreat()
		return w.transitionToResult(nil)

	case screens.ReceiptActionQuit:
		w.finished = true
		return w, tea.Quit
	}

	return w, cmd
}

// exportIntake saves the session's intake as YAML next to the receipts,
// so it can be replayed with --from.
func (w *Wizard) exportIntake() (string, error) {
	dir := w.receiptDir
	if dir == "" {
		dir = "."
	}
	id := w.ctrl.State().SessionID
	if len(id) > 8 {
		id = id[:8]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("intake-%s.yaml", id))

	r := w.ctrl.Record()
	if err := intake.SaveToYAML(&r, path); err != nil {
		return "", err
	}
	return path, nil
}

// reset starts over for the next customer.
func (w *Wizard) reset() {
	w.abortFetch()
	w.stopCapture()
	w.ctrl.Reset()
	w.session = nil
	w.prefill = nil
	w.dictationScreen = nil
	w.resultScreen = nil
	w.receiptScreen = nil
}

// Run starts the interactive kiosk wizard.
func Run(opts Options) error {
	wizard := NewWizard(opts)
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	_, err := p.Run()
	wizard.abortFetch()
	wizard.stopCapture()
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	return nil
}
