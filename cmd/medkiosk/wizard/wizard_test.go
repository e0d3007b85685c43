package wizard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/intake"
	"github.com/mrsinham/medkiosk/internal/speech"
	"github.com/mrsinham/medkiosk/internal/workflow"
)

type fakeAnalyzer struct {
	calls int
	err   error
}

func (f *fakeAnalyzer) Analyze(context.Context, intake.Record) (*backend.Recommendation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &backend.Recommendation{
		MainMedicines: []backend.MainMedicine{{Name: "Paracetamol 500mg", QuantityPerDose: 1}},
		DosesPerDay:   3,
		TotalDays:     3,
		Diagnosis:     "Cảm thông thường",
	}, nil
}

type fakePrescriber struct {
	calls int
}

func (f *fakePrescriber) Confirm(context.Context, intake.Record, *backend.Recommendation) (*backend.Prescription, error) {
	f.calls++
	return &backend.Prescription{
		PrescriptionID: 1000 + int64(f.calls),
		TotalPrice:     13500,
		Items:          []backend.PrescriptionItem{{Name: "Paracetamol 500mg", TotalQuantity: 9, Price: 13500}},
	}, nil
}

type fakeRecognizer struct {
	text string
}

func (f fakeRecognizer) Listen(context.Context, string) (string, error) {
	return f.text, nil
}

type fakeRegistrar struct {
	records []intake.Record
}

func (f *fakeRegistrar) CreatePatient(_ context.Context, r intake.Record) (*backend.Patient, error) {
	f.records = append(f.records, r)
	return &backend.Patient{ID: 7}, nil
}

func newTestWizard(t *testing.T, opts Options) (*Wizard, *fakeAnalyzer, *fakePrescriber) {
	t.Helper()
	a := &fakeAnalyzer{}
	p := &fakePrescriber{}
	opts.Controller = workflow.NewController(a, p)
	if opts.Recognizer == nil {
		opts.Recognizer = fakeRecognizer{text: "ho khan"}
	}
	opts.ReceiptDir = t.TempDir()
	opts.Now = func() time.Time { return time.Date(2026, time.March, 5, 9, 7, 0, 0, time.UTC) }
	return NewWizard(opts), a, p
}

func enter() tea.Msg         { return tea.KeyMsg{Type: tea.KeyEnter} }
func esc() tea.Msg           { return tea.KeyMsg{Type: tea.KeyEsc} }
func ctrlR() tea.Msg         { return tea.KeyMsg{Type: tea.KeyCtrlR} }
func runes(s string) tea.Msg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(w *Wizard, msg tea.Msg) tea.Cmd {
	_, cmd := w.Update(msg)
	return cmd
}

// drain executes cmd, flattening batches.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// run executes cmd and feeds the wizard's own results back into it.
func run(w *Wizard, cmd tea.Cmd) {
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case fetchDoneMsg, captureDoneMsg, patientRegisteredMsg:
			w.Update(msg)
		}
	}
}

func toDictation(t *testing.T, w *Wizard) {
	t.Helper()
	if err := w.ctrl.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatalf("SubmitVitals failed: %v", err)
	}
	w.transitionToDictation(nil)
}

// toRecommendation answers every topic and returns the fetch command.
func toRecommendation(t *testing.T, w *Wizard) tea.Cmd {
	t.Helper()
	toDictation(t, w)
	send(w, runes("đau đầu"))
	var cmd tea.Cmd
	for i := 0; i < w.session.Total(); i++ {
		cmd = send(w, enter())
	}
	if w.ctrl.Step() != workflow.StepRecommendation {
		t.Fatalf("Expected recommendation step, got %s", w.ctrl.Step())
	}
	return cmd
}

func toReceipt(t *testing.T, w *Wizard) {
	t.Helper()
	run(w, toRecommendation(t, w))
	run(w, send(w, enter()))
	if w.ctrl.State().Prescription == nil {
		t.Fatal("Expected a prescription")
	}
	send(w, enter())
	if w.ctrl.Step() != workflow.StepReceipt {
		t.Fatalf("Expected receipt step, got %s", w.ctrl.Step())
	}
}

func TestWizard_FullFlowSavesReceipt(t *testing.T) {
	w, a, p := newTestWizard(t, Options{})

	cmd := toRecommendation(t, w)
	if !w.ctrl.State().Pending {
		t.Error("Expected the analysis to be pending")
	}
	if got := w.ctrl.Record().Symptoms; got != "đau đầu" {
		t.Errorf("Expected typed symptoms to be committed, got %q", got)
	}

	run(w, cmd)
	if w.ctrl.State().Recommendation == nil {
		t.Fatal("Expected a recommendation after the fetch completes")
	}

	run(w, send(w, enter()))
	send(w, enter())
	if w.ctrl.Step() != workflow.StepReceipt {
		t.Fatalf("Expected receipt step, got %s", w.ctrl.Step())
	}
	if a.calls != 1 || p.calls != 1 {
		t.Errorf("Expected one call each, got analyze=%d confirm=%d", a.calls, p.calls)
	}

	send(w, runes("s"))
	data, err := os.ReadFile(filepath.Join(w.receiptDir, "don-thuoc-1001.txt"))
	if err != nil {
		t.Fatalf("Expected saved receipt: %v", err)
	}
	for _, want := range []string{"TỔNG TIỀN: 13.500 ₫", "5 tháng 3, 2026 lúc 09:07", "Giới tính: Nữ"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Expected receipt to contain %q", want)
		}
	}
}

func TestWizard_SymptomsRequired(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	toDictation(t, w)

	send(w, enter())
	if w.session.Index() != 0 {
		t.Errorf("Expected to stay on the symptoms topic, got index %d", w.session.Index())
	}
	if w.ctrl.Step() != workflow.StepDictation {
		t.Errorf("Expected dictation step, got %s", w.ctrl.Step())
	}
}

func TestWizard_CaptureFillsActiveTopic(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	toDictation(t, w)

	cmd := send(w, ctrlR())
	if !w.session.Listening() {
		t.Fatal("Expected the session to be listening")
	}

	run(w, cmd)
	if w.session.Listening() {
		t.Error("Expected listening to end with the capture")
	}
	if got := w.session.Text(); got != "ho khan" {
		t.Errorf("Expected captured text, got %q", got)
	}
	if got := w.dictationScreen.Value(); got != "ho khan" {
		t.Errorf("Expected the text box to show the capture, got %q", got)
	}
	if w.cancelCapture != nil {
		t.Error("Expected the capture context to be released")
	}
}

func TestWizard_StoppedCaptureIsIgnored(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	toDictation(t, w)

	cmd := send(w, ctrlR())
	send(w, ctrlR())
	if w.session.Listening() {
		t.Fatal("Expected the second ctrl+r to stop the capture")
	}

	run(w, cmd)
	if got := w.session.Text(); got != "" {
		t.Errorf("Expected the stopped capture to be dropped, got %q", got)
	}
}

func TestWizard_CaptureUnsupported(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{Recognizer: speech.Unsupported{}})
	toDictation(t, w)

	if cmd := send(w, ctrlR()); cmd != nil {
		t.Error("Expected no capture command without speech support")
	}
	if w.session.Listening() {
		t.Error("Expected no capture without speech support")
	}
}

func TestWizard_RetryAfterError(t *testing.T) {
	w, a, _ := newTestWizard(t, Options{})
	a.err = &backend.NetworkError{Err: errors.New("connection refused")}

	run(w, toRecommendation(t, w))
	st := w.ctrl.State()
	if st.LastError != backend.MsgNetworkFallback {
		t.Fatalf("Expected network message, got %q", st.LastError)
	}

	send(w, enter())
	if w.ctrl.Step() != workflow.StepRecommendation {
		t.Error("Expected enter to do nothing on an error")
	}

	a.err = nil
	run(w, send(w, runes("r")))
	if w.ctrl.State().Recommendation == nil {
		t.Error("Expected a recommendation after retry")
	}
	if a.calls != 2 {
		t.Errorf("Expected 2 analyze calls, got %d", a.calls)
	}
}

func TestWizard_BackResumesDictation(t *testing.T) {
	w, a, _ := newTestWizard(t, Options{})
	run(w, toRecommendation(t, w))

	send(w, esc())
	if w.ctrl.Step() != workflow.StepDictation {
		t.Fatalf("Expected dictation step, got %s", w.ctrl.Step())
	}
	if w.session.Index() != w.session.Total()-1 {
		t.Errorf("Expected to resume on the last topic, got %d", w.session.Index())
	}

	// Unchanged answers reuse the cached recommendation.
	cmd := send(w, enter())
	run(w, cmd)
	if a.calls != 1 {
		t.Errorf("Expected cached recommendation, got %d analyze calls", a.calls)
	}

	send(w, esc())
	for i := 0; i < w.session.Total(); i++ {
		send(w, esc())
	}
	if w.ctrl.Step() != workflow.StepVitals {
		t.Errorf("Expected vitals step, got %s", w.ctrl.Step())
	}
}

func TestWizard_BackAbandonsPendingFetch(t *testing.T) {
	w, a, _ := newTestWizard(t, Options{})
	cmd := toRecommendation(t, w)

	send(w, esc())
	run(w, cmd)
	if w.ctrl.State().Recommendation != nil {
		t.Error("Expected the abandoned result to be dropped")
	}
	if w.ctrl.State().Pending {
		t.Error("Expected nothing pending after going back")
	}
	if a.calls != 1 {
		t.Errorf("Expected 1 analyze call, got %d", a.calls)
	}
}

func TestWizard_ExportIntake(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	toReceipt(t, w)

	send(w, runes("x"))
	matches, err := filepath.Glob(filepath.Join(w.receiptDir, "intake-*.yaml"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("Expected one exported intake, got %v (%v)", matches, err)
	}

	r, err := intake.LoadFromYAML(matches[0])
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	if !r.Equal(w.ctrl.Record()) {
		t.Errorf("Expected the exported intake to match the record, got %+v", r)
	}
}

func TestWizard_NewCustomerResets(t *testing.T) {
	prefill := &intake.Record{Gender: intake.GenderMale, Age: 40, HeightCm: 170, WeightKg: 70, Symptoms: "sổ mũi"}
	w, _, _ := newTestWizard(t, Options{Prefill: prefill})

	toDictation(t, w)
	if got := w.session.Text(); got != "sổ mũi" {
		t.Errorf("Expected prefilled symptoms, got %q", got)
	}
	w.reset()
	w.transitionToVitals()

	toReceipt(t, w)
	firstSession := w.ctrl.State().SessionID

	send(w, runes("n"))
	if w.ctrl.Step() != workflow.StepVitals {
		t.Fatalf("Expected vitals step, got %s", w.ctrl.Step())
	}
	r := w.ctrl.Record()
	if r.HasVitals() || r.HasSymptoms() {
		t.Errorf("Expected an empty record, got %+v", r)
	}
	if w.session != nil || w.prefill != nil {
		t.Error("Expected the session and prefill to be cleared")
	}
	if w.ctrl.State().SessionID == firstSession {
		t.Error("Expected a new session ID")
	}
}

func TestWizard_RegistersPatient(t *testing.T) {
	reg := &fakeRegistrar{}
	w, _, _ := newTestWizard(t, Options{Registrar: reg})
	if err := w.ctrl.SubmitVitals(intake.GenderMale, 40, 170, 70); err != nil {
		t.Fatalf("SubmitVitals failed: %v", err)
	}

	run(w, w.registerPatient())
	if len(reg.records) != 1 || reg.records[0].Age != 40 {
		t.Errorf("Expected the vitals to be registered, got %+v", reg.records)
	}
}

func TestWizard_QuitFromReceipt(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	toReceipt(t, w)

	if cmd := send(w, runes("q")); cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if !w.finished {
		t.Error("Expected the wizard to be finished")
	}
}

func TestWizard_ViewShowsProgress(t *testing.T) {
	w, _, _ := newTestWizard(t, Options{})
	w.Init()
	if !strings.Contains(w.View(), "Bước 1/5") {
		t.Errorf("Expected step progress in view:\n%s", w.View())
	}
}
