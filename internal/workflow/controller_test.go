package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/intake"
)

type fakeAnalyzer struct {
	calls   int
	records []intake.Record
	err     error
	rec     *backend.Recommendation
}

func (f *fakeAnalyzer) Analyze(_ context.Context, r intake.Record) (*backend.Recommendation, error) {
	f.calls++
	f.records = append(f.records, r)
	if f.err != nil {
		return nil, f.err
	}
	if f.rec != nil {
		return f.rec, nil
	}
	return &backend.Recommendation{
		MainMedicines: []backend.MainMedicine{{Name: "Paracetamol 500mg", QuantityPerDose: 1}},
		DosesPerDay:   3,
		TotalDays:     3,
	}, nil
}

type fakePrescriber struct {
	calls int
	recs  []*backend.Recommendation
	err   error
}

func (f *fakePrescriber) Confirm(_ context.Context, _ intake.Record, rec *backend.Recommendation) (*backend.Prescription, error) {
	f.calls++
	f.recs = append(f.recs, rec)
	if f.err != nil {
		return nil, f.err
	}
	return &backend.Prescription{
		PrescriptionID: 1000 + int64(f.calls),
		TotalPrice:     13500,
		Items:          []backend.PrescriptionItem{{Name: "Paracetamol 500mg", TotalQuantity: 9, Price: 13500}},
	}, nil
}

func newTestController() (*Controller, *fakeAnalyzer, *fakePrescriber) {
	a := &fakeAnalyzer{}
	p := &fakePrescriber{}
	return NewController(a, p), a, p
}

func symptomsOnly(text string) map[intake.Topic]string {
	return map[intake.Topic]string{intake.TopicSymptoms: text}
}

// run executes f, if any, and feeds its completion back.
func run(t *testing.T, c *Controller, f Fetch) {
	t.Helper()
	if f == nil {
		return
	}
	if !c.Complete(f(context.Background())) {
		t.Fatal("Expected completion to be applied")
	}
}

// toRecommendation drives a fresh controller to a fetched recommendation.
func toRecommendation(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatalf("SubmitVitals failed: %v", err)
	}
	f, err := c.CompleteDictation(symptomsOnly("đau đầu"))
	if err != nil {
		t.Fatalf("CompleteDictation failed: %v", err)
	}
	run(t, c, f)
}

func TestController_InitialState(t *testing.T) {
	c, _, _ := newTestController()
	s := c.State()

	if s.Step != StepVitals || s.Recommendation != nil || s.Prescription != nil || s.Pending || s.LastError != "" {
		t.Errorf("Unexpected initial state: %+v", s)
	}
	if s.SessionID == "" {
		t.Error("Expected a session ID")
	}
}

func TestController_ValidVitalsAdvance(t *testing.T) {
	tests := []struct {
		gender              intake.Gender
		age, height, weight int
	}{
		{intake.GenderMale, 1, 50, 10},
		{intake.GenderFemale, 120, 250, 200},
		{intake.GenderFemale, 30, 160, 55},
	}

	for _, tt := range tests {
		c, _, _ := newTestController()
		if err := c.SubmitVitals(tt.gender, tt.age, tt.height, tt.weight); err != nil {
			t.Errorf("SubmitVitals(%v, %d, %d, %d) failed: %v", tt.gender, tt.age, tt.height, tt.weight, err)
			continue
		}
		if c.Step() != StepDictation {
			t.Errorf("Expected dictation step, got %v", c.Step())
		}
	}
}

func TestController_InvalidVitalsStay(t *testing.T) {
	c, _, _ := newTestController()

	err := c.SubmitVitals(intake.GenderMale, 0, 170, 70)
	if !intake.IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if c.Step() != StepVitals {
		t.Errorf("Expected to stay on vitals, got %v", c.Step())
	}
	if c.State().LastError != "" {
		t.Error("ValidationError must not reach LastError")
	}
	if c.Record().HasVitals() {
		t.Error("Expected record unchanged")
	}
}

func TestController_AdvanceGatedOnCompletion(t *testing.T) {
	c, _, _ := newTestController()

	if _, err := c.Advance(); !errors.Is(err, ErrStepIncomplete) {
		t.Errorf("Expected ErrStepIncomplete on empty vitals, got %v", err)
	}
	if c.Step() != StepVitals {
		t.Errorf("Expected vitals, got %v", c.Step())
	}

	if err := c.SubmitVitals(intake.GenderMale, 40, 170, 70); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Advance(); !errors.Is(err, ErrStepIncomplete) {
		t.Errorf("Expected ErrStepIncomplete without symptoms, got %v", err)
	}
}

func TestController_RetreatAtFirstStepIsNoop(t *testing.T) {
	c, _, _ := newTestController()
	c.Retreat()
	if c.Step() != StepVitals {
		t.Errorf("Expected vitals, got %v", c.Step())
	}
}

func TestController_AdvanceAtReceiptIsNoop(t *testing.T) {
	c, _, _ := newTestController()
	toRecommendation(t, c)

	f, err := c.Advance()
	if err != nil {
		t.Fatal(err)
	}
	run(t, c, f)
	if _, err := c.Advance(); err != nil {
		t.Fatal(err)
	}
	if c.Step() != StepReceipt {
		t.Fatalf("Expected receipt, got %v", c.Step())
	}

	f, err = c.Advance()
	if err != nil || f != nil {
		t.Errorf("Expected no-op at receipt, got fetch=%v err=%v", f != nil, err)
	}
	if c.Step() != StepReceipt {
		t.Errorf("Expected to stay at receipt, got %v", c.Step())
	}
}

func TestController_CompleteDictationMergesAndAdvancesOnce(t *testing.T) {
	c, a, _ := newTestController()
	if err := c.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatal(err)
	}

	captured := map[intake.Topic]string{
		intake.TopicSymptoms:             "đau đầu, sốt",
		intake.TopicAllergies:            "Penicillin, Aspirin",
		intake.TopicUnderlyingConditions: "không có",
		intake.TopicCurrentMedications:   "",
	}
	f, err := c.CompleteDictation(captured)
	if err != nil {
		t.Fatalf("CompleteDictation failed: %v", err)
	}
	if c.Step() != StepRecommendation {
		t.Fatalf("Expected recommendation step, got %v", c.Step())
	}
	if f == nil {
		t.Fatal("Expected an analysis fetch")
	}
	if !c.State().Pending {
		t.Error("Expected pending while the fetch is outstanding")
	}
	run(t, c, f)

	var want intake.Record
	for topic, text := range captured {
		want.MergeDictationField(topic, text)
	}
	r := c.Record()
	if r.Symptoms != want.Symptoms ||
		!equal(r.Allergies, want.Allergies) ||
		!equal(r.UnderlyingConditions, want.UnderlyingConditions) ||
		!equal(r.CurrentMedications, want.CurrentMedications) {
		t.Errorf("Merged record %+v does not match per-topic merges %+v", r, want)
	}
	if a.calls != 1 {
		t.Errorf("Expected exactly one analyze call, got %d", a.calls)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestController_CompleteDictationRequiresSymptoms(t *testing.T) {
	c, a, _ := newTestController()
	if err := c.SubmitVitals(intake.GenderMale, 40, 170, 70); err != nil {
		t.Fatal(err)
	}

	_, err := c.CompleteDictation(symptomsOnly("  "))
	if !intake.IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if c.Step() != StepDictation || a.calls != 0 {
		t.Errorf("Expected to stay on dictation without calls, step=%v calls=%d", c.Step(), a.calls)
	}
}

func TestController_RecommendationCachedAcrossReentry(t *testing.T) {
	c, a, _ := newTestController()
	toRecommendation(t, c)

	c.Retreat()
	if c.Step() != StepDictation {
		t.Fatalf("Expected dictation, got %v", c.Step())
	}
	f, err := c.Advance()
	if err != nil {
		t.Fatal(err)
	}
	if f != nil {
		t.Error("Expected cached recommendation to be reused")
	}
	if a.calls != 1 {
		t.Errorf("Expected one analyze call, got %d", a.calls)
	}
}

func TestController_IdenticalDictationKeepsCache(t *testing.T) {
	c, a, _ := newTestController()
	toRecommendation(t, c)

	c.Retreat()
	f, err := c.CompleteDictation(symptomsOnly("đau đầu"))
	if err != nil {
		t.Fatal(err)
	}
	if f != nil || a.calls != 1 {
		t.Errorf("Expected cache kept for identical data, fetch=%v calls=%d", f != nil, a.calls)
	}
}

func TestController_ChangedDictationInvalidatesCache(t *testing.T) {
	c, a, _ := newTestController()
	toRecommendation(t, c)

	c.Retreat()
	f, err := c.CompleteDictation(symptomsOnly("ho"))
	if err != nil {
		t.Fatal(err)
	}
	if f == nil {
		t.Fatal("Expected a new fetch after the symptoms changed")
	}
	run(t, c, f)
	if a.calls != 2 {
		t.Errorf("Expected two analyze calls, got %d", a.calls)
	}
	if a.records[1].Symptoms != "ho" {
		t.Errorf("Expected the new symptoms to be sent, got %q", a.records[1].Symptoms)
	}
}

func TestController_RetryRefetchesOnce(t *testing.T) {
	c, a, p := newTestController()
	toRecommendation(t, c)

	f, _ := c.Advance()
	run(t, c, f)
	if p.calls != 1 {
		t.Fatalf("Expected one confirm call, got %d", p.calls)
	}
	c.Retreat()

	run(t, c, c.Retry())
	if a.calls != 2 {
		t.Errorf("Expected retry to call analyze exactly once more, got %d calls", a.calls)
	}
	if c.State().Prescription != nil {
		t.Error("Expected retrying the recommendation to drop the prescription")
	}

	f, _ = c.Advance()
	if f == nil {
		t.Fatal("Expected a new confirm fetch")
	}
	run(t, c, f)
	if p.calls != 2 {
		t.Errorf("Expected two confirm calls, got %d", p.calls)
	}
}

func TestController_PendingGuard(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatal(err)
	}
	f, _ := c.CompleteDictation(symptomsOnly("sốt"))

	if _, err := c.Advance(); !errors.Is(err, ErrPending) {
		t.Errorf("Expected ErrPending, got %v", err)
	}
	if c.Retry() != nil {
		t.Error("Expected Retry to be a no-op while pending")
	}

	run(t, c, f)
	if c.State().Pending {
		t.Error("Expected pending cleared after completion")
	}
}

func TestController_FailureSetsLastError(t *testing.T) {
	c, a, _ := newTestController()
	a.err = &backend.ServerError{Op: "analyze", Status: 422, Message: "Thiếu thông tin"}
	toRecommendation(t, c)

	s := c.State()
	if s.Pending || s.Recommendation != nil {
		t.Errorf("Expected no result and not pending, got %+v", s)
	}
	if s.LastError != "Thiếu thông tin" {
		t.Errorf("Expected server detail as LastError, got %q", s.LastError)
	}
	if backend.Status(s.Err) != 422 {
		t.Errorf("Expected classified error, got %v", s.Err)
	}
	if _, err := c.Advance(); !errors.Is(err, ErrStepIncomplete) {
		t.Errorf("Expected advance blocked without a recommendation, got %v", err)
	}

	a.err = nil
	f := c.Retry()
	if c.State().LastError != "" {
		t.Error("Expected LastError cleared when a new call starts")
	}
	run(t, c, f)
	if c.State().Recommendation == nil {
		t.Error("Expected recommendation after a successful retry")
	}
}

func TestController_NetworkFailureMessage(t *testing.T) {
	c, _, p := newTestController()
	p.err = &backend.NetworkError{Op: "confirm", Err: errors.New("connection refused")}
	toRecommendation(t, c)

	f, _ := c.Advance()
	run(t, c, f)
	if got := c.State().LastError; got != backend.MsgNetworkFallback {
		t.Errorf("Expected network fallback, got %q", got)
	}
}

func TestController_ResetFromAnyStep(t *testing.T) {
	for _, target := range Steps() {
		c, _, _ := newTestController()
		old := c.State().SessionID

		if target >= StepDictation {
			if err := c.SubmitVitals(intake.GenderMale, 40, 170, 70); err != nil {
				t.Fatal(err)
			}
		}
		if target >= StepRecommendation {
			f, _ := c.CompleteDictation(symptomsOnly("ho"))
			run(t, c, f)
		}
		if target >= StepPrescription {
			f, _ := c.Advance()
			run(t, c, f)
		}
		if target >= StepReceipt {
			c.Advance()
		}
		if c.Step() != target {
			t.Fatalf("Setup reached %v, want %v", c.Step(), target)
		}

		c.Reset()
		s := c.State()
		if s.Step != StepVitals || s.Recommendation != nil || s.Prescription != nil || s.Pending || s.LastError != "" || s.Err != nil {
			t.Errorf("Reset from %v: unexpected state %+v", target, s)
		}
		if !c.Record().Equal(intake.Record{}) {
			t.Errorf("Reset from %v: expected empty record, got %+v", target, c.Record())
		}
		if s.SessionID == old {
			t.Errorf("Reset from %v: expected a new session ID", target)
		}
	}
}

func TestController_CompletionAfterResetIgnored(t *testing.T) {
	c, _, _ := newTestController()
	if err := c.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatal(err)
	}
	f, _ := c.CompleteDictation(symptomsOnly("sốt"))

	c.Reset()
	if c.Complete(f(context.Background())) {
		t.Error("Expected completion after reset to be dropped")
	}
	if c.State().Recommendation != nil || c.Step() != StepVitals {
		t.Errorf("Expected state untouched, got %+v", c.State())
	}
}

func TestController_CompletionAfterRetreatIgnored(t *testing.T) {
	c, a, _ := newTestController()
	if err := c.SubmitVitals(intake.GenderFemale, 30, 160, 55); err != nil {
		t.Fatal(err)
	}
	stale, _ := c.CompleteDictation(symptomsOnly("sốt"))

	c.Retreat()
	if c.State().Pending {
		t.Error("Expected retreat to abandon the pending call")
	}
	if c.Complete(stale(context.Background())) {
		t.Error("Expected abandoned completion to be dropped")
	}

	f, err := c.Advance()
	if err != nil || f == nil {
		t.Fatalf("Expected a fresh fetch on re-entry, err=%v", err)
	}
	run(t, c, f)
	if a.calls != 2 || c.State().Recommendation == nil {
		t.Errorf("Expected the fresh call to apply, calls=%d", a.calls)
	}
}

func TestController_ConfirmGetsStoredRecommendation(t *testing.T) {
	c, a, p := newTestController()
	a.rec = &backend.Recommendation{Diagnosis: "Cảm cúm", DosesPerDay: 2, TotalDays: 5}
	toRecommendation(t, c)

	f, _ := c.Advance()
	run(t, c, f)
	if len(p.recs) != 1 || p.recs[0] != a.rec {
		t.Error("Expected confirm to receive the stored recommendation as returned")
	}
}

func TestController_WrongStepSubmits(t *testing.T) {
	c, _, _ := newTestController()
	if _, err := c.CompleteDictation(symptomsOnly("ho")); !errors.Is(err, ErrWrongStep) {
		t.Errorf("Expected ErrWrongStep, got %v", err)
	}
	if err := c.SubmitVitals(intake.GenderMale, 40, 170, 70); err != nil {
		t.Fatal(err)
	}
	if err := c.SubmitVitals(intake.GenderMale, 40, 170, 70); !errors.Is(err, ErrWrongStep) {
		t.Errorf("Expected ErrWrongStep, got %v", err)
	}
}

func TestStep_String(t *testing.T) {
	want := []string{"vitals", "dictation", "recommendation", "prescription", "receipt"}
	for i, s := range Steps() {
		if s.String() != want[i] {
			t.Errorf("Step %d: expected %q, got %q", i, want[i], s.String())
		}
		if s.Title() == "" {
			t.Errorf("Step %v has no title", s)
		}
	}
	if Step(99).String() != "unknown" {
		t.Error("Expected unknown for out-of-range step")
	}
}
