// Package workflow drives the intake wizard: which step is showing, what
// the patient has entered so far, and the remote calls made on entering
// the recommendation and prescription steps.
//
// The Controller is owned by a single event loop. Remote calls are handed
// out as Fetch values that the loop runs elsewhere; their Completion comes
// back through Complete.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrsinham/medkiosk/internal/backend"
	"github.com/mrsinham/medkiosk/internal/intake"
)

var (
	// ErrStepIncomplete is returned by Advance when the current step has
	// not produced what the next step needs.
	ErrStepIncomplete = errors.New("current step is not complete")

	// ErrPending is returned by Advance while a remote call is outstanding.
	ErrPending = errors.New("a request is still in progress")

	// ErrWrongStep is returned when a step's submit is called on another step.
	ErrWrongStep = errors.New("operation not valid on the current step")
)

// Analyzer produces a recommendation from a complete intake record.
type Analyzer interface {
	Analyze(ctx context.Context, r intake.Record) (*backend.Recommendation, error)
}

// Prescriber turns a recommendation into a priced prescription.
type Prescriber interface {
	Confirm(ctx context.Context, r intake.Record, rec *backend.Recommendation) (*backend.Prescription, error)
}

// State is a snapshot of the workflow.
type State struct {
	Step           Step
	Recommendation *backend.Recommendation
	Prescription   *backend.Prescription
	Pending        bool
	// LastError is the message shown for the last failed remote call.
	LastError string
	// Err is the failed call's error, for classification.
	Err       error
	SessionID string
}

// Fetch performs one remote call. It does not touch controller state and
// may run on any goroutine.
type Fetch func(ctx context.Context) Completion

// Completion is the result of a Fetch, to be passed to Complete.
type Completion struct {
	generation     int
	step           Step
	recommendation *backend.Recommendation
	prescription   *backend.Prescription
	err            error
}

// Step is the step the call was made for.
func (c Completion) Step() Step { return c.step }

// Err is the call's error, nil on success.
func (c Completion) Err() error { return c.err }

// Controller owns the workflow state and the intake record.
type Controller struct {
	analyzer   Analyzer
	prescriber Prescriber
	log        zerolog.Logger

	state  State
	record intake.Record

	// generation is bumped whenever an outstanding call is abandoned, so
	// that its completion is dropped.
	generation int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger attaches a logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController creates a controller at the vitals step with an empty record.
func NewController(a Analyzer, p Prescriber, opts ...Option) *Controller {
	c := &Controller{
		analyzer:   a,
		prescriber: p,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = initialState()
	return c
}

func initialState() State {
	return State{Step: StepVitals, SessionID: uuid.NewString()}
}

// State returns a snapshot of the workflow state.
func (c *Controller) State() State { return c.state }

// Step is the current step.
func (c *Controller) Step() Step { return c.state.Step }

// Record returns a copy of the intake record.
func (c *Controller) Record() intake.Record { return c.record.Clone() }

func (c *Controller) logger() *zerolog.Logger {
	l := c.log.With().Str("session_id", c.state.SessionID).Str("step", c.state.Step.String()).Logger()
	return &l
}

// SubmitVitals merges the vitals form and moves to dictation. A
// *intake.ValidationError leaves the record and the step unchanged.
func (c *Controller) SubmitVitals(gender intake.Gender, age, heightCm, weightKg int) error {
	if c.state.Step != StepVitals {
		return ErrWrongStep
	}

	next := c.record.Clone()
	if err := next.MergeVitals(gender, age, heightCm, weightKg); err != nil {
		return err
	}
	c.commit(next)

	_, err := c.Advance()
	return err
}

// CompleteDictation merges every topic's text into the record and moves
// to the recommendation step, returning the analysis call to run (nil
// when a cached recommendation is reused).
func (c *Controller) CompleteDictation(captured map[intake.Topic]string) (Fetch, error) {
	if c.state.Step != StepDictation {
		return nil, ErrWrongStep
	}
	if err := intake.ValidateSymptoms(captured[intake.TopicSymptoms]); err != nil {
		return nil, err
	}

	next := c.record.Clone()
	for _, t := range intake.Topics() {
		next.MergeDictationField(t, captured[t])
	}
	c.commit(next)

	return c.Advance()
}

// commit replaces the record, dropping cached results when the data
// actually changed.
func (c *Controller) commit(next intake.Record) {
	if next.Equal(c.record) {
		return
	}
	if c.state.Recommendation != nil || c.state.Prescription != nil {
		c.logger().Info().Msg("intake changed, discarding cached results")
	}
	c.record = next
	c.state.Recommendation = nil
	c.state.Prescription = nil
}

// Advance moves to the next step. Entering the recommendation or
// prescription step without a cached result returns the Fetch to run.
// At the receipt step it does nothing.
func (c *Controller) Advance() (Fetch, error) {
	if c.state.Pending {
		return nil, ErrPending
	}
	if c.state.Step.last() {
		return nil, nil
	}
	if !c.stepComplete() {
		return nil, fmt.Errorf("%s: %w", c.state.Step, ErrStepIncomplete)
	}

	c.state.Step++
	c.state.LastError = ""
	c.state.Err = nil
	c.logger().Debug().Msg("advanced")
	return c.enter(), nil
}

func (c *Controller) stepComplete() bool {
	switch c.state.Step {
	case StepVitals:
		return c.record.HasVitals()
	case StepDictation:
		return c.record.HasSymptoms()
	case StepRecommendation:
		return c.state.Recommendation != nil
	case StepPrescription:
		return c.state.Prescription != nil
	case StepReceipt:
		return true
	default:
		return false
	}
}

func (c *Controller) enter() Fetch {
	switch c.state.Step {
	case StepRecommendation:
		if c.state.Recommendation == nil {
			return c.analyze()
		}
	case StepPrescription:
		if c.state.Prescription == nil {
			return c.confirm()
		}
	}
	return nil
}

// Retreat moves to the previous step. An outstanding call is abandoned.
// At the vitals step it does nothing.
func (c *Controller) Retreat() {
	if c.state.Step.first() {
		return
	}
	c.abandon()
	c.state.Step--
	c.state.LastError = ""
	c.state.Err = nil
	c.logger().Debug().Msg("retreated")
}

// Reset starts a new customer session: initial state, empty record.
func (c *Controller) Reset() {
	c.abandon()
	old := c.state.SessionID
	c.state = initialState()
	c.record = intake.Record{}
	c.log.Info().Str("previous_session_id", old).Str("session_id", c.state.SessionID).Msg("session reset")
}

func (c *Controller) abandon() {
	if c.state.Pending {
		c.logger().Info().Msg("abandoning outstanding request")
	}
	c.generation++
	c.state.Pending = false
}

// Retry refetches the current step's result. Retrying the recommendation
// also drops the prescription derived from it. It returns nil on a step
// without a remote call or while a call is outstanding.
func (c *Controller) Retry() Fetch {
	if c.state.Pending {
		return nil
	}
	switch c.state.Step {
	case StepRecommendation:
		c.state.Recommendation = nil
		c.state.Prescription = nil
		return c.analyze()
	case StepPrescription:
		if c.state.Recommendation == nil {
			return nil
		}
		c.state.Prescription = nil
		return c.confirm()
	default:
		return nil
	}
}

func (c *Controller) begin() int {
	c.state.Pending = true
	c.state.LastError = ""
	c.state.Err = nil
	return c.generation
}

func (c *Controller) analyze() Fetch {
	gen := c.begin()
	record := c.record.Clone()
	log := c.logger()
	analyzer := c.analyzer

	return func(ctx context.Context) Completion {
		start := time.Now()
		rec, err := analyzer.Analyze(ctx, record)
		logOutcome(log, "analyze", start, err)
		return Completion{generation: gen, step: StepRecommendation, recommendation: rec, err: err}
	}
}

func (c *Controller) confirm() Fetch {
	gen := c.begin()
	record := c.record.Clone()
	rec := c.state.Recommendation
	log := c.logger()
	prescriber := c.prescriber

	return func(ctx context.Context) Completion {
		start := time.Now()
		p, err := prescriber.Confirm(ctx, record, rec)
		logOutcome(log, "confirm", start, err)
		return Completion{generation: gen, step: StepPrescription, prescription: p, err: err}
	}
}

func logOutcome(log *zerolog.Logger, op string, start time.Time, err error) {
	if err != nil {
		log.Warn().Err(err).Str("op", op).Int("status", backend.Status(err)).Dur("latency", time.Since(start)).Msg("remote call failed")
		return
	}
	log.Info().Str("op", op).Dur("latency", time.Since(start)).Msg("remote call succeeded")
}

// Complete applies a Fetch's result. It reports false when the call was
// abandoned by a retreat or reset, in which case nothing changes.
func (c *Controller) Complete(done Completion) bool {
	if done.generation != c.generation || !c.state.Pending {
		c.logger().Debug().Str("for_step", done.step.String()).Msg("dropping stale completion")
		return false
	}
	c.state.Pending = false

	if done.err != nil {
		c.state.Err = done.err
		c.state.LastError = backend.UserMessage(done.err)
		return true
	}

	switch done.step {
	case StepRecommendation:
		c.state.Recommendation = done.recommendation
	case StepPrescription:
		c.state.Prescription = done.prescription
	}
	return true
}
