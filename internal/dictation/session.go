// Package dictation sequences the spoken intake questions: one capture
// round per topic, with manual edits allowed at any time.
package dictation

import (
	"errors"

	"github.com/mrsinham/medkiosk/internal/intake"
	"github.com/mrsinham/medkiosk/internal/speech"
)

// ErrAlreadyListening is returned by StartCapture while a capture is active.
var ErrAlreadyListening = errors.New("a capture is already in progress")

// Outcome tells the caller what a topic navigation did.
type Outcome int

const (
	// OutcomeNext moved to the following topic.
	OutcomeNext Outcome = iota
	// OutcomeComplete means the last topic was accepted.
	OutcomeComplete
	// OutcomePrevious moved to the preceding topic.
	OutcomePrevious
	// OutcomeExit means retreat was requested on the first topic.
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNext:
		return "next"
	case OutcomeComplete:
		return "complete"
	case OutcomePrevious:
		return "previous"
	case OutcomeExit:
		return "exit"
	default:
		return "unknown"
	}
}

const statusListening = "Đang nghe... Hãy nói câu trả lời của bạn."

// Session is the state of the dictation step. It is not safe for
// concurrent use; the UI loop owns it.
type Session struct {
	topics    []intake.Topic
	index     int
	captured  map[intake.Topic]string
	listening bool
	captureID int
	status    string
}

// NewSession starts at the first topic, pre-filled with whatever the
// record already holds.
func NewSession(r intake.Record) *Session {
	s := &Session{
		topics:   intake.Topics(),
		captured: make(map[intake.Topic]string),
	}
	for _, t := range s.topics {
		if text := r.Text(t); text != "" {
			s.captured[t] = text
		}
	}
	return s
}

// Active is the topic being captured.
func (s *Session) Active() intake.Topic { return s.topics[s.index] }

// Index is the zero-based position of the active topic.
func (s *Session) Index() int { return s.index }

// Total is the number of topics.
func (s *Session) Total() int { return len(s.topics) }

// Text is the captured text of the active topic.
func (s *Session) Text() string { return s.captured[s.Active()] }

// Listening reports whether a capture is in progress.
func (s *Session) Listening() bool { return s.listening }

// Status is the capture status line, empty when there is nothing to say.
func (s *Session) Status() string { return s.status }

// StartCapture begins a capture for the active topic and returns its id.
// Results are accepted only for the latest id.
func (s *Session) StartCapture() (int, error) {
	if s.listening {
		return 0, ErrAlreadyListening
	}
	s.listening = true
	s.captureID++
	s.status = statusListening
	return s.captureID, nil
}

// CaptureSucceeded stores text as the active topic's answer. It reports
// false and changes nothing when the capture is no longer current.
func (s *Session) CaptureSucceeded(id int, text string) bool {
	if !s.current(id) {
		return false
	}
	s.listening = false
	s.captured[s.Active()] = text
	s.status = ""
	return true
}

// CaptureFailed records a capture error as the status line. The captured
// text is left as it was.
func (s *Session) CaptureFailed(id int, err error) bool {
	if !s.current(id) {
		return false
	}
	s.listening = false
	s.status = speech.Message(err)
	return true
}

// StopCapture abandons the active capture, if any. Its result will be
// ignored when it arrives.
func (s *Session) StopCapture() bool {
	if !s.listening {
		return false
	}
	s.listening = false
	s.status = ""
	return true
}

func (s *Session) current(id int) bool {
	return s.listening && id == s.captureID
}

// Edit overwrites the active topic's text.
func (s *Session) Edit(text string) {
	s.captured[s.Active()] = text
}

// AdvanceTopic accepts the active topic and moves on. A required topic
// with blank text fails with a *intake.ValidationError and the index does
// not move.
func (s *Session) AdvanceTopic() (Outcome, error) {
	if s.Active().Required() {
		if err := intake.ValidateSymptoms(s.Text()); err != nil {
			return OutcomeNext, err
		}
	}

	s.StopCapture()
	if s.index < len(s.topics)-1 {
		s.index++
		s.status = ""
		return OutcomeNext, nil
	}
	return OutcomeComplete, nil
}

// RetreatTopic moves back one topic, keeping what was captured for it.
// On the first topic it asks the caller to leave the step.
func (s *Session) RetreatTopic() Outcome {
	s.StopCapture()
	if s.index > 0 {
		s.index--
		s.status = ""
		return OutcomePrevious
	}
	return OutcomeExit
}

// Captured returns a copy of the text per topic. Topics never answered
// map to the empty string.
func (s *Session) Captured() map[intake.Topic]string {
	out := make(map[intake.Topic]string, len(s.topics))
	for _, t := range s.topics {
		out[t] = s.captured[t]
	}
	return out
}
