// Package speech captures one spoken utterance and turns it into text.
//
// The dictation flow only depends on Recognizer; hosts without a
// microphone or transcription service get Unsupported and fall back to
// typing.
package speech

import (
	"context"
	"errors"
	"fmt"
)

// Recognizer listens for exactly one utterance in the given language.
type Recognizer interface {
	Listen(ctx context.Context, language string) (string, error)
}

var (
	// ErrUnsupported means the host has no speech capability.
	ErrUnsupported = errors.New("speech recognition is not supported on this device")

	// ErrNoSpeech means the capture finished without any recognizable speech.
	ErrNoSpeech = errors.New("no speech detected")
)

// RecognitionError wraps a failure of the capture device or the
// transcription service.
type RecognitionError struct {
	Stage string
	Err   error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("speech %s failed: %v", e.Stage, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Unsupported is the recognizer of a host without speech capability.
type Unsupported struct{}

// Listen always fails with ErrUnsupported.
func (Unsupported) Listen(context.Context, string) (string, error) {
	return "", ErrUnsupported
}

// Supported reports whether r can actually capture speech.
func Supported(r Recognizer) bool {
	if r == nil {
		return false
	}
	_, unsupported := r.(Unsupported)
	return !unsupported
}

// Message is the status line shown to the patient for a capture error.
func Message(err error) string {
	var re *RecognitionError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupported):
		return "Thiết bị không hỗ trợ nhận dạng giọng nói. Vui lòng nhập bằng bàn phím."
	case errors.Is(err, ErrNoSpeech):
		return "Không nghe thấy giọng nói. Vui lòng thử lại hoặc nhập bằng bàn phím."
	case errors.Is(err, context.Canceled):
		return "Đã dừng ghi âm."
	case errors.As(err, &re):
		return "Lỗi nhận dạng giọng nói. Vui lòng thử lại hoặc nhập bằng bàn phím."
	default:
		return "Lỗi nhận dạng giọng nói."
	}
}
