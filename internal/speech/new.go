package speech

import (
	"os/exec"

	"github.com/rs/zerolog"
)

// Config selects the recognizer for this host.
type Config struct {
	// STTURL is the transcription endpoint. Empty disables speech.
	STTURL string
	// RecordCommand is the audio capture program.
	RecordCommand string
	// RecordSeconds bounds one utterance.
	RecordSeconds int
}

// New returns a Transcriber when both the transcription endpoint and the
// recording command are available, and Unsupported otherwise.
func New(cfg Config, logger zerolog.Logger) Recognizer {
	if cfg.STTURL == "" {
		logger.Info().Msg("speech disabled: no stt_url configured")
		return Unsupported{}
	}

	rec := NewArecord(cfg.RecordCommand, cfg.RecordSeconds)
	if _, err := exec.LookPath(rec.Command); err != nil {
		logger.Warn().Err(err).Str("command", rec.Command).Msg("speech disabled: recorder not found")
		return Unsupported{}
	}

	logger.Info().Str("stt_url", cfg.STTURL).Str("command", rec.Command).Msg("speech enabled")
	return NewTranscriber(rec, cfg.STTURL, logger)
}
