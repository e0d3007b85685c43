package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// wavHeaderSize is the size of a canonical WAV header; anything not
// longer carries no samples.
const wavHeaderSize = 44

// Transcriber records one utterance and sends it to a Whisper-compatible
// /transcribe endpoint.
type Transcriber struct {
	recorder Recorder
	url      string
	http     *http.Client
	log      zerolog.Logger
}

// NewTranscriber creates a Transcriber posting to url.
func NewTranscriber(rec Recorder, url string, logger zerolog.Logger) *Transcriber {
	return &Transcriber{
		recorder: rec,
		url:      url,
		http:     &http.Client{Timeout: 60 * time.Second},
		log:      logger,
	}
}

type transcribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Listen records one utterance and returns its transcript.
func (t *Transcriber) Listen(ctx context.Context, languageTag string) (string, error) {
	start := time.Now()

	audio, err := t.recorder.Record(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &RecognitionError{Stage: "record", Err: err}
	}
	if len(audio) <= wavHeaderSize {
		return "", ErrNoSpeech
	}

	text, err := t.transcribe(ctx, audio, languageTag)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		t.log.Error().Err(err).Dur("latency", time.Since(start)).Msg("transcription failed")
		return "", &RecognitionError{Stage: "transcribe", Err: err}
	}

	text = strings.TrimSpace(text)
	t.log.Debug().Int("audio_bytes", len(audio)).Int("chars", len(text)).Dur("latency", time.Since(start)).Msg("utterance transcribed")
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

func (t *Transcriber) transcribe(ctx context.Context, audio []byte, languageTag string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if lang := baseLanguage(languageTag); lang != "" {
		if err := writer.WriteField("language", lang); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("STT API error: %s - %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result transcribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding STT response: %w", err)
	}
	return result.Text, nil
}

// baseLanguage turns a BCP 47 tag such as "vi-VN" into the bare language
// code Whisper expects. Unparseable or undetermined tags yield "".
func baseLanguage(tag string) string {
	t, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return ""
	}
	base, conf := t.Base()
	if conf != language.Exact {
		return ""
	}
	return base.String()
}
