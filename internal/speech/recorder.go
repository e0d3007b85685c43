package speech

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Recorder captures raw audio.
type Recorder interface {
	Record(ctx context.Context) ([]byte, error)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context) ([]byte, error)

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context) ([]byte, error) { return f(ctx) }

// CommandRecorder records by running an external program that writes a
// WAV stream to stdout. The process is killed when ctx is cancelled, which
// releases the microphone.
type CommandRecorder struct {
	Command string
	Args    []string
}

// NewArecord records a 16 kHz mono WAV for the given number of seconds
// with ALSA's arecord (or a compatible command).
func NewArecord(command string, seconds int) *CommandRecorder {
	if command == "" {
		command = "arecord"
	}
	if seconds <= 0 {
		seconds = 5
	}
	return &CommandRecorder{
		Command: command,
		Args: []string{
			"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav",
			"-d", strconv.Itoa(seconds), "-",
		},
	}
}

// Record runs the command and returns what it wrote to stdout.
func (r *CommandRecorder) Record(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", r.Command, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", r.Command, err)
	}
	return stdout.Bytes(), nil
}
