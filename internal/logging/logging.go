// Package logging builds the zerolog logger. The wizard owns the terminal,
// so its logs go to a file; "-" logs human-readable lines to stderr.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Stderr selects console output instead of a file.
const Stderr = "-"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a logger writing to file at the given level. debug forces
// the debug level. The returned closer releases the file.
func New(file, level string, debug bool) (zerolog.Logger, io.Closer, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("parse log level: %w", err)
		}
		lvl = parsed
	}
	if debug {
		lvl = zerolog.DebugLevel
	}

	if file == "" || file == Stderr {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
		return logger, nopCloser{}, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("open log file: %w", err)
	}
	logger := zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return logger, f, nil
}
