// Package logging builds the application logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a logger at the given level. The terminal belongs to the UI,
// so output goes to path when set and is discarded otherwise. The returned
// Closer releases the log file.
func New(level, path string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLevel(level))
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	if path == "" {
		logger.SetOutput(io.Discard)
		return logger, nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, f, nil
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a logrus level.
// Anything else is InfoLevel.
func ParseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARN", "WARNING":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
