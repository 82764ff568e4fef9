package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the logger handed to every component
type Logger = logrus.FieldLogger

// Fields represents structured logging fields
type Fields = logrus.Fields

// NewLogger creates a logger. JSON output unless debug is set.
func NewLogger(level string, debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if debug {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(ParseLevel(level, debug))
	return logger
}

// NewLoggerWithService creates a logger whose entries carry a service field
func NewLoggerWithService(serviceName, level string, debug bool) Logger {
	return NewLogger(level, debug).WithField("service", serviceName)
}

// ParseLevel maps LOG_LEVEL values to logrus levels, defaulting to info (debug when debug is set)
func ParseLevel(level string, debug bool) logrus.Level {
	if lvl, err := logrus.ParseLevel(strings.TrimSpace(level)); err == nil && level != "" {
		return lvl
	}
	if debug {
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// Component tags entries with the component name
func Component(l Logger, name string) Logger {
	if l == nil {
		l = Discard()
	}
	return l.WithField("component", name)
}
