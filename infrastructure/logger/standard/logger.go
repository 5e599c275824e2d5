// ABOUTME: Standard logger implementation backed by logrus
// ABOUTME: Writes structured entries to stdout and optionally to a rotated file

package standard

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"webclipper-api/pkg/config"
)

// StandardLogger implements the Logger interface using logrus
type StandardLogger struct {
	entry *logrus.Logger
	file  *lumberjack.Logger
}

// NewStandardLogger creates a text logger on stdout at info level
func NewStandardLogger() *StandardLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return &StandardLogger{entry: l}
}

// New creates a logger from configuration
func New(cfg config.LogConfig) (*StandardLogger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := logrus.New()
	l.SetLevel(level)
	if cfg.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := &StandardLogger{entry: l}
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		logger.file = RotatingFile(cfg)
		out = io.MultiWriter(os.Stdout, logger.file)
	}
	l.SetOutput(out)
	return logger, nil
}

// NewWithWriter logs to w, mainly for tests
func NewWithWriter(w io.Writer, level logrus.Level) *StandardLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(level)
	return &StandardLogger{entry: l}
}

// RotatingFile is the lumberjack writer shared by both logging backends
func RotatingFile(cfg config.LogConfig) *lumberjack.Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 50
	}
	return &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
}

// Debug logs a debug message
func (l *StandardLogger) Debug(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Debug(msg)
}

// Info logs an info message
func (l *StandardLogger) Info(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Info(msg)
}

// Warn logs a warning message
func (l *StandardLogger) Warn(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Warn(msg)
}

// Error logs an error message
func (l *StandardLogger) Error(msg string, fields map[string]interface{}) {
	l.entry.WithFields(fields).Error(msg)
}

// Close releases the rotated file, if any
func (l *StandardLogger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
