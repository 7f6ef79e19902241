package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the interface for logging
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// LogrusLogger wraps logrus to implement Logger
type LogrusLogger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing to stdout
func NewLogger(level, format string) Logger {
	return NewLoggerWithOutput(os.Stdout, level, format)
}

// NewLoggerWithOutput creates a logger writing to w
func NewLoggerWithOutput(w io.Writer, level, format string) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil || lvl > logrus.DebugLevel {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &LogrusLogger{entry: logrus.NewEntry(l)}
}

// NewNopLogger discards everything; the default for the API client and tests
func NewNopLogger() Logger {
	return NewLoggerWithOutput(io.Discard, "error", "text")
}

// WithField returns a logger that adds key=value to every entry
func (l *LogrusLogger) WithField(key string, value interface{}) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) Debug(args ...interface{}) { l.entry.Debug(args...) }

func (l *LogrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }

func (l *LogrusLogger) Info(args ...interface{}) { l.entry.Info(args...) }

func (l *LogrusLogger) Infof(format string, args ...interface{}) { l.entry.Infof(format, args...) }

func (l *LogrusLogger) Warn(args ...interface{}) { l.entry.Warn(args...) }

func (l *LogrusLogger) Warnf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }

func (l *LogrusLogger) Error(args ...interface{}) { l.entry.Error(args...) }

func (l *LogrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

// Fatal logs and exits the process
func (l *LogrusLogger) Fatal(args ...interface{}) { l.entry.Fatal(args...) }

// Fatalf logs and exits the process
func (l *LogrusLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
