package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is structured context attached to log lines.
type Fields = logrus.Fields

// Logger keeps a printf-style API over a JSON logrus logger.
type Logger struct {
	entry *logrus.Entry
}

func New() *Logger {
	return NewWithLevel("info")
}

func NewWithLevel(level string) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stdout)
	base.SetFormatter(&logrus.JSONFormatter{})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	base.SetLevel(parsed)

	return &Logger{entry: logrus.NewEntry(base)}
}

// WithFields returns a child logger that adds fields to every line.
func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) Debug(format string, v ...interface{}) {
	l.entry.Debugf(format, v...)
}

func (l *Logger) Info(format string, v ...interface{}) {
	l.entry.Infof(format, v...)
}

func (l *Logger) Warn(format string, v ...interface{}) {
	l.entry.Warnf(format, v...)
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.entry.Errorf(format, v...)
}
