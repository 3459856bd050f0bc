package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is a thin structured-logging wrapper over logrus, matching the
// key/value call convention used throughout this repo:
// logger.Info("message", "key1", value1, "key2", value2, ...).
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a Logger for component, logging at level (one of
// "debug", "info", "warn"/"warning", "error"; unrecognized values fall back
// to "info").
func NewLogger(level, component string) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)

	return &Logger{entry: l.WithField("component", component)}
}

// WithField returns a Logger that always attaches key=value.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) fields(kv []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

// Debug logs at debug level with alternating key/value pairs.
func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Debug(msg)
}

// Info logs at info level with alternating key/value pairs.
func (l *Logger) Info(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Info(msg)
}

// Warn logs at warn level with alternating key/value pairs.
func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Warn(msg)
}

// Error logs at error level with alternating key/value pairs.
func (l *Logger) Error(msg string, kv ...interface{}) {
	l.entry.WithFields(l.fields(kv)).Error(msg)
}
