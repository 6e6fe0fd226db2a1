package logger

import (
	"context"
	"io"

	"github.com/snowflakedb/snowflake-connector-go/sflog"
)

// levelFilteringLogger drops messages below the configured level before the
// masking layer spends time formatting and scanning them.
type levelFilteringLogger struct {
	inner SFLogger
}

var _ SFLogger = (*levelFilteringLogger)(nil)

func newLevelFilteringLogger(inner SFLogger) *levelFilteringLogger {
	if inner == nil {
		panic("inner logger cannot be nil")
	}
	return &levelFilteringLogger{inner: inner}
}

func (l *levelFilteringLogger) shouldLog(level sflog.Level) bool {
	current := l.inner.GetLogLevelInt()
	return current != sflog.LevelOff && level >= current
}

func (l *levelFilteringLogger) Tracef(format string, args ...interface{}) {
	if l.shouldLog(sflog.LevelTrace) {
		l.inner.Tracef(format, args...)
	}
}

func (l *levelFilteringLogger) Debugf(format string, args ...interface{}) {
	if l.shouldLog(sflog.LevelDebug) {
		l.inner.Debugf(format, args...)
	}
}

func (l *levelFilteringLogger) Infof(format string, args ...interface{}) {
	if l.shouldLog(sflog.LevelInfo) {
		l.inner.Infof(format, args...)
	}
}

func (l *levelFilteringLogger) Warnf(format string, args ...interface{}) {
	if l.shouldLog(sflog.LevelWarn) {
		l.inner.Warnf(format, args...)
	}
}

func (l *levelFilteringLogger) Errorf(format string, args ...interface{}) {
	if l.shouldLog(sflog.LevelError) {
		l.inner.Errorf(format, args...)
	}
}

func (l *levelFilteringLogger) Fatalf(format string, args ...interface{}) {
	l.inner.Fatalf(format, args...)
}

func (l *levelFilteringLogger) Trace(msg string) {
	if l.shouldLog(sflog.LevelTrace) {
		l.inner.Trace(msg)
	}
}

func (l *levelFilteringLogger) Debug(msg string) {
	if l.shouldLog(sflog.LevelDebug) {
		l.inner.Debug(msg)
	}
}

func (l *levelFilteringLogger) Info(msg string) {
	if l.shouldLog(sflog.LevelInfo) {
		l.inner.Info(msg)
	}
}

func (l *levelFilteringLogger) Warn(msg string) {
	if l.shouldLog(sflog.LevelWarn) {
		l.inner.Warn(msg)
	}
}

func (l *levelFilteringLogger) Error(msg string) {
	if l.shouldLog(sflog.LevelError) {
		l.inner.Error(msg)
	}
}

func (l *levelFilteringLogger) Fatal(msg string) {
	l.inner.Fatal(msg)
}

func (l *levelFilteringLogger) WithField(key string, value interface{}) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithField(key, value)}
}

func (l *levelFilteringLogger) WithFields(fields map[string]any) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithFields(fields)}
}

func (l *levelFilteringLogger) WithContext(ctx context.Context) LogEntry {
	return &levelFilteringEntry{parent: l, inner: l.inner.WithContext(ctx)}
}

func (l *levelFilteringLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *levelFilteringLogger) SetLogLevelInt(level sflog.Level) error {
	return l.inner.SetLogLevelInt(level)
}

func (l *levelFilteringLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *levelFilteringLogger) GetLogLevelInt() sflog.Level {
	return l.inner.GetLogLevelInt()
}

func (l *levelFilteringLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

// levelFilteringEntry applies the parent's level to an entry with bound fields.
type levelFilteringEntry struct {
	parent *levelFilteringLogger
	inner  LogEntry
}

var _ LogEntry = (*levelFilteringEntry)(nil)

func (e *levelFilteringEntry) Tracef(format string, args ...interface{}) {
	if e.parent.shouldLog(sflog.LevelTrace) {
		e.inner.Tracef(format, args...)
	}
}

func (e *levelFilteringEntry) Debugf(format string, args ...interface{}) {
	if e.parent.shouldLog(sflog.LevelDebug) {
		e.inner.Debugf(format, args...)
	}
}

func (e *levelFilteringEntry) Infof(format string, args ...interface{}) {
	if e.parent.shouldLog(sflog.LevelInfo) {
		e.inner.Infof(format, args...)
	}
}

func (e *levelFilteringEntry) Warnf(format string, args ...interface{}) {
	if e.parent.shouldLog(sflog.LevelWarn) {
		e.inner.Warnf(format, args...)
	}
}

func (e *levelFilteringEntry) Errorf(format string, args ...interface{}) {
	if e.parent.shouldLog(sflog.LevelError) {
		e.inner.Errorf(format, args...)
	}
}

func (e *levelFilteringEntry) Fatalf(format string, args ...interface{}) {
	e.inner.Fatalf(format, args...)
}

func (e *levelFilteringEntry) Trace(msg string) {
	if e.parent.shouldLog(sflog.LevelTrace) {
		e.inner.Trace(msg)
	}
}

func (e *levelFilteringEntry) Debug(msg string) {
	if e.parent.shouldLog(sflog.LevelDebug) {
		e.inner.Debug(msg)
	}
}

func (e *levelFilteringEntry) Info(msg string) {
	if e.parent.shouldLog(sflog.LevelInfo) {
		e.inner.Info(msg)
	}
}

func (e *levelFilteringEntry) Warn(msg string) {
	if e.parent.shouldLog(sflog.LevelWarn) {
		e.inner.Warn(msg)
	}
}

func (e *levelFilteringEntry) Error(msg string) {
	if e.parent.shouldLog(sflog.LevelError) {
		e.inner.Error(msg)
	}
}

func (e *levelFilteringEntry) Fatal(msg string) {
	e.inner.Fatal(msg)
}
