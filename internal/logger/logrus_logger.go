package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snowflakedb/snowflake-connector-go/sflog"
)

// rawLogger implements SFLogger on top of logrus.
type rawLogger struct {
	inner   *logrus.Logger
	level   sflog.Level
	enabled bool // false at OFF level
	mu      sync.Mutex
}

var _ SFLogger = (*rawLogger)(nil)

func newRawLogger() *rawLogger {
	inner := logrus.New()
	inner.SetOutput(os.Stderr)
	inner.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
	})
	log := &rawLogger{inner: inner, enabled: true}
	log.applyLevel(sflog.LevelInfo)
	return log
}

// toLogrusLevel maps connector levels to logrus levels. OFF is handled by the
// enabled flag, not by logrus.
func toLogrusLevel(level sflog.Level) logrus.Level {
	switch {
	case level <= sflog.LevelTrace:
		return logrus.TraceLevel
	case level <= sflog.LevelDebug:
		return logrus.DebugLevel
	case level <= sflog.LevelInfo:
		return logrus.InfoLevel
	case level <= sflog.LevelWarn:
		return logrus.WarnLevel
	case level <= sflog.LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.FatalLevel
	}
}

// applyLevel must be called with mu held or before the logger is shared.
func (log *rawLogger) applyLevel(level sflog.Level) {
	log.level = level
	if level == sflog.LevelOff {
		log.enabled = false
		return
	}
	log.enabled = true
	log.inner.SetLevel(toLogrusLevel(level))
}

func (log *rawLogger) isEnabled() bool {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.enabled
}

// SetLogLevel sets the log level
func (log *rawLogger) SetLogLevel(level string) error {
	parsed, err := sflog.ParseLevel(strings.ToUpper(level))
	if err != nil {
		return fmt.Errorf("error while setting log level. %v", err)
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.applyLevel(parsed)
	return nil
}

func (log *rawLogger) SetLogLevelInt(level sflog.Level) error {
	if _, err := sflog.LevelToString(level); err != nil {
		return fmt.Errorf("invalid log level: %d", level)
	}
	log.mu.Lock()
	defer log.mu.Unlock()
	log.applyLevel(level)
	return nil
}

// GetLogLevel returns the current log level
func (log *rawLogger) GetLogLevel() string {
	if levelStr, err := sflog.LevelToString(log.GetLogLevelInt()); err == nil {
		return levelStr
	}
	return "unknown"
}

func (log *rawLogger) GetLogLevelInt() sflog.Level {
	log.mu.Lock()
	defer log.mu.Unlock()
	return log.level
}

// SetOutput sets the output writer
func (log *rawLogger) SetOutput(output io.Writer) {
	log.inner.SetOutput(output)
}

func (log *rawLogger) entry() *logrusEntry {
	return &logrusEntry{inner: logrus.NewEntry(log.inner), parent: log}
}

func (log *rawLogger) Tracef(format string, args ...interface{}) { log.entry().Tracef(format, args...) }
func (log *rawLogger) Debugf(format string, args ...interface{}) { log.entry().Debugf(format, args...) }
func (log *rawLogger) Infof(format string, args ...interface{})  { log.entry().Infof(format, args...) }
func (log *rawLogger) Warnf(format string, args ...interface{})  { log.entry().Warnf(format, args...) }
func (log *rawLogger) Errorf(format string, args ...interface{}) { log.entry().Errorf(format, args...) }
func (log *rawLogger) Fatalf(format string, args ...interface{}) { log.entry().Fatalf(format, args...) }

func (log *rawLogger) Trace(msg string) { log.entry().Trace(msg) }
func (log *rawLogger) Debug(msg string) { log.entry().Debug(msg) }
func (log *rawLogger) Info(msg string)  { log.entry().Info(msg) }
func (log *rawLogger) Warn(msg string)  { log.entry().Warn(msg) }
func (log *rawLogger) Error(msg string) { log.entry().Error(msg) }
func (log *rawLogger) Fatal(msg string) { log.entry().Fatal(msg) }

func (log *rawLogger) WithField(key string, value interface{}) LogEntry {
	return &logrusEntry{inner: log.inner.WithField(key, value), parent: log}
}

func (log *rawLogger) WithFields(fields map[string]any) LogEntry {
	return &logrusEntry{inner: log.inner.WithFields(logrus.Fields(fields)), parent: log}
}

func (log *rawLogger) WithContext(ctx context.Context) LogEntry {
	if ctx == nil {
		return log
	}
	fields := extractContextFields(ctx)
	if len(fields) == 0 {
		return log
	}
	return &logrusEntry{inner: log.inner.WithFields(fields), parent: log}
}

// logrusEntry implements LogEntry over a logrus entry with bound fields.
type logrusEntry struct {
	inner  *logrus.Entry
	parent *rawLogger
}

var _ LogEntry = (*logrusEntry)(nil)

func (e *logrusEntry) Tracef(format string, args ...interface{}) {
	if e.parent.isEnabled() {
		e.inner.Tracef(format, args...)
	}
}

func (e *logrusEntry) Debugf(format string, args ...interface{}) {
	if e.parent.isEnabled() {
		e.inner.Debugf(format, args...)
	}
}

func (e *logrusEntry) Infof(format string, args ...interface{}) {
	if e.parent.isEnabled() {
		e.inner.Infof(format, args...)
	}
}

func (e *logrusEntry) Warnf(format string, args ...interface{}) {
	if e.parent.isEnabled() {
		e.inner.Warnf(format, args...)
	}
}

func (e *logrusEntry) Errorf(format string, args ...interface{}) {
	if e.parent.isEnabled() {
		e.inner.Errorf(format, args...)
	}
}

func (e *logrusEntry) Fatalf(format string, args ...interface{}) {
	e.inner.Fatalf(format, args...)
}

func (e *logrusEntry) Trace(msg string) {
	if e.parent.isEnabled() {
		e.inner.Trace(msg)
	}
}

func (e *logrusEntry) Debug(msg string) {
	if e.parent.isEnabled() {
		e.inner.Debug(msg)
	}
}

func (e *logrusEntry) Info(msg string) {
	if e.parent.isEnabled() {
		e.inner.Info(msg)
	}
}

func (e *logrusEntry) Warn(msg string) {
	if e.parent.isEnabled() {
		e.inner.Warn(msg)
	}
}

func (e *logrusEntry) Error(msg string) {
	if e.parent.isEnabled() {
		e.inner.Error(msg)
	}
}

func (e *logrusEntry) Fatal(msg string) {
	e.inner.Fatal(msg)
}
