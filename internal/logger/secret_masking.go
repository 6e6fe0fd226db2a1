package logger

import (
	"context"
	"fmt"
	"io"

	"github.com/snowflakedb/snowflake-connector-go/sflog"
)

// secretMaskingLogger masks secrets in every message and field value before
// handing them to the inner logger.
type secretMaskingLogger struct {
	inner SFLogger
}

var _ SFLogger = (*secretMaskingLogger)(nil)

func newSecretMaskingLogger(inner SFLogger) *secretMaskingLogger {
	if inner == nil {
		panic("inner logger cannot be nil")
	}
	return &secretMaskingLogger{inner: inner}
}

func maskValue(value interface{}) interface{} {
	if str, ok := value.(string); ok {
		return MaskSecrets(str)
	}
	strVal := fmt.Sprint(value)
	if masked := MaskSecrets(strVal); masked != strVal {
		return masked
	}
	return value
}

func maskf(format string, args ...interface{}) string {
	return MaskSecrets(fmt.Sprintf(format, args...))
}

func (l *secretMaskingLogger) Tracef(format string, args ...interface{}) {
	l.inner.Tracef("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Debugf(format string, args ...interface{}) {
	l.inner.Debugf("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Infof(format string, args ...interface{}) {
	l.inner.Infof("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Warnf(format string, args ...interface{}) {
	l.inner.Warnf("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Errorf(format string, args ...interface{}) {
	l.inner.Errorf("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Fatalf(format string, args ...interface{}) {
	l.inner.Fatalf("%s", maskf(format, args...))
}

func (l *secretMaskingLogger) Trace(msg string) { l.inner.Trace(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Debug(msg string) { l.inner.Debug(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Info(msg string)  { l.inner.Info(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Warn(msg string)  { l.inner.Warn(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Error(msg string) { l.inner.Error(MaskSecrets(msg)) }
func (l *secretMaskingLogger) Fatal(msg string) { l.inner.Fatal(MaskSecrets(msg)) }

func (l *secretMaskingLogger) WithField(key string, value interface{}) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithField(key, maskValue(value))}
}

func (l *secretMaskingLogger) WithFields(fields map[string]any) LogEntry {
	masked := make(map[string]any, len(fields))
	for k, v := range fields {
		masked[k] = maskValue(v)
	}
	return &secretMaskingEntry{inner: l.inner.WithFields(masked)}
}

// WithContext relies on extractContextFields masking the context values.
func (l *secretMaskingLogger) WithContext(ctx context.Context) LogEntry {
	return &secretMaskingEntry{inner: l.inner.WithContext(ctx)}
}

func (l *secretMaskingLogger) SetLogLevel(level string) error {
	return l.inner.SetLogLevel(level)
}

func (l *secretMaskingLogger) SetLogLevelInt(level sflog.Level) error {
	return l.inner.SetLogLevelInt(level)
}

func (l *secretMaskingLogger) GetLogLevel() string {
	return l.inner.GetLogLevel()
}

func (l *secretMaskingLogger) GetLogLevelInt() sflog.Level {
	return l.inner.GetLogLevelInt()
}

func (l *secretMaskingLogger) SetOutput(output io.Writer) {
	l.inner.SetOutput(output)
}

// secretMaskingEntry wraps a log entry and masks all secrets.
type secretMaskingEntry struct {
	inner LogEntry
}

var _ LogEntry = (*secretMaskingEntry)(nil)

func (e *secretMaskingEntry) Tracef(format string, args ...interface{}) {
	e.inner.Tracef("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Debugf(format string, args ...interface{}) {
	e.inner.Debugf("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Infof(format string, args ...interface{}) {
	e.inner.Infof("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Warnf(format string, args ...interface{}) {
	e.inner.Warnf("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Errorf(format string, args ...interface{}) {
	e.inner.Errorf("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Fatalf(format string, args ...interface{}) {
	e.inner.Fatalf("%s", maskf(format, args...))
}

func (e *secretMaskingEntry) Trace(msg string) { e.inner.Trace(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Debug(msg string) { e.inner.Debug(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Info(msg string)  { e.inner.Info(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Warn(msg string)  { e.inner.Warn(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Error(msg string) { e.inner.Error(MaskSecrets(msg)) }
func (e *secretMaskingEntry) Fatal(msg string) { e.inner.Fatal(MaskSecrets(msg)) }
