// Package loginterface defines the logging interface used by the Snowflake connector.
// Implement SFLogger to plug a custom logger in with snowflake.SetLogger.
package loginterface

import (
	"context"
	"io"

	"github.com/snowflakedb/snowflake-connector-go/sflog"
)

// ClientLogContextHook is a client-defined hook that can be used to insert log
// fields based on the Context.
type ClientLogContextHook func(context.Context) string

// LogEntry allows for logging using a snapshot of field values.
// No implementation-specific logging details should be placed into this interface.
type LogEntry interface {
	Tracef(format string, args ...interface{})
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})

	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	Fatal(msg string)
}

// SFLogger Snowflake logger interface which abstracts away the underlying logging mechanism.
type SFLogger interface {
	LogEntry
	WithField(key string, value interface{}) LogEntry
	WithFields(fields map[string]any) LogEntry
	WithContext(ctx context.Context) LogEntry

	SetLogLevel(level string) error
	SetLogLevelInt(level sflog.Level) error
	GetLogLevel() string
	GetLogLevelInt() sflog.Level
	SetOutput(output io.Writer)
}
