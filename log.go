// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"

	loggerinternal "github.com/snowflakedb/snowflake-connector-go/internal/logger"
	"github.com/snowflakedb/snowflake-connector-go/loginterface"
)

// SFSessionIDKey is context key of session id
const SFSessionIDKey contextKey = "LOG_SESSION_ID"

// SFSessionUserKey is context key of user id of a session
const SFSessionUserKey contextKey = "LOG_USER"

// SFQueryIDKey is context key of the query being executed
const SFQueryIDKey contextKey = "LOG_QUERY_ID"

func init() {
	SetLogKeys(SFSessionIDKey, SFSessionUserKey, SFQueryIDKey)
	_ = logger.SetLogLevel("error")
}

type (
	// ClientLogContextHook is a client-defined hook that can be used to insert log
	// fields based on the Context.
	ClientLogContextHook = loginterface.ClientLogContextHook

	// LogEntry allows for logging using a snapshot of field values.
	LogEntry = loginterface.LogEntry

	// SFLogger Snowflake logger interface which abstracts away the underlying logging mechanism.
	SFLogger = loginterface.SFLogger
)

// SetLogKeys sets the context keys to be written to logs when logger.WithContext is used.
func SetLogKeys(keys ...contextKey) {
	ikeys := make([]interface{}, len(keys))
	for i, k := range keys {
		ikeys[i] = k
	}
	loggerinternal.SetLogKeys(ikeys)
}

// RegisterLogContextHook registers a hook that can be used to extract fields
// from the Context and associated with log messages using the provided key.
func RegisterLogContextHook(contextKey string, ctxExtractor ClientLogContextHook) {
	loggerinternal.RegisterLogContextHook(contextKey, ctxExtractor)
}

// logger delegates to the internal global logger, so SetLogger takes effect
// everywhere.
var logger SFLogger = loggerinternal.NewLoggerProxy()

// SetLogger replaces the connector logger. The provided logger is always
// wrapped with secret masking and level filtering.
func SetLogger(inLogger SFLogger) error {
	return loggerinternal.SetLogger(inLogger)
}

// GetLogger returns the connector logger.
func GetLogger() SFLogger {
	return logger
}

// CreateDefaultLogger creates a new logrus-backed logger with secret masking.
// It does not replace the current logger; pass it to SetLogger for that.
func CreateDefaultLogger() SFLogger {
	return loggerinternal.CreateDefaultLogger()
}

// withSessionLogContext adds the session fields used by WithContext.
func withSessionLogContext(ctx context.Context, sessionID int64, user string) context.Context {
	ctx = context.WithValue(ctx, SFSessionIDKey, sessionID)
	return context.WithValue(ctx, SFSessionUserKey, user)
}
