// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"errors"
	"fmt"
	"strconv"
)

// errorKind classifies a SnowflakeError independently of its Number, which
// may be a code chosen by the service.
type errorKind int

const (
	kindUnknown errorKind = iota
	kindConfiguration
	kindAuthentication
	kindExecution
	kindTimeout
	kindTransport
	kindDecode
)

// SnowflakeError is a error type including various Snowflake specific information.
type SnowflakeError struct {
	Number         int
	SQLState       string
	QueryID        string
	Message        string
	MessageArgs    []interface{}
	IncludeQueryID bool

	kind  errorKind
	cause error
}

func (se *SnowflakeError) Error() string {
	message := se.Message
	if len(se.MessageArgs) > 0 {
		message = fmt.Sprintf(se.Message, se.MessageArgs...)
	}
	var s string
	if se.IncludeQueryID {
		s = fmt.Sprintf("%06d (%s): %s: %s", se.Number, se.SQLState, se.QueryID, message)
	} else {
		s = fmt.Sprintf("%06d (%s): %s", se.Number, se.SQLState, message)
	}
	if se.cause != nil {
		s += ": " + se.cause.Error()
	}
	return s
}

// Unwrap returns the underlying transport or parse error, if any.
func (se *SnowflakeError) Unwrap() error {
	return se.cause
}

// Is matches another SnowflakeError with the same Number, so preformatted
// errors can be used with errors.Is.
func (se *SnowflakeError) Is(target error) bool {
	t, ok := target.(*SnowflakeError)
	if !ok {
		return false
	}
	return t.Number == se.Number
}

// withCause returns a copy of se carrying the given cause and message arguments.
func (se *SnowflakeError) withCause(cause error, args ...interface{}) *SnowflakeError {
	c := *se
	c.cause = cause
	if len(args) > 0 {
		c.MessageArgs = args
	}
	return &c
}

const (
	// configuration

	// ErrCodeEmptyAccountCode is an error code for the case where the account is not configured.
	ErrCodeEmptyAccountCode = 260001
	// ErrCodeEmptyUsernameCode is an error code for the case where the user is not configured.
	ErrCodeEmptyUsernameCode = 260002
	// ErrCodeEmptyPasswordCode is an error code for the case where password auth has an empty password.
	ErrCodeEmptyPasswordCode = 260003
	// ErrCodeFailedToParsePort is an error code for the case where a configured port is invalid.
	ErrCodeFailedToParsePort = 260004
	// ErrCodeNoAuthMethod is an error code for the case where no auth method is configured.
	ErrCodeNoAuthMethod = 260005
	// ErrCodeInvalidConfigValue is an error code for a configuration value out of range.
	ErrCodeInvalidConfigValue = 260006
	// ErrCodePrivateKeyParseError is an error code for key material that cannot be decoded or decrypted.
	ErrCodePrivateKeyParseError = 260010
	// ErrCodeUnsupportedPrivateKey is an error code for a private key that is not RSA.
	ErrCodeUnsupportedPrivateKey = 260011
	// ErrCodeFailedToSignAssertion is an error code for a failure signing the login JWT.
	ErrCodeFailedToSignAssertion = 260012
	// ErrCodeTomlFileParsingFailed is an error code for an unreadable connections.toml.
	ErrCodeTomlFileParsingFailed = 260013
	// ErrCodeFailedToFindConnectionInToml is an error code for a connection name missing from connections.toml.
	ErrCodeFailedToFindConnectionInToml = 260014
	// ErrCodeInvalidFilePermission is an error code for a connections.toml readable by group or others.
	ErrCodeInvalidFilePermission = 260015
	// ErrCodeFailedToReadPrivateKeyFile is an error code for a private_key_file that cannot be read.
	ErrCodeFailedToReadPrivateKeyFile = 260016
	// ErrCodeAssertionExpired is an error code for a login JWT that expired before it was sent.
	ErrCodeAssertionExpired = 260017

	// authentication

	// ErrCodeFailedToAuth is an error code for a login rejected at the HTTP level.
	ErrCodeFailedToAuth = 261001
	// ErrCodeMissingSessionToken is an error code for a successful login response without a token.
	ErrCodeMissingSessionToken = 261002

	// execution and timeout

	// ErrCodeMissingQueryID is an error code for a pending query response without a query id.
	ErrCodeMissingQueryID = 262001
	// ErrCodeQueryTimedOut is an error code for a query that did not finish within the polling budget.
	ErrCodeQueryTimedOut = 262010

	// transport

	// ErrCodeServiceUnavailable is an error code for 502, 503 and 504 responses.
	ErrCodeServiceUnavailable = 263001
	// ErrCodeFailedToConnect is an error code for a request that could not be sent or read.
	ErrCodeFailedToConnect = 263002
	// ErrCodeUnexpectedHTTPStatus is an error code for any other non 200 response.
	ErrCodeUnexpectedHTTPStatus = 263003
	// ErrCodeFailedToDecodeResponse is an error code for a response body that is not a valid envelope.
	ErrCodeFailedToDecodeResponse = 263004
	// ErrCodeFailedToGetChunk is an error code for a failed chunk download.
	ErrCodeFailedToGetChunk = 263005
	// ErrCodeFailedToDecodeChunk is an error code for chunk content that cannot be decompressed or parsed.
	ErrCodeFailedToDecodeChunk = 263006
	// ErrCodeRowCountMismatch is an error code for a result whose rows do not match its descriptor.
	ErrCodeRowCountMismatch = 263007

	// decode

	// ErrCodeColumnNotFound is an error code for a column name missing from a result set.
	ErrCodeColumnNotFound = 264001
	// ErrCodeNullValue is an error code for a null cell read into a non-nullable type.
	ErrCodeNullValue = 264002
	// ErrCodeInvalidValue is an error code for cell text that does not parse as the requested type.
	ErrCodeInvalidValue = 264003
)

const (
	// SQLStateConnectionWasNotEstablished is a SQL State for a connection that could not be made.
	SQLStateConnectionWasNotEstablished = "08001"
	// SQLStateConnectionRejected is a SQL State for a rejected login.
	SQLStateConnectionRejected = "08004"
	// SQLStateConnectionFailure is a SQL State for a connection that failed after being established.
	SQLStateConnectionFailure = "08006"
	// SQLStateInvalidDataTimeFormat is a SQL State for a value that cannot be converted.
	SQLStateInvalidDataTimeFormat = "22007"
)

const (
	errMsgFailedToParsePort     = "failed to parse a port number. port: %v"
	errMsgInvalidConfigValue    = "invalid value for %v: %v"
	errMsgPrivateKeyParse       = "failed to parse the private key: %v"
	errMsgUnsupportedPrivateKey = "private key must be RSA, got %T"
	errMsgFailedToSign          = "failed to sign the login assertion"
	errMsgTomlParsing           = "failed to parse connections.toml at %v"
	errMsgConnectionNotInToml   = "connection %v is not defined in connections.toml"
	errMsgTomlValue             = "failed to parse the value of %v in connections.toml: %v"
	errMsgInvalidFilePermission = "%v must not be accessible by group or others, permission: %v"
	errMsgReadPrivateKeyFile    = "failed to read private key file %v"
	errMsgFailedToAuth          = "failed to authenticate. HTTP: %v, URL: %v"
	errMsgMissingSessionToken   = "login succeeded but the response has no session token"
	errMsgMissingQueryID        = "query is in progress but the response has no query id"
	errMsgQueryTimedOut         = "query %v did not finish after %v status checks"
	errMsgServiceUnavailable    = "service unavailable. HTTP: %v, URL: %v"
	errMsgFailedToConnect       = "failed to send request to %v"
	errMsgUnexpectedHTTPStatus  = "unexpected HTTP status. HTTP: %v, URL: %v"
	errMsgFailedToDecode        = "failed to decode response from %v"
	errMsgFailedToGetChunk      = "failed to get chunk %v. HTTP: %v"
	errMsgFailedToGetChunkIO    = "failed to get chunk %v"
	errMsgFailedToDecodeChunk   = "failed to decode chunk %v"
	errMsgRowCountMismatch      = "result has %v rows, descriptor declares %v"
	errMsgRowWidthMismatch      = "row %v has %v cells, result has %v columns"
	errMsgColumnNotFound        = "column %v not found"
	errMsgNullValue             = "value of column %v is null"
	errMsgInvalidValue          = "cannot decode %q of column %v as %v"
)

var (
	// preformatted errors

	// ErrEmptyAccount is returned if the account is not configured.
	ErrEmptyAccount = &SnowflakeError{
		Number:   ErrCodeEmptyAccountCode,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  "account is empty",
		kind:     kindConfiguration,
	}
	// ErrEmptyUsername is returned if the user is not configured.
	ErrEmptyUsername = &SnowflakeError{
		Number:   ErrCodeEmptyUsernameCode,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  "user is empty",
		kind:     kindConfiguration,
	}
	// ErrEmptyPassword is returned if password auth has no password.
	ErrEmptyPassword = &SnowflakeError{
		Number:   ErrCodeEmptyPasswordCode,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  "password is empty",
		kind:     kindConfiguration,
	}
	// ErrNoAuthMethod is returned if no auth method is configured.
	ErrNoAuthMethod = &SnowflakeError{
		Number:   ErrCodeNoAuthMethod,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  "no auth method is configured",
		kind:     kindConfiguration,
	}
	// ErrPrivateKeyParse is returned if the private key cannot be decoded or decrypted.
	ErrPrivateKeyParse = &SnowflakeError{
		Number:   ErrCodePrivateKeyParseError,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  errMsgPrivateKeyParse,
		kind:     kindConfiguration,
	}
	// ErrAssertionExpired is returned if the login JWT expired before the login request.
	ErrAssertionExpired = &SnowflakeError{
		Number:   ErrCodeAssertionExpired,
		SQLState: SQLStateConnectionWasNotEstablished,
		Message:  "login assertion expired before it was sent",
		kind:     kindConfiguration,
	}
	// ErrQueryTimedOut is returned if a query is still running after the polling budget.
	ErrQueryTimedOut = &SnowflakeError{
		Number:  ErrCodeQueryTimedOut,
		Message: errMsgQueryTimedOut,
		kind:    kindTimeout,
	}
	// ErrColumnNotFound is returned when decoding a column that is not part of the result.
	ErrColumnNotFound = &SnowflakeError{
		Number:  ErrCodeColumnNotFound,
		Message: errMsgColumnNotFound,
		kind:    kindDecode,
	}
	// ErrNullValue is returned when decoding a null cell into a non-nullable type.
	ErrNullValue = &SnowflakeError{
		Number:  ErrCodeNullValue,
		Message: errMsgNullValue,
		kind:    kindDecode,
	}
	// ErrInvalidValue is returned when cell text does not parse as the requested type.
	ErrInvalidValue = &SnowflakeError{
		Number:   ErrCodeInvalidValue,
		SQLState: SQLStateInvalidDataTimeFormat,
		Message:  errMsgInvalidValue,
		kind:     kindDecode,
	}
)

func errorKindOf(err error) errorKind {
	var se *SnowflakeError
	if errors.As(err, &se) {
		return se.kind
	}
	return kindUnknown
}

// IsConfigurationError reports whether err is caused by missing or invalid
// configuration or credential material.
func IsConfigurationError(err error) bool { return errorKindOf(err) == kindConfiguration }

// IsAuthenticationError reports whether err is a rejected login.
func IsAuthenticationError(err error) bool { return errorKindOf(err) == kindAuthentication }

// IsExecutionError reports whether err is a query failure reported by Snowflake.
func IsExecutionError(err error) bool { return errorKindOf(err) == kindExecution }

// IsTimeoutError reports whether err is an exhausted polling budget.
func IsTimeoutError(err error) bool { return errorKindOf(err) == kindTimeout }

// IsTransportError reports whether err is a network, HTTP or chunk retrieval failure.
func IsTransportError(err error) bool { return errorKindOf(err) == kindTransport }

// IsDecodeError reports whether err comes from decoding a single cell.
func IsDecodeError(err error) bool { return errorKindOf(err) == kindDecode }

func newConfigurationError(number int, message string, args ...interface{}) *SnowflakeError {
	return &SnowflakeError{
		Number:      number,
		SQLState:    SQLStateConnectionWasNotEstablished,
		Message:     message,
		MessageArgs: args,
		kind:        kindConfiguration,
	}
}

func newTransportError(number int, cause error, message string, args ...interface{}) *SnowflakeError {
	return &SnowflakeError{
		Number:      number,
		SQLState:    SQLStateConnectionFailure,
		Message:     message,
		MessageArgs: args,
		kind:        kindTransport,
		cause:       cause,
	}
}

// newExecutionError converts a failure envelope from the service. A code that
// is not numeric is reported as -1. An expired session is an authentication
// failure rather than a query failure.
func newExecutionError(code, message, sqlState, queryID string) *SnowflakeError {
	number, err := strconv.Atoi(code)
	if err != nil {
		number = -1
	}
	kind := kindExecution
	if code == sessionExpiredCode {
		kind = kindAuthentication
	}
	return &SnowflakeError{
		Number:         number,
		SQLState:       sqlState,
		QueryID:        queryID,
		Message:        message,
		IncludeQueryID: queryID != "",
		kind:           kind,
	}
}
