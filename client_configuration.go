// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultPollingInterval      = 500 * time.Millisecond
	defaultMaxPollingAttempts   = 120
	defaultChunkDownloadWorkers = 4
	defaultRequestTimeout       = 60 * time.Second
	defaultLoginTimeout         = 300 * time.Second
	defaultPort                 = 443
	defaultProtocol             = "https"
	defaultDomain               = ".snowflakecomputing.com"
)

// ClientConfig holds the account identifier and the optional settings of a
// SnowflakeClient. Zero values take the defaults.
type ClientConfig struct {
	Account   string // Account name, optionally followed by a region, e.g. "xy12345.eu-central-1"
	Warehouse string
	Database  string
	Schema    string
	Role      string

	// PollingInterval is the fixed delay between query status checks.
	PollingInterval time.Duration
	// MaxPollingAttempts bounds the number of status checks per query.
	MaxPollingAttempts int

	Host     string // defaults to {Account}.snowflakecomputing.com
	Port     int    // defaults to 443
	Protocol string // http or https, defaults to https

	LoginTimeout   time.Duration // Login request timeout
	RequestTimeout time.Duration // Timeout of each query, status and chunk request

	// ChunkDownloadWorkers bounds concurrent chunk downloads of one result.
	ChunkDownloadWorkers int

	// SessionParameters are sent with the login request, keys are upper cased.
	SessionParameters map[string]string
	// Application is reported to Snowflake as the client application name.
	Application string
}

// normalize validates the configuration and fills in defaults.
func (c *ClientConfig) normalize() error {
	if c.Account == "" {
		return ErrEmptyAccount
	}
	if c.PollingInterval < 0 {
		return newConfigurationError(ErrCodeInvalidConfigValue, errMsgInvalidConfigValue, "PollingInterval", c.PollingInterval)
	}
	if c.MaxPollingAttempts < 0 {
		return newConfigurationError(ErrCodeInvalidConfigValue, errMsgInvalidConfigValue, "MaxPollingAttempts", c.MaxPollingAttempts)
	}
	if c.Port < 0 || c.Port > 65535 {
		return newConfigurationError(ErrCodeFailedToParsePort, errMsgFailedToParsePort, c.Port)
	}
	c.Protocol = strings.ToLower(c.Protocol)
	if c.Protocol != "" && c.Protocol != "http" && c.Protocol != "https" {
		return newConfigurationError(ErrCodeInvalidConfigValue, errMsgInvalidConfigValue, "Protocol", c.Protocol)
	}

	c.PollingInterval = durationOrDefault(c.PollingInterval, defaultPollingInterval)
	c.MaxPollingAttempts = intOrDefault(c.MaxPollingAttempts, defaultMaxPollingAttempts)
	c.ChunkDownloadWorkers = intOrDefault(c.ChunkDownloadWorkers, defaultChunkDownloadWorkers)
	c.RequestTimeout = durationOrDefault(c.RequestTimeout, defaultRequestTimeout)
	c.LoginTimeout = durationOrDefault(c.LoginTimeout, defaultLoginTimeout)
	c.Port = intOrDefault(c.Port, defaultPort)
	if c.Protocol == "" {
		c.Protocol = defaultProtocol
	}
	if c.Host == "" {
		c.Host = c.Account + defaultDomain
	}
	if c.Application == "" {
		c.Application = clientType
	}
	return nil
}

// accountName returns the account part of Account, which may carry a region
// suffix after the first dot.
func (c *ClientConfig) accountName() string {
	if i := strings.Index(c.Account, "."); i >= 0 {
		return c.Account[:i]
	}
	return c.Account
}

func (c *ClientConfig) String() string {
	return fmt.Sprintf("account=%v, host=%v:%v, warehouse=%v, database=%v, schema=%v, role=%v",
		c.Account, c.Host, c.Port, c.Warehouse, c.Database, c.Schema, c.Role)
}
