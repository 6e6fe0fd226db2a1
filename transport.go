// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"net"
	"net/http"
	"time"
)

// transportConfig holds the configuration for creating HTTP transports
type transportConfig struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	KeepAlive           time.Duration
}

// defaultTransportConfig returns the standard transport configuration. Chunk
// downloads reuse idle connections, so the per host pool follows the worker
// count.
func defaultTransportConfig(workers int) *transportConfig {
	perHost := workers
	if perHost < 2 {
		perHost = 2
	}
	return &transportConfig{
		MaxIdleConns:        10 + perHost,
		MaxIdleConnsPerHost: perHost,
		IdleConnTimeout:     30 * time.Minute,
		DialTimeout:         30 * time.Second,
		KeepAlive:           30 * time.Second,
	}
}

// newTransport creates the pooled transport shared by every session of a
// client. Gzip is requested for envelope responses and decoded
// transparently.
func newTransport(tc *transportConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   tc.DialTimeout,
		KeepAlive: tc.KeepAlive,
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		MaxIdleConns:        tc.MaxIdleConns,
		MaxIdleConnsPerHost: tc.MaxIdleConnsPerHost,
		IdleConnTimeout:     tc.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
}

func newHTTPClient(cfg *ClientConfig) *http.Client {
	return &http.Client{
		Transport: newTransport(defaultTransportConfig(cfg.ChunkDownloadWorkers)),
	}
}
