// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"net/http"
	"testing"
	"time"
)

func TestDefaultTransportConfig(t *testing.T) {
	testcases := []struct {
		workers int
		perHost int
	}{
		{0, 2},
		{1, 2},
		{4, 4},
		{16, 16},
	}
	for _, tc := range testcases {
		tc2 := defaultTransportConfig(tc.workers)
		assertEqualE(t, tc2.MaxIdleConnsPerHost, tc.perHost)
		assertEqualE(t, tc2.MaxIdleConns, 10+tc.perHost)
		assertEqualE(t, tc2.IdleConnTimeout, 30*time.Minute)
	}
}

func TestNewHTTPClientTransport(t *testing.T) {
	cfg := newTestConfig()
	cfg.ChunkDownloadWorkers = 8
	client := newHTTPClient(cfg)
	transport, ok := client.Transport.(*http.Transport)
	assertTrueF(t, ok, "expected *http.Transport")
	assertEqualE(t, transport.MaxIdleConnsPerHost, 8)
	assertTrueE(t, transport.Proxy != nil, "proxy settings come from the environment")
	assertTrueE(t, transport.DialContext != nil)
	assertTrueE(t, transport.ForceAttemptHTTP2)
	assertEqualE(t, client.Timeout, time.Duration(0), "timeouts are per request")
}
