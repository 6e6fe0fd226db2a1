// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

/** This file contains helper functions for tests only. **/

type fakeResponseBody struct {
	*bytes.Reader
	closed bool
}

func (b *fakeResponseBody) Close() error {
	b.closed = true
	return nil
}

func newFakeResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       &fakeResponseBody{Reader: bytes.NewReader(body)},
	}
}

func jsonResponse(t *testing.T, status int, v any) *http.Response {
	t.Helper()
	b, err := json.Marshal(v)
	assertNilF(t, err)
	return newFakeResponse(status, b)
}

// newTestRestful returns a restful whose every call fails until the test
// replaces FuncPost or FuncGet.
func newTestRestful() *snowflakeRestful {
	return &snowflakeRestful{
		Host:           "testaccount.snowflakecomputing.com",
		Port:           443,
		Protocol:       "https",
		LoginTimeout:   time.Second,
		RequestTimeout: time.Second,
		Client:         http.DefaultClient,
		FuncPost: func(context.Context, *snowflakeRestful, *url.URL, map[string]string, []byte, time.Duration) (*http.Response, error) {
			panic("unexpected POST")
		},
		FuncGet: func(context.Context, *snowflakeRestful, *url.URL, map[string]string, time.Duration) (*http.Response, error) {
			panic("unexpected GET")
		},
	}
}

func newTestConfig() *ClientConfig {
	cfg := &ClientConfig{
		Account:         "testaccount",
		PollingInterval: time.Millisecond,
	}
	if err := cfg.normalize(); err != nil {
		panic(err)
	}
	return cfg
}

func strPtr(s string) *string {
	return &s
}
