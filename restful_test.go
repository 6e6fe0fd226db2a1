// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"
)

func postTestError(_ context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
	return nil, errors.New("failed to run post method")
}

func postTestSuccessButInvalidJSON(_ context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
	return newFakeResponse(http.StatusOK, []byte{0x12, 0x34}), nil
}

func postTestAppBadGatewayError(_ context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
	return newFakeResponse(http.StatusBadGateway, []byte{0x12, 0x34}), nil
}

func postTestAppForbiddenError(_ context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
	return newFakeResponse(http.StatusForbidden, []byte{0x12, 0x34}), nil
}

func postTestAppUnexpectedError(_ context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
	return newFakeResponse(http.StatusInsufficientStorage, []byte{0x12, 0x34}), nil
}

func TestUnitPostQueryErrors(t *testing.T) {
	testcases := []struct {
		name     string
		funcPost funcPostType
		number   int
		pred     func(error) bool
	}{
		{"send failure", postTestError, ErrCodeFailedToConnect, IsTransportError},
		{"invalid JSON", postTestSuccessButInvalidJSON, ErrCodeFailedToDecodeResponse, IsTransportError},
		{"bad gateway", postTestAppBadGatewayError, ErrCodeServiceUnavailable, IsTransportError},
		{"forbidden", postTestAppForbiddenError, ErrCodeFailedToAuth, IsAuthenticationError},
		{"unexpected status", postTestAppUnexpectedError, ErrCodeUnexpectedHTTPStatus, IsTransportError},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			sr := newTestRestful()
			sr.FuncPost = tc.funcPost
			_, err := sr.postQuery(context.Background(), "token", newRequestID(), []byte("{}"))
			assertNotNilF(t, err)
			se, ok := err.(*SnowflakeError)
			assertTrueF(t, ok, "expected a SnowflakeError")
			assertEqualE(t, se.Number, tc.number)
			assertTrueE(t, tc.pred(err))
		})
	}
}

func TestUnitPostQueryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sr := newTestRestful()
	sr.FuncPost = func(ctx context.Context, _ *snowflakeRestful, _ *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
		return nil, ctx.Err()
	}
	_, err := sr.postQuery(ctx, "token", newRequestID(), nil)
	assertErrIsE(t, err, context.Canceled)
	_, isSnowflakeErr := err.(*SnowflakeError)
	assertFalseE(t, isSnowflakeErr, "context errors are returned unchanged")
}

func TestUnitPostQueryHeadersAndURL(t *testing.T) {
	sr := newTestRestful()
	requestID := newRequestID()
	sr.FuncPost = func(_ context.Context, _ *snowflakeRestful, u *url.URL, headers map[string]string, _ []byte, timeout time.Duration) (*http.Response, error) {
		assertEqualE(t, u.Path, queryRequestPath)
		assertEqualE(t, u.Query().Get(requestIDKey), requestID)
		assertTrueE(t, u.Query().Get(requestGUIDKey) != "", "request_guid is set")
		assertEqualE(t, headers[headerAuthorizationKey], `Snowflake Token="tkn"`)
		assertEqualE(t, headers[httpHeaderAccept], headerAcceptTypeApplicationSnowflake)
		assertEqualE(t, headers[httpHeaderContentType], headerContentTypeApplicationJSON)
		assertEqualE(t, timeout, sr.RequestTimeout)
		return jsonResponse(t, http.StatusOK, execResponse{Success: true}), nil
	}
	resp, err := sr.postQuery(context.Background(), "tkn", requestID, nil)
	assertNilF(t, err)
	assertTrueE(t, resp.Success)
}

func TestUnitGetFullURL(t *testing.T) {
	sr := newTestRestful()
	params := &url.Values{}
	params.Set("warehouse", "wh")
	u := sr.getFullURL(loginRequestPath, params)
	assertEqualE(t, u.Scheme, "https")
	assertEqualE(t, u.Host, "testaccount.snowflakecomputing.com:443")
	assertEqualE(t, u.Query().Get("warehouse"), "wh")
	assertTrueE(t, u.Query().Get(requestIDKey) != "")
	assertTrueE(t, u.Query().Get(requestGUIDKey) != "")

	other := sr.getFullURL(loginRequestPath, nil)
	assertTrueE(t, other.Query().Get(requestIDKey) != u.Query().Get(requestIDKey), "request ids are unique")
}

func TestUnitCloseSession(t *testing.T) {
	testcases := []struct {
		name    string
		resp    renewSessionResponse
		wantErr bool
	}{
		{"success", renewSessionResponse{Success: true}, false},
		{"session expired", renewSessionResponse{Code: sessionExpiredCode, Message: "Session no longer exists."}, false},
		{"failure", renewSessionResponse{Code: "390111", Message: "Session no longer exists."}, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			sr := newTestRestful()
			sr.FuncPost = func(_ context.Context, _ *snowflakeRestful, u *url.URL, _ map[string]string, _ []byte, _ time.Duration) (*http.Response, error) {
				assertEqualE(t, u.Path, sessionPath)
				assertEqualE(t, u.Query().Get("delete"), "true")
				return jsonResponse(t, http.StatusOK, tc.resp), nil
			}
			err := sr.closeSession(context.Background(), "token")
			assertEqualE(t, err != nil, tc.wantErr)
		})
	}
}

func TestUnitRedactedURL(t *testing.T) {
	u, err := url.Parse("https://bucket.s3.amazonaws.com/results/0_0?X-Amz-Signature=abc")
	assertNilF(t, err)
	assertEqualE(t, redactedURL(u), "https://bucket.s3.amazonaws.com/results/0_0")
	assertEqualE(t, u.RawQuery, "X-Amz-Signature=abc", "the original URL is not modified")
}
