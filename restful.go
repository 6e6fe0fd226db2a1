// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

const (
	headerSnowflakeToken   = "Snowflake Token=\"%v\""
	headerAuthorizationKey = "Authorization"

	headerContentTypeApplicationJSON     = "application/json"
	headerAcceptTypeApplicationSnowflake = "application/snowflake"

	httpHeaderContentType = "Content-Type"
	httpHeaderAccept      = "accept"
	httpHeaderUserAgent   = "User-Agent"
)

const (
	sessionExpiredCode       = "390112"
	queryInProgressCode      = "333333"
	queryInProgressAsyncCode = "333334"
)

const (
	requestIDKey   = "requestId"
	requestGUIDKey = "request_guid"
)

const (
	loginRequestPath = "/session/v1/login-request"
	queryRequestPath = "/queries/v1/query-request"
	queryResultPath  = "/queries/%s/result"
	monitoringPath   = "/monitoring/queries/%s"
	sessionPath      = "/session"
)

type funcPostType func(context.Context, *snowflakeRestful, *url.URL, map[string]string, []byte, time.Duration) (*http.Response, error)
type funcGetType func(context.Context, *snowflakeRestful, *url.URL, map[string]string, time.Duration) (*http.Response, error)

// snowflakeRestful is the HTTP side of a client. FuncPost and FuncGet send
// requests and can be replaced in tests.
type snowflakeRestful struct {
	Host           string
	Port           int
	Protocol       string
	LoginTimeout   time.Duration // Login timeout
	RequestTimeout time.Duration // Timeout of every other request

	Client *http.Client

	FuncPost funcPostType
	FuncGet  funcGetType
}

func newSnowflakeRestful(cfg *ClientConfig, client *http.Client) *snowflakeRestful {
	return &snowflakeRestful{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Protocol:       cfg.Protocol,
		LoginTimeout:   cfg.LoginTimeout,
		RequestTimeout: cfg.RequestTimeout,
		Client:         client,
		FuncPost:       postRestful,
		FuncGet:        getRestful,
	}
}

func (sr *snowflakeRestful) getURL() *url.URL {
	return &url.URL{
		Scheme: sr.Protocol,
		Host:   sr.Host + ":" + strconv.Itoa(sr.Port),
	}
}

// getFullURL builds a request URL for path. Every request carries a fresh
// request id and request GUID.
func (sr *snowflakeRestful) getFullURL(path string, params *url.Values) *url.URL {
	if params == nil {
		params = &url.Values{}
	}
	if !params.Has(requestIDKey) {
		params.Set(requestIDKey, newRequestID())
	}
	params.Set(requestGUIDKey, newRequestID())
	ret := sr.getURL()
	ret.Path = path
	ret.RawQuery = params.Encode()
	return ret
}

func getHeaders() map[string]string {
	return map[string]string{
		httpHeaderContentType: headerContentTypeApplicationJSON,
		httpHeaderAccept:      headerAcceptTypeApplicationSnowflake,
		httpHeaderUserAgent:   userAgent,
	}
}

func getHeadersWithToken(token string) map[string]string {
	headers := getHeaders()
	headers[headerAuthorizationKey] = fmt.Sprintf(headerSnowflakeToken, token)
	return headers
}

// cancelOnClose releases the per request timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func doRequest(ctx context.Context, client *http.Client, method string, fullURL *url.URL, headers map[string]string, body []byte, timeout time.Duration) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), reader)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func postRestful(
	ctx context.Context,
	sr *snowflakeRestful,
	fullURL *url.URL,
	headers map[string]string,
	body []byte,
	timeout time.Duration) (
	*http.Response, error) {
	return doRequest(ctx, sr.Client, http.MethodPost, fullURL, headers, body, timeout)
}

func getRestful(
	ctx context.Context,
	sr *snowflakeRestful,
	fullURL *url.URL,
	headers map[string]string,
	timeout time.Duration) (
	*http.Response, error) {
	return doRequest(ctx, sr.Client, http.MethodGet, fullURL, headers, nil, timeout)
}

// sendFailed maps an error returned before any response arrived. Caller
// cancellation passes through unchanged.
func sendFailed(ctx context.Context, fullURL *url.URL, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return newTransportError(ErrCodeFailedToConnect, err, errMsgFailedToConnect, redactedURL(fullURL))
}

// httpStatusError maps a non 200 response to the error taxonomy.
func httpStatusError(resp *http.Response, fullURL *url.URL) *SnowflakeError {
	target := redactedURL(fullURL)
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &SnowflakeError{
			Number:      ErrCodeFailedToAuth,
			SQLState:    SQLStateConnectionRejected,
			Message:     errMsgFailedToAuth,
			MessageArgs: []interface{}{resp.StatusCode, target},
			kind:        kindAuthentication,
		}
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return newTransportError(ErrCodeServiceUnavailable, nil, errMsgServiceUnavailable, resp.StatusCode, target)
	}
	return newTransportError(ErrCodeUnexpectedHTTPStatus, nil, errMsgUnexpectedHTTPStatus, resp.StatusCode, target)
}

// redactedURL drops the query string, which may carry a presigned signature.
func redactedURL(u *url.URL) string {
	c := *u
	c.RawQuery = ""
	return c.String()
}

// restCall sends one envelope request and decodes a 200 response into T.
func restCall[T any](ctx context.Context, sr *snowflakeRestful, method string, fullURL *url.URL, headers map[string]string, body []byte, timeout time.Duration) (*T, error) {
	var (
		resp *http.Response
		err  error
	)
	if method == http.MethodPost {
		resp, err = sr.FuncPost(ctx, sr, fullURL, headers, body, timeout)
	} else {
		resp, err = sr.FuncGet(ctx, sr, fullURL, headers, timeout)
	}
	if err != nil {
		return nil, sendFailed(ctx, fullURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.WithContext(ctx).Errorf("HTTP %v from %v", resp.StatusCode, fullURL.Path)
		return nil, httpStatusError(resp, fullURL)
	}
	var respd T
	if err = json.NewDecoder(resp.Body).Decode(&respd); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.WithContext(ctx).Errorf("failed to decode JSON from %v. err: %v", fullURL.Path, err)
		return nil, newTransportError(ErrCodeFailedToDecodeResponse, err, errMsgFailedToDecode, fullURL.Path)
	}
	return &respd, nil
}

func (sr *snowflakeRestful) postQuery(ctx context.Context, token string, requestID string, body []byte) (*execResponse, error) {
	params := &url.Values{}
	params.Set(requestIDKey, requestID)
	fullURL := sr.getFullURL(queryRequestPath, params)
	logger.WithContext(ctx).Debugf("submitting query, requestId: %v", requestID)
	return restCall[execResponse](ctx, sr, http.MethodPost, fullURL, getHeadersWithToken(token), body, sr.RequestTimeout)
}

func (sr *snowflakeRestful) getQueryResult(ctx context.Context, token string, queryID string) (*execResponse, error) {
	fullURL := sr.getFullURL(fmt.Sprintf(queryResultPath, queryID), nil)
	return restCall[execResponse](ctx, sr, http.MethodGet, fullURL, getHeadersWithToken(token), nil, sr.RequestTimeout)
}

func (sr *snowflakeRestful) getMonitoringResult(ctx context.Context, token string, queryID string) (*queryMonitoringResponse, error) {
	fullURL := sr.getFullURL(fmt.Sprintf(monitoringPath, queryID), nil)
	return restCall[queryMonitoringResponse](ctx, sr, http.MethodGet, fullURL, getHeadersWithToken(token), nil, sr.RequestTimeout)
}

func (sr *snowflakeRestful) closeSession(ctx context.Context, token string) error {
	params := &url.Values{}
	params.Set("delete", "true")
	fullURL := sr.getFullURL(sessionPath, params)
	respd, err := restCall[renewSessionResponse](ctx, sr, http.MethodPost, fullURL, getHeadersWithToken(token), nil, sr.RequestTimeout)
	if err != nil {
		return err
	}
	if !respd.Success && respd.Code != sessionExpiredCode {
		return newExecutionError(respd.Code, respd.Message, "", "")
	}
	return nil
}

type renewSessionResponse struct {
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Success bool        `json:"success"`
}
