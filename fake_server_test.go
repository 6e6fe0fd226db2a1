// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/snowflakedb/snowflake-connector-go/internal/query"
)

const (
	fakeSessionToken = "fake-session-token"
	fakePassword     = "fake-password"
)

// fakeSnowflake is an in-process Snowflake endpoint. Queries are routed by
// their SQL text to the responses registered with handle.
type fakeSnowflake struct {
	t      *testing.T
	server *httptest.Server

	mu          sync.Mutex
	queries     map[string]fakeQuery
	chunks      map[string][]byte
	chunkDelay  map[string]time.Duration
	sequenceIDs []uint64
	statusCalls map[string]int

	loggedOut atomic.Bool
}

// fakeQuery answers a submitted query. Pending queries are answered with an
// in progress envelope until pendingChecks status checks were made, forever
// when pendingChecks is negative.
type fakeQuery struct {
	queryID       string
	pendingChecks int
	result        execResponse
}

func newFakeSnowflake(t *testing.T) *fakeSnowflake {
	fs := &fakeSnowflake{
		t:           t,
		queries:     make(map[string]fakeQuery),
		chunks:      make(map[string][]byte),
		chunkDelay:  make(map[string]time.Duration),
		statusCalls: make(map[string]int),
	}
	r := chi.NewRouter()
	r.Post(loginRequestPath, fs.login)
	r.Group(func(r chi.Router) {
		r.Use(fs.requireToken)
		r.Post(queryRequestPath, fs.submit)
		r.Get("/queries/{queryID}/result", fs.result)
		r.Get("/monitoring/queries/{queryID}", fs.monitoring)
		r.Post(sessionPath, fs.logout)
	})
	r.Get("/chunks/{name}", fs.chunk)
	fs.server = httptest.NewServer(r)
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeSnowflake) config() ClientConfig {
	u, err := url.Parse(fs.server.URL)
	assertNilF(fs.t, err)
	port, err := strconv.Atoi(u.Port())
	assertNilF(fs.t, err)
	return ClientConfig{
		Account:         "testaccount",
		Host:            u.Hostname(),
		Port:            port,
		Protocol:        "http",
		PollingInterval: time.Millisecond,
	}
}

func (fs *fakeSnowflake) handle(sqlText string, q fakeQuery) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.queries[sqlText] = q
}

// addChunk serves body as a remote chunk and returns its URL.
func (fs *fakeSnowflake) addChunk(name string, body []byte, delay time.Duration) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.chunks[name] = body
	fs.chunkDelay[name] = delay
	return fs.server.URL + "/chunks/" + name + "?sig=presigned"
}

func (fs *fakeSnowflake) statusCallsOf(queryID string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.statusCalls[queryID]
}

func (fs *fakeSnowflake) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set(httpHeaderContentType, headerContentTypeApplicationJSON)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fs.t.Errorf("failed to encode response: %v", err)
	}
}

func (fs *fakeSnowflake) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerAuthorizationKey) != fmt.Sprintf(headerSnowflakeToken, fakeSessionToken) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *fakeSnowflake) login(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.Data.Password != fakePassword && req.Data.Authenticator != authenticatorJWT {
		fs.writeJSON(w, authResponse{Code: "390100", Message: "Incorrect username or password was specified."})
		return
	}
	fs.writeJSON(w, authResponse{
		Success: true,
		Data: authResponseMain{
			Token:     fakeSessionToken,
			SessionID: 1001,
			SessionInfo: authResponseSessionInfo{
				DatabaseName: r.URL.Query().Get("databaseName"),
			},
		},
	})
}

func (fs *fakeSnowflake) submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var req execRequest
	if err = json.Unmarshal(body, &req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fs.mu.Lock()
	fs.sequenceIDs = append(fs.sequenceIDs, req.SequenceID)
	q, ok := fs.queries[req.SQLText]
	fs.mu.Unlock()
	if !ok {
		fs.writeJSON(w, execResponse{Code: "001003", Message: "SQL compilation error: syntax error", Data: execResponseData{SQLState: "42000"}})
		return
	}
	if q.pendingChecks != 0 {
		fs.writeJSON(w, execResponse{Success: true, Code: queryInProgressAsyncCode, Data: execResponseData{QueryID: q.queryID}})
		return
	}
	fs.writeJSON(w, q.result)
}

func (fs *fakeSnowflake) result(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")
	fs.mu.Lock()
	fs.statusCalls[queryID]++
	calls := fs.statusCalls[queryID]
	var (
		q     fakeQuery
		found bool
	)
	for _, candidate := range fs.queries {
		if candidate.queryID == queryID {
			q, found = candidate, true
		}
	}
	fs.mu.Unlock()
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if q.pendingChecks < 0 || calls < q.pendingChecks {
		fs.writeJSON(w, execResponse{Success: true, Code: queryInProgressCode, Data: execResponseData{QueryID: queryID}})
		return
	}
	fs.writeJSON(w, q.result)
}

func (fs *fakeSnowflake) monitoring(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryID")
	resp := queryMonitoringResponse{Success: true}
	if queryID == "running-qid" {
		resp.Data.Queries = []retStatus{{ID: queryID, Status: "RUNNING"}}
	}
	if queryID == "failed-qid" {
		resp.Data.Queries = []retStatus{{ID: queryID, Status: "FAILED_WITH_ERROR", ErrorCode: 2003, ErrorMessage: "does not exist"}}
	}
	fs.writeJSON(w, resp)
}

func (fs *fakeSnowflake) logout(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("delete") != "true" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if fs.loggedOut.Swap(true) {
		fs.writeJSON(w, renewSessionResponse{Code: sessionExpiredCode, Message: "Session no longer exists."})
		return
	}
	fs.writeJSON(w, renewSessionResponse{Success: true})
}

func (fs *fakeSnowflake) chunk(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if r.Header.Get(headerSseCAlgorithm) != headerSseCAes {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	fs.mu.Lock()
	body, ok := fs.chunks[name]
	delay := fs.chunkDelay[name]
	fs.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if _, err := w.Write(body); err != nil {
		fs.t.Logf("failed to write chunk %v: %v", name, err)
	}
}

func succeededResult(queryID string, rowType []query.ExecResponseRowType, rows [][]*string, total int64) execResponse {
	return execResponse{
		Success: true,
		Data: execResponseData{
			QueryID:           queryID,
			RowType:           rowType,
			RowSet:            rows,
			Total:             total,
			Returned:          int64(len(rows)),
			QueryResultFormat: query.FormatJSON,
		},
	}
}
