// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/snowflakedb/snowflake-connector-go/internal/query"
)

// SnowflakeClient holds the configuration and the HTTP connection pool
// shared by its sessions. It is safe for concurrent use.
type SnowflakeClient struct {
	username string
	auth     AuthMethod
	cfg      ClientConfig
	rest     *snowflakeRestful
}

// NewClient validates the configuration and returns a client. No request is
// sent until CreateSession.
func NewClient(username string, auth AuthMethod, cfg ClientConfig) (*SnowflakeClient, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if err := validateAuthMethod(auth); err != nil {
		return nil, err
	}
	return &SnowflakeClient{
		username: username,
		auth:     auth,
		cfg:      cfg,
		rest:     newSnowflakeRestful(&cfg, newHTTPClient(&cfg)),
	}, nil
}

// CreateSession resolves the credential and logs in.
func (c *SnowflakeClient) CreateSession(ctx context.Context) (session *SnowflakeSession, err error) {
	defer func() { observeLogin(err) }()
	cred, err := resolveCredential(c.auth, c.cfg.Account, c.username, time.Now())
	if err != nil {
		return nil, err
	}
	authData, err := authenticate(ctx, c.rest, &c.cfg, c.username, cred)
	if err != nil {
		return nil, err
	}
	return &SnowflakeSession{
		token:     authData.Token,
		sessionID: authData.SessionID,
		user:      c.username,
		cfg:       &c.cfg,
		rest:      c.rest,
	}, nil
}

// SnowflakeSession is a logged in session. Queries on one session may run
// concurrently; each runs its own submit, poll and download pipeline.
type SnowflakeSession struct {
	token     string
	sessionID int64
	user      string
	cfg       *ClientConfig
	rest      *snowflakeRestful

	sequenceCounter atomic.Uint64
}

// QueryResult is a materialized query result.
type QueryResult struct {
	QueryID string
	Columns []string
	Rows    []*SnowflakeRow
}

// Query runs sql and returns every row of its result.
func (ss *SnowflakeSession) Query(ctx context.Context, sql string) ([]*SnowflakeRow, error) {
	res, err := ss.Execute(ctx, sql)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Execute runs sql and returns its result together with the query id and
// column names.
func (ss *SnowflakeSession) Execute(ctx context.Context, sql string) (res *QueryResult, err error) {
	start := time.Now()
	defer func() { observeQuery(start, err) }()
	ctx = ss.logContext(ctx)

	data, err := ss.runQuery(ctx, sql)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, SFQueryIDKey, data.QueryID)
	cells, err := newChunkDownloader(ss.rest, data, ss.cfg.ChunkDownloadWorkers).assemble(ctx)
	if err != nil {
		logger.WithContext(ctx).Errorf("failed to assemble result: %v", err)
		return nil, err
	}
	columns := newColumnIndex(query.ColumnNames(data.RowType))
	logger.WithContext(ctx).Infof("query returned %v rows", len(cells))
	return &QueryResult{
		QueryID: data.QueryID,
		Columns: query.ColumnNames(data.RowType),
		Rows:    newRows(cells, columns),
	}, nil
}

// Close logs the session out. An already expired session is not an error.
func (ss *SnowflakeSession) Close(ctx context.Context) error {
	ctx = ss.logContext(ctx)
	logger.WithContext(ctx).Info("closing session")
	return ss.rest.closeSession(ctx, ss.token)
}

func (ss *SnowflakeSession) logContext(ctx context.Context) context.Context {
	return withSessionLogContext(ctx, ss.sessionID, ss.user)
}

func (ss *SnowflakeSession) newExecRequestBody(sqlText string) ([]byte, error) {
	req := execRequest{
		SQLText:    sqlText,
		AsyncExec:  false,
		SequenceID: ss.sequenceCounter.Add(1),
		IsInternal: false,
	}
	if ss.cfg.ChunkDownloadWorkers > 0 {
		req.Parameters = map[string]string{
			"CLIENT_PREFETCH_THREADS": strconv.Itoa(ss.cfg.ChunkDownloadWorkers),
		}
	}
	return json.Marshal(req)
}
