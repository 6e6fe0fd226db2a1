// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"
	"fmt"
	"time"
)

// queryState is one step of a query execution: querySubmitted,
// queryPending, querySucceeded, queryFailed or queryTimedOut. The last
// three are terminal.
type queryState interface {
	isQueryState()
}

type querySubmitted struct{}

// queryPending is a running query after polls status checks.
type queryPending struct {
	queryID string
	polls   int
}

type querySucceeded struct {
	data *execResponseData
}

type queryFailed struct {
	err *SnowflakeError
}

type queryTimedOut struct {
	queryID string
	polls   int
}

func (querySubmitted) isQueryState() {}
func (queryPending) isQueryState()   {}
func (querySucceeded) isQueryState() {}
func (queryFailed) isQueryState()    {}
func (queryTimedOut) isQueryState()  {}

// nextQueryState applies one service response to the current state. It does
// no I/O. Terminal states are returned unchanged. A pending answer to the
// maxPolls-th status check ends in queryTimedOut.
func nextQueryState(current queryState, resp *execResponse, maxPolls int) queryState {
	var polls int
	switch s := current.(type) {
	case querySubmitted:
		polls = -1
	case queryPending:
		polls = s.polls
	default:
		return current
	}

	if !resp.isQueryInProgress() {
		if resp.Success {
			return querySucceeded{data: &resp.Data}
		}
		return queryFailed{err: newExecutionError(resp.Code, resp.Message, resp.Data.SQLState, resp.Data.QueryID)}
	}

	queryID := resp.Data.QueryID
	if queryID == "" {
		return queryFailed{err: &SnowflakeError{
			Number:  ErrCodeMissingQueryID,
			Message: errMsgMissingQueryID,
			kind:    kindTransport,
		}}
	}
	polls++
	if polls > 0 && polls >= maxPolls {
		return queryTimedOut{queryID: queryID, polls: polls}
	}
	return queryPending{queryID: queryID, polls: polls}
}

// runQuery submits sqlText and polls until the query reaches a terminal
// state. The returned data holds the result descriptor of a succeeded query.
func (ss *SnowflakeSession) runQuery(ctx context.Context, sqlText string) (*execResponseData, error) {
	body, err := ss.newExecRequestBody(sqlText)
	if err != nil {
		return nil, err
	}
	resp, err := ss.rest.postQuery(ctx, ss.token, newRequestID(), body)
	if err != nil {
		return nil, err
	}

	maxPolls := ss.cfg.MaxPollingAttempts
	state := nextQueryState(querySubmitted{}, resp, maxPolls)
	for {
		switch s := state.(type) {
		case querySucceeded:
			logger.WithContext(ctx).Debugf("query %v succeeded", s.data.QueryID)
			return s.data, nil
		case queryFailed:
			logger.WithContext(ctx).Errorf("query failed: %v", s.err)
			return nil, s.err
		case queryTimedOut:
			logger.WithContext(ctx).Warnf("query %v still running after %v status checks", s.queryID, s.polls)
			timedOut := *ErrQueryTimedOut
			timedOut.QueryID = s.queryID
			timedOut.IncludeQueryID = true
			timedOut.MessageArgs = []interface{}{s.queryID, s.polls}
			return nil, &timedOut
		case queryPending:
			ctx = context.WithValue(ctx, SFQueryIDKey, s.queryID)
			if err = sleepContext(ctx, ss.cfg.PollingInterval); err != nil {
				return nil, err
			}
			logger.WithContext(ctx).Debugf("checking query status, attempt %v", s.polls+1)
			statusPollsTotal.Inc()
			resp, err = ss.rest.getQueryResult(ctx, ss.token, s.queryID)
			if err != nil {
				return nil, err
			}
			state = nextQueryState(s, resp, maxPolls)
		default:
			return nil, fmt.Errorf("unexpected query state %T", state)
		}
	}
}

// sleepContext waits for d or until ctx is done, returning ctx.Err() unchanged.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
