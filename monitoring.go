// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"
)

// QueryStatusCode is the execution status of a query as reported by the server.
type QueryStatusCode int

// Query status defined at server side
const (
	SFQueryUnknown QueryStatusCode = iota
	SFQueryRunning
	SFQueryAborting
	SFQuerySuccess
	SFQueryFailedWithError
	SFQueryAborted
	SFQueryQueued
	SFQueryFailedWithIncident
	SFQueryDisconnected
	SFQueryResumingWarehouse
	// SFQueryQueueRepairingWarehouse is a query queued while its warehouse is repaired.
	SFQueryQueueRepairingWarehouse
	SFQueryRestarted
	// SFQueryBlocked is when a statement is waiting on a lock on resource held
	// by another statement.
	SFQueryBlocked
	SFQueryNoData
)

var queryStatusNames = [...]string{"UNKNOWN", "RUNNING", "ABORTING", "SUCCESS",
	"FAILED_WITH_ERROR", "ABORTED", "QUEUED", "FAILED_WITH_INCIDENT", "DISCONNECTED",
	"RESUMING_WAREHOUSE", "QUEUED_REPAIRING_WAREHOUSE", "RESTARTED", "BLOCKED", "NO_DATA"}

func (qs QueryStatusCode) String() string {
	if qs < 0 || int(qs) >= len(queryStatusNames) {
		return queryStatusNames[SFQueryUnknown]
	}
	return queryStatusNames[qs]
}

func strToQueryStatusCode(in string) QueryStatusCode {
	for i, name := range queryStatusNames {
		if name == in {
			return QueryStatusCode(i)
		}
	}
	return SFQueryUnknown
}

// QueryStatus is the monitoring view of one query.
type QueryStatus struct {
	QueryID      string
	Status       QueryStatusCode
	ErrorCode    int
	ErrorMessage string
}

// IsStillRunning reports whether the query has not reached a terminal status.
func (qs *QueryStatus) IsStillRunning() bool {
	switch qs.Status {
	case SFQueryRunning, SFQueryResumingWarehouse, SFQueryQueued,
		SFQueryQueueRepairingWarehouse, SFQueryNoData:
		return true
	default:
		return false
	}
}

// IsError reports whether the query ended, or is ending, without a result.
func (qs *QueryStatus) IsError() bool {
	switch qs.Status {
	case SFQueryAborting, SFQueryFailedWithError, SFQueryAborted,
		SFQueryFailedWithIncident, SFQueryDisconnected, SFQueryBlocked:
		return true
	default:
		return false
	}
}

type retStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    int    `json:"errorCode"`
}

type queryMonitoringResponse struct {
	Data struct {
		Queries []retStatus `json:"queries"`
	} `json:"data"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Success bool   `json:"success"`
}

// QueryStatus returns the monitoring status of a query submitted in any
// session of the same user. An unknown query id yields SFQueryNoData.
func (ss *SnowflakeSession) QueryStatus(ctx context.Context, queryID string) (*QueryStatus, error) {
	ctx = ss.logContext(ctx)
	respd, err := ss.rest.getMonitoringResult(ctx, ss.token, queryID)
	if err != nil {
		return nil, err
	}
	if !respd.Success {
		return nil, newExecutionError(respd.Code, respd.Message, "", queryID)
	}
	if len(respd.Data.Queries) == 0 {
		return &QueryStatus{QueryID: queryID, Status: SFQueryNoData}, nil
	}
	ret := respd.Data.Queries[0]
	logger.WithContext(ctx).Debugf("query %v status: %v", queryID, ret.Status)
	return &QueryStatus{
		QueryID:      queryID,
		Status:       strToQueryStatusCode(ret.Status),
		ErrorCode:    ret.ErrorCode,
		ErrorMessage: ret.ErrorMessage,
	}, nil
}
