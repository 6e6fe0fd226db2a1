// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"github.com/snowflakedb/snowflake-connector-go/internal/query"
)

type execRequest struct {
	SQLText    string            `json:"sqlText"`
	AsyncExec  bool              `json:"asyncExec"`
	SequenceID uint64            `json:"sequenceId"`
	IsInternal bool              `json:"isInternal"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

type execResponseData struct {
	RowType           []query.ExecResponseRowType `json:"rowtype"`
	RowSet            [][]*string                 `json:"rowset"`
	RowSetBase64      string                      `json:"rowsetBase64"`
	Total             int64                       `json:"total"`    // java:long
	Returned          int64                       `json:"returned"` // java:long
	QueryID           string                      `json:"queryId"`
	SQLState          string                      `json:"sqlState"`
	GetResultURL      string                      `json:"getResultUrl,omitempty"`
	QueryResultFormat string                      `json:"queryResultFormat,omitempty"`

	// chunks
	Chunks       []query.ExecResponseChunk `json:"chunks,omitempty"`
	Qrmk         string                    `json:"qrmk,omitempty"`
	ChunkHeaders map[string]string         `json:"chunkHeaders,omitempty"`

	FinalDatabaseName  string `json:"finalDatabaseName"`
	FinalSchemaName    string `json:"finalSchemaName"`
	FinalWarehouseName string `json:"finalWarehouseName"`
	FinalRoleName      string `json:"finalRoleName"`
	StatementTypeID    int64  `json:"statementTypeId"`
}

type execResponse struct {
	Data    execResponseData `json:"data"`
	Message string           `json:"message"`
	Code    string           `json:"code"`
	Success bool             `json:"success"`
}

// isQueryInProgress reports whether the envelope says the query is still running.
func (er *execResponse) isQueryInProgress() bool {
	if !er.Success {
		return false
	}
	switch er.Code {
	case queryInProgressCode, queryInProgressAsyncCode:
		return true
	}
	return false
}
