// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snowflake_connector_queries_total",
			Help: "Total number of queries by terminal outcome.",
		},
		[]string{"outcome"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "snowflake_connector_query_duration_seconds",
			Help:    "Time from query submission to a materialized result.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
	statusPollsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snowflake_connector_status_polls_total",
			Help: "Total number of query status requests.",
		},
	)
	chunksDownloadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snowflake_connector_chunks_downloaded_total",
			Help: "Total number of result chunks downloaded.",
		},
	)
	chunkBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "snowflake_connector_chunk_bytes_total",
			Help: "Total number of result chunk bytes received before decompression.",
		},
	)
	loginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snowflake_connector_logins_total",
			Help: "Total number of login attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		queriesTotal,
		queryDurationSeconds,
		statusPollsTotal,
		chunksDownloadedTotal,
		chunkBytesTotal,
		loginsTotal,
	)
}

// observeQuery records the outcome of one query call.
func observeQuery(start time.Time, err error) {
	queryDurationSeconds.Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
		queriesTotal.WithLabelValues(outcomeSuccess).Inc()
	case IsTimeoutError(err):
		queriesTotal.WithLabelValues(outcomeTimeout).Inc()
	case IsExecutionError(err):
		queriesTotal.WithLabelValues(outcomeFailed).Inc()
	default:
		queriesTotal.WithLabelValues(outcomeError).Inc()
	}
}

func observeLogin(err error) {
	if err == nil {
		loginsTotal.WithLabelValues(outcomeSuccess).Inc()
		return
	}
	loginsTotal.WithLabelValues(outcomeFailed).Inc()
}
