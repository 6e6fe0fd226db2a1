// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	ia "github.com/snowflakedb/snowflake-connector-go/internal/arrow"
	"github.com/snowflakedb/snowflake-connector-go/internal/query"
)

const (
	headerSseCAlgorithm = "x-amz-server-side-encryption-customer-algorithm"
	headerSseCKey       = "x-amz-server-side-encryption-customer-key"
	headerSseCAes       = "AES256"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// chunkDownloader assembles the rows of one succeeded query: the inline
// first batch followed by every remote chunk in descriptor order.
type chunkDownloader struct {
	rest    *snowflakeRestful
	data    *execResponseData
	workers int
	pool    memory.Allocator
}

func newChunkDownloader(rest *snowflakeRestful, data *execResponseData, workers int) *chunkDownloader {
	return &chunkDownloader{
		rest:    rest,
		data:    data,
		workers: intOrDefault(workers, defaultChunkDownloadWorkers),
		pool:    memory.DefaultAllocator,
	}
}

func (cd *chunkDownloader) isArrow() bool {
	return query.IsArrow(cd.data.QueryResultFormat)
}

// assemble returns every row of the result. Any failed chunk fails the whole
// result; no partial rows are returned.
func (cd *chunkDownloader) assemble(ctx context.Context) ([][]*string, error) {
	first, err := cd.firstBatch()
	if err != nil {
		return nil, err
	}
	chunks, err := cd.downloadAll(ctx)
	if err != nil {
		return nil, err
	}

	total := len(first)
	for _, c := range chunks {
		total += len(c)
	}
	rows := make([][]*string, 0, total)
	rows = append(rows, first...)
	for _, c := range chunks {
		rows = append(rows, c...)
	}

	width := len(cd.data.RowType)
	for i, row := range rows {
		if len(row) != width {
			return nil, newTransportError(ErrCodeRowCountMismatch, nil, errMsgRowWidthMismatch, i, len(row), width)
		}
	}
	if cd.data.Total > 0 && int64(len(rows)) != cd.data.Total {
		return nil, newTransportError(ErrCodeRowCountMismatch, nil, errMsgRowCountMismatch, len(rows), cd.data.Total)
	}
	return rows, nil
}

func (cd *chunkDownloader) firstBatch() ([][]*string, error) {
	if !cd.isArrow() {
		return cd.data.RowSet, nil
	}
	if cd.data.RowSetBase64 == "" {
		return nil, nil
	}
	raw, err := base64.StdEncoding.DecodeString(cd.data.RowSetBase64)
	if err != nil {
		return nil, newTransportError(ErrCodeFailedToDecodeChunk, err, errMsgFailedToDecodeChunk, 0)
	}
	rows, err := ia.DecodeRecords(bytes.NewReader(raw), cd.data.RowType, cd.pool)
	if err != nil {
		return nil, newTransportError(ErrCodeFailedToDecodeChunk, err, errMsgFailedToDecodeChunk, 0)
	}
	return rows, nil
}

// downloadAll fetches the remote chunks with at most workers requests in
// flight. Results are stored by chunk index so completion order does not
// matter.
func (cd *chunkDownloader) downloadAll(ctx context.Context) ([][][]*string, error) {
	metas := cd.data.Chunks
	if len(metas) == 0 {
		return nil, nil
	}
	logger.WithContext(ctx).Infof("downloading %v chunks with %v workers", len(metas), cd.workers)
	results := make([][][]*string, len(metas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cd.workers)
	for idx := range metas {
		g.Go(func() error {
			rows, err := cd.downloadChunk(gctx, idx)
			if err != nil {
				return err
			}
			results[idx] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return results, nil
}

func (cd *chunkDownloader) chunkHeaders() map[string]string {
	headers := make(map[string]string)
	if len(cd.data.ChunkHeaders) > 0 {
		for k, v := range cd.data.ChunkHeaders {
			headers[k] = v
		}
		return headers
	}
	headers[headerSseCAlgorithm] = headerSseCAes
	headers[headerSseCKey] = cd.data.Qrmk
	return headers
}

func (cd *chunkDownloader) downloadChunk(ctx context.Context, idx int) ([][]*string, error) {
	meta := cd.data.Chunks[idx]
	chunkURL, err := url.Parse(meta.URL)
	if err != nil {
		return nil, newTransportError(ErrCodeFailedToGetChunk, err, errMsgFailedToGetChunkIO, idx)
	}
	logger.WithContext(ctx).Debugf("download start chunk: %v", idx+1)
	start := time.Now()

	resp, err := cd.rest.FuncGet(ctx, cd.rest, chunkURL, cd.chunkHeaders(), cd.rest.RequestTimeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newTransportError(ErrCodeFailedToGetChunk, err, errMsgFailedToGetChunkIO, idx)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Warnf("closing chunk %v body: %v", idx, err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		logger.WithContext(ctx).Errorf("HTTP: %v, URL: %v", resp.StatusCode, redactedURL(chunkURL))
		return nil, newTransportError(ErrCodeFailedToGetChunk, nil, errMsgFailedToGetChunk, idx, resp.StatusCode)
	}

	body := &countingReader{r: resp.Body}
	rows, err := cd.decodeChunk(bufio.NewReader(body), meta)
	chunkBytesTotal.Add(float64(body.n))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, newTransportError(ErrCodeFailedToDecodeChunk, err, errMsgFailedToDecodeChunk, idx)
	}
	if meta.RowCount > 0 && len(rows) != meta.RowCount {
		return nil, newTransportError(ErrCodeRowCountMismatch, nil, errMsgRowCountMismatch, len(rows), meta.RowCount)
	}
	chunksDownloadedTotal.Inc()
	logger.WithContext(ctx).Debugf("processed chunk %v out of %v in %v. bytes: %v, rows: %v",
		idx+1, len(cd.data.Chunks), time.Since(start), body.n, len(rows))
	return rows, nil
}

func (cd *chunkDownloader) decodeChunk(bufStream *bufio.Reader, meta query.ExecResponseChunk) ([][]*string, error) {
	source, closeSource, err := decompressedReader(bufStream)
	if err != nil {
		return nil, err
	}
	defer closeSource()
	if _, plain := source.(*bufio.Reader); plain && meta.Compressed() {
		logger.Debug("chunk marked compressed arrived decoded")
	}

	if cd.isArrow() {
		return ia.DecodeRecords(source, cd.data.RowType, cd.pool)
	}
	// JSON chunk bodies are comma separated row arrays without the enclosing brackets.
	wrapped := io.MultiReader(strings.NewReader("["), source, strings.NewReader("]"))
	var rows [][]*string
	if err = json.NewDecoder(wrapped).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// decompressedReader detects gzip and zstd content by its magic bytes. Other
// content is returned as is.
func decompressedReader(br *bufio.Reader) (io.Reader, func(), error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	}
	return br, func() {}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
