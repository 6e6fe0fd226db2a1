// Package query holds the result wire types shared by the connector and its
// result decoders.
package query

import "strings"

// ExecResponseRowType describes column metadata from a query response.
type ExecResponseRowType struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Length    int64  `json:"length"`
	Precision int64  `json:"precision"`
	Scale     int64  `json:"scale"`
	Nullable  bool   `json:"nullable"`
}

// ExecResponseChunk describes one remote result chunk: where to fetch it and
// how large it is.
type ExecResponseChunk struct {
	URL              string `json:"url"`
	RowCount         int    `json:"rowCount"`
	UncompressedSize int64  `json:"uncompressedSize"`
	CompressedSize   int64  `json:"compressedSize"`
}

// Compressed reports whether the chunk is marked as compressed. A zero
// compressed size means the service did not report one.
func (c ExecResponseChunk) Compressed() bool {
	return c.CompressedSize > 0 && c.CompressedSize != c.UncompressedSize
}

// Result formats reported in queryResultFormat.
const (
	FormatJSON  = "json"
	FormatArrow = "arrow"
)

// IsArrow reports whether a queryResultFormat value denotes arrow IPC results.
func IsArrow(format string) bool {
	return strings.EqualFold(format, FormatArrow)
}
