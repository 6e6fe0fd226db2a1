// Package arrow decodes arrow IPC result streams into the textual cell format
// used by JSON results, so both formats share one row decoder.
package arrow

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/snowflakedb/snowflake-connector-go/internal/query"
)

// DecodeRecords reads every record of an arrow IPC stream and returns its rows
// as nullable text cells. rowType supplies the Snowflake logical type of each
// column, which decides how physical arrow values are rendered.
func DecodeRecords(r io.Reader, rowType []query.ExecResponseRowType, alloc memory.Allocator) ([][]*string, error) {
	if alloc == nil {
		alloc = memory.DefaultAllocator
	}
	reader, err := ipc.NewReader(r, ipc.WithAllocator(alloc))
	if err != nil {
		return nil, err
	}
	defer reader.Release()

	var rows [][]*string
	for reader.Next() {
		record := reader.Record()
		if int(record.NumCols()) != len(rowType) {
			return nil, fmt.Errorf("record has %d columns, result has %d", record.NumCols(), len(rowType))
		}
		start := len(rows)
		numRows := int(record.NumRows())
		for i := 0; i < numRows; i++ {
			rows = append(rows, make([]*string, len(rowType)))
		}
		for colIdx, col := range record.Columns() {
			for i := 0; i < numRows; i++ {
				if col.IsNull(i) {
					continue
				}
				text, err := cellText(rowType[colIdx], col, i)
				if err != nil {
					return nil, fmt.Errorf("column %s: %w", rowType[colIdx].Name, err)
				}
				rows[start+i][colIdx] = &text
			}
		}
	}
	if err = reader.Err(); err != nil && err != io.EOF {
		return nil, err
	}
	return rows, nil
}

// cellText renders row i of col the way the JSON result format transmits it.
func cellText(meta query.ExecResponseRowType, col arrow.Array, i int) (string, error) {
	switch strings.ToUpper(meta.Type) {
	case "FIXED":
		v, err := integerValue(col, i)
		if err != nil {
			return "", err
		}
		return scaledText(v, int(meta.Scale)), nil
	case "REAL":
		f, ok := col.(*array.Float64)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		return strconv.FormatFloat(f.Value(i), 'g', -1, 64), nil
	case "TEXT", "VARIANT", "OBJECT", "ARRAY":
		s, ok := col.(*array.String)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		return s.Value(i), nil
	case "BOOLEAN":
		b, ok := col.(*array.Boolean)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		if b.Value(i) {
			return "1", nil
		}
		return "0", nil
	case "DATE":
		d, ok := col.(*array.Date32)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		return strconv.FormatInt(int64(d.Value(i)), 10), nil
	case "BINARY":
		b, ok := col.(*array.Binary)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		return hex.EncodeToString(b.Value(i)), nil
	case "TIME", "TIMESTAMP_NTZ", "TIMESTAMP_LTZ", "TIMESTAMP_TZ":
		return timestampText(meta, col, i)
	}
	return "", fmt.Errorf("unsupported data type %v", meta.Type)
}

func unexpectedArray(meta query.ExecResponseRowType, col arrow.Array) error {
	return fmt.Errorf("unexpected arrow type %v for %v", col.DataType(), meta.Type)
}

// integerValue reads a FIXED column, which the service narrows to the
// smallest integer width that fits or sends as a 128 bit decimal.
func integerValue(col arrow.Array, i int) (*big.Int, error) {
	switch c := col.(type) {
	case *array.Int8:
		return big.NewInt(int64(c.Value(i))), nil
	case *array.Int16:
		return big.NewInt(int64(c.Value(i))), nil
	case *array.Int32:
		return big.NewInt(int64(c.Value(i))), nil
	case *array.Int64:
		return big.NewInt(c.Value(i)), nil
	case *array.Decimal128:
		return c.Value(i).BigInt(), nil
	}
	return nil, fmt.Errorf("unexpected arrow type %v for FIXED", col.DataType())
}

// scaledText formats an unscaled integer with scale fractional digits.
func scaledText(v *big.Int, scale int) string {
	if scale <= 0 {
		return v.String()
	}
	digits := new(big.Int).Abs(v).String()
	if len(digits) <= scale {
		digits = strings.Repeat("0", scale-len(digits)+1) + digits
	}
	s := digits[:len(digits)-scale] + "." + digits[len(digits)-scale:]
	if v.Sign() < 0 {
		s = "-" + s
	}
	return s
}

// timestampText renders time and timestamp columns as "seconds.fraction".
// Wide values arrive as a struct of epoch seconds and nanoseconds; narrow
// ones as a single integer scaled by the column scale. TIMESTAMP_TZ keeps
// only the instant.
func timestampText(meta query.ExecResponseRowType, col arrow.Array, i int) (string, error) {
	switch c := col.(type) {
	case *array.Struct:
		epoch, ok := c.Field(0).(*array.Int64)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		if c.NumField() < 3 && strings.EqualFold(meta.Type, "TIMESTAMP_TZ") {
			return strconv.FormatInt(epoch.Value(i), 10), nil
		}
		fraction, ok := c.Field(1).(*array.Int32)
		if !ok {
			return "", unexpectedArray(meta, col)
		}
		return epochText(epoch.Value(i), int64(fraction.Value(i))), nil
	case *array.Int64:
		return scaledEpochText(c.Value(i), int(meta.Scale)), nil
	case *array.Int32:
		return scaledEpochText(int64(c.Value(i)), int(meta.Scale)), nil
	}
	return "", unexpectedArray(meta, col)
}

func scaledEpochText(v int64, scale int) string {
	return scaledText(big.NewInt(v), scale)
}

// epochText renders floor seconds plus a non-negative nanosecond fraction in
// signed "seconds.fraction" form, e.g. (-2, 500000000) as "-1.500000000".
func epochText(sec, nsec int64) string {
	total := new(big.Int).Mul(big.NewInt(sec), big.NewInt(1_000_000_000))
	total.Add(total, big.NewInt(nsec))
	return scaledText(total, 9)
}
