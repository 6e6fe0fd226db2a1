// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/goccy/go-json"
)

const timestampLayout = "2006-01-02 15:04:05"

var epochDate = civil.Date{Year: 1970, Month: time.January, Day: 1}

// Decodable is the closed set of types a cell can be decoded into.
type Decodable interface {
	int8 | int16 | int32 | int64 | uint64 | float32 | float64 | string | bool |
		time.Time | civil.DateTime | civil.Date | Variant
}

// Variant is a parsed semi-structured value (VARIANT, OBJECT or ARRAY).
// Value holds map[string]interface{}, []interface{}, string, float64, bool
// or nil.
type Variant struct {
	Value interface{}
	raw   string
}

// String returns the JSON text the value was parsed from.
func (v Variant) String() string {
	return v.raw
}

// Unmarshal decodes the JSON text of the value into dst.
func (v Variant) Unmarshal(dst interface{}) error {
	return json.Unmarshal([]byte(v.raw), dst)
}

// Get decodes the named column of row into T. A NULL cell is an error; use
// GetOptional for nullable columns.
func Get[T Decodable](row *SnowflakeRow, column string) (T, error) {
	var out T
	cell, err := row.cell(column)
	if err != nil {
		return out, err
	}
	if cell == nil {
		return out, ErrNullValue.withCause(nil, column)
	}
	err = decodeCell(*cell, column, &out)
	return out, err
}

// GetOptional decodes the named column of row into T. A NULL cell yields an
// invalid sql.Null and no error.
func GetOptional[T Decodable](row *SnowflakeRow, column string) (sql.Null[T], error) {
	cell, err := row.cell(column)
	if err != nil {
		return sql.Null[T]{}, err
	}
	if cell == nil {
		return sql.Null[T]{}, nil
	}
	var out T
	if err = decodeCell(*cell, column, &out); err != nil {
		return sql.Null[T]{}, err
	}
	return sql.Null[T]{V: out, Valid: true}, nil
}

func decodeCell[T Decodable](text, column string, out *T) error {
	var err error
	switch p := any(out).(type) {
	case *int8:
		var v int64
		v, err = strconv.ParseInt(text, 10, 8)
		*p = int8(v)
	case *int16:
		var v int64
		v, err = strconv.ParseInt(text, 10, 16)
		*p = int16(v)
	case *int32:
		var v int64
		v, err = strconv.ParseInt(text, 10, 32)
		*p = int32(v)
	case *int64:
		*p, err = strconv.ParseInt(text, 10, 64)
	case *uint64:
		*p, err = strconv.ParseUint(text, 10, 64)
	case *float32:
		var v float64
		v, err = strconv.ParseFloat(text, 32)
		*p = float32(v)
	case *float64:
		*p, err = strconv.ParseFloat(text, 64)
	case *string:
		*p = text
	case *bool:
		*p, err = parseBool(text)
	case *time.Time:
		*p, err = parseTimestamp(text)
	case *civil.DateTime:
		var t time.Time
		t, err = parseTimestamp(text)
		*p = civil.DateTimeOf(t)
	case *civil.Date:
		*p, err = parseDate(text)
	case *Variant:
		*p, err = parseVariant(text)
	}
	if err != nil {
		var zero T
		*out = zero
		return ErrInvalidValue.withCause(err, text, column, fmt.Sprintf("%T", zero))
	}
	return nil
}

// parseBool accepts the integer form BOOLEAN columns are sent in and the
// lowercase literals true and false.
func parseBool(text string) (bool, error) {
	switch text {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, errors.New("not a boolean")
}

// parseDate reads a non-negative count of days since 1970-01-01.
func parseDate(text string) (civil.Date, error) {
	days, err := strconv.ParseUint(text, 10, 31)
	if err != nil {
		return civil.Date{}, err
	}
	return epochDate.AddDays(int(days)), nil
}

// parseTimestamp reads "seconds[.fraction]" since the epoch, or the
// "2006-01-02 15:04:05" layout. TIMESTAMP_TZ text carries one trailing
// numeric offset field, which is dropped. The result is in UTC.
func parseTimestamp(text string) (time.Time, error) {
	instant, offset, hasOffset := strings.Cut(text, " ")
	if !hasOffset || isDigits(offset) {
		if sec, nsec, err := extractTimestamp(instant); err == nil {
			return time.Unix(sec, nsec).UTC(), nil
		}
	}
	return time.ParseInLocation(timestampLayout, text, time.UTC)
}

// extractTimestamp splits "seconds[.fraction]" without float arithmetic. The
// fraction is right padded to nanoseconds; a leading minus applies to both
// parts.
func extractTimestamp(text string) (sec int64, nsec int64, err error) {
	neg := strings.HasPrefix(text, "-")
	text = strings.TrimPrefix(text, "-")
	whole, fraction, hasFraction := strings.Cut(text, ".")
	if !isDigits(whole) || (hasFraction && !isDigits(fraction)) {
		return 0, 0, fmt.Errorf("%q is not an epoch timestamp", text)
	}
	if sec, err = strconv.ParseInt(whole, 10, 64); err != nil {
		return 0, 0, err
	}
	if hasFraction {
		if len(fraction) > 9 {
			fraction = fraction[:9]
		}
		if nsec, err = strconv.ParseInt(fraction+strings.Repeat("0", 9-len(fraction)), 10, 64); err != nil {
			return 0, 0, err
		}
	}
	if neg {
		sec, nsec = -sec, -nsec
	}
	return sec, nsec, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func parseVariant(text string) (Variant, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Variant{}, err
	}
	return Variant{Value: v, raw: text}, nil
}
