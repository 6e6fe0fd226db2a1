// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"fmt"
	"runtime"
	"time"
)

type contextKey string

const clientType = "Go"

// platform consists of compiler, OS and architecture type in string
var platform = fmt.Sprintf("%v-%v-%v", runtime.Compiler, runtime.GOOS, runtime.GOARCH)

// userAgent shows up in User-Agent HTTP header
var userAgent = fmt.Sprintf("%v/%v/%v/%v", clientType, SnowflakeConnectorVersion, runtime.Version(), platform)

// durationOrDefault returns d if it is set, otherwise def.
func durationOrDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

func intOrDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
