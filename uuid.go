// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import "github.com/google/uuid"

// newRequestID returns a random RFC 4122 version 4 UUID identifying one request.
func newRequestID() string {
	return uuid.NewString()
}
