// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

// SnowflakeConnectorVersion is the version of the connector reported at login.
const SnowflakeConnectorVersion = "0.4.0"
