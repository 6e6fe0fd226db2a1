// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

/*
Package snowflake is a client for the Snowflake HTTP query service.

A SnowflakeClient holds the account configuration and a pooled HTTP client.
CreateSession logs in with a password or an RSA key pair and returns a
SnowflakeSession, whose Query and Execute submit SQL text, poll until the
query finishes and return the complete, ordered result:

	client, err := snowflake.NewClient("jsmith", snowflake.PasswordAuth{Password: "..."},
		snowflake.ClientConfig{Account: "xy12345.eu-central-1"})
	if err != nil {
		return err
	}
	session, err := client.CreateSession(ctx)
	if err != nil {
		return err
	}
	defer session.Close(ctx)

	rows, err := session.Query(ctx, "SELECT ID, NAME FROM CUSTOMERS")
	for _, row := range rows {
		id, err := snowflake.Get[int64](row, "ID")
		name, err := snowflake.GetOptional[string](row, "NAME")
		...
	}

# Key Pair Authentication

KeyPairAuth takes the PEM text of an RSA private key, optionally encrypted
(PKCS#8 "ENCRYPTED PRIVATE KEY" or legacy encrypted PEM) with Passphrase.
Each login signs a new JWT valid for five minutes.

# Results

Large results arrive in chunks that are downloaded concurrently, up to
ClientConfig.ChunkDownloadWorkers at a time, and concatenated in result
order. Cells are decoded on demand with Get and GetOptional into the types
of Decodable. Column names are matched case-insensitively.

# Polling

A query that is still running after submission is polled every
ClientConfig.PollingInterval. After ClientConfig.MaxPollingAttempts status
checks the query fails with ErrQueryTimedOut; the query keeps running on
the server. Cancelling the context stops polling and returns the context
error.

# Errors

All errors are *SnowflakeError values, except context errors which are
returned as is. IsConfigurationError, IsAuthenticationError,
IsExecutionError, IsTimeoutError, IsTransportError and IsDecodeError
classify them.

# connections.toml

LoadConnectionConfig reads a connection from $SNOWFLAKE_HOME/connections.toml
(default ~/.snowflake), named by SNOWFLAKE_DEFAULT_CONNECTION_NAME (default
"default").

# Logging and Metrics

The connector logs through SFLogger, by default a logrus logger at level
error that masks session tokens, passwords and keys. Use SetLogger and
GetLogger().SetLogLevel to change it. Prometheus collectors named
snowflake_connector_* are registered with the default registry.
*/
package snowflake
