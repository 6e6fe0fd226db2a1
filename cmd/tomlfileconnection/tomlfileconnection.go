// Example: How to connect to the server with the toml file configuration
// Prerequiste: following the Snowflake doc: https://docs.snowflake.com/en/developer-guide/snowflake-cli-v2/connecting/specify-credentials
//
// SNOWFLAKE_HOME is the directory of connections.toml (default ~/.snowflake) and
// SNOWFLAKE_DEFAULT_CONNECTION_NAME selects the connection (default "default").
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	cc, err := sf.LoadConnectionConfig()
	if err != nil {
		log.Fatalf("failed to load connections.toml, err: %v", err)
	}
	client, err := cc.NewClient()
	if err != nil {
		log.Fatalf("failed to create client for %v, err: %v", cc.Config.String(), err)
	}

	ctx := context.Background()
	session, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to log in. err: %v", err)
	}
	defer session.Close(ctx)

	query := "SELECT 1 AS V"
	res, err := session.Execute(ctx, query)
	if err != nil {
		log.Fatalf("failed to run a query. %v, err: %v", query, err)
	}
	for _, row := range res.Rows {
		v, err := sf.Get[int64](row, "V")
		if err != nil {
			log.Fatalf("failed to get result. err: %v", err)
		}
		if v != 1 {
			log.Fatalf("failed to get 1. got: %v", v)
		}
	}
	fmt.Printf("Congrats! You have successfully run %v (query id %v) with Snowflake DB!\n", query, res.QueryID)
}
