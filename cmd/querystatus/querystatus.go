// Example: Run a query and look up its status by query id afterwards.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	env := func(k string) string {
		if value := os.Getenv(k); value != "" {
			return value
		}
		log.Fatalf("%v environment variable is not set.", k)
		return ""
	}
	client, err := sf.NewClient(env("SNOWFLAKE_TEST_USER"),
		sf.PasswordAuth{Password: env("SNOWFLAKE_TEST_PASSWORD")},
		sf.ClientConfig{Account: env("SNOWFLAKE_TEST_ACCOUNT")})
	if err != nil {
		log.Fatalf("failed to create client, err: %v", err)
	}

	ctx := context.Background()
	session, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to log in. err: %v", err)
	}
	defer session.Close(ctx)

	res, err := session.Execute(ctx, "SELECT 1")
	if err != nil {
		log.Fatalf("failed to run a query. err: %v", err)
	}
	status, err := session.QueryStatus(ctx, res.QueryID)
	if err != nil {
		log.Fatalf("failed to get the status of %v. err: %v", res.QueryID, err)
	}
	fmt.Printf("query %v: %v (running: %v, error: %v)\n", status.QueryID, status.Status, status.IsStillRunning(), status.IsError())
}
