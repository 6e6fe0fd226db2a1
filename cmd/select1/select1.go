// Example: Fetch one row with password authentication.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// get environment variables
	env := func(k string) string {
		if value := os.Getenv(k); value != "" {
			return value
		}
		log.Fatalf("%v environment variable is not set.", k)
		return ""
	}

	account := env("SNOWFLAKE_TEST_ACCOUNT")
	user := env("SNOWFLAKE_TEST_USER")
	password := env("SNOWFLAKE_TEST_PASSWORD")

	client, err := sf.NewClient(user, sf.PasswordAuth{Password: password}, sf.ClientConfig{
		Account:   account,
		Warehouse: os.Getenv("SNOWFLAKE_TEST_WAREHOUSE"),
	})
	if err != nil {
		log.Fatalf("failed to create client. err: %v", err)
	}
	session, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to log in. err: %v", err)
	}
	defer session.Close(context.Background())

	query := "SELECT 1 AS V"
	rows, err := session.Query(ctx, query)
	if err != nil {
		log.Fatalf("failed to run a query. %v, err: %v", query, err)
	}
	for _, row := range rows {
		v, err := sf.Get[int64](row, "V")
		if err != nil {
			log.Fatalf("failed to get result. err: %v", err)
		}
		if v != 1 {
			log.Fatalf("failed to get 1. got: %v", v)
		}
	}
	fmt.Printf("Congrats! You have successfully run %v with Snowflake DB!\n", query)
}
