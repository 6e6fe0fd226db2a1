// Example: Decode semi-structured and temporal columns into typed values.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cloud.google.com/go/civil"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

type order struct {
	ID    int      `json:"id"`
	Items []string `json:"items"`
}

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

	query := `SELECT PARSE_JSON('{"id": 7, "items": ["a", "b"]}') AS DOC,
		'2024-02-29'::DATE AS D,
		'2024-02-29 10:11:12.5'::TIMESTAMP_NTZ AS TS,
		NULL::NUMBER AS MISSING`
	rows, err := session.Query(ctx, query)
	if err != nil {
		log.Fatalf("failed to run a query. %v, err: %v", query, err)
	}
	for _, row := range rows {
		doc, err := sf.Get[sf.Variant](row, "DOC")
		if err != nil {
			log.Fatalf("failed to get DOC. err: %v", err)
		}
		var o order
		if err = doc.Unmarshal(&o); err != nil {
			log.Fatalf("failed to unmarshal %v. err: %v", doc, err)
		}
		d, err := sf.Get[civil.Date](row, "D")
		if err != nil {
			log.Fatalf("failed to get D. err: %v", err)
		}
		ts, err := sf.Get[time.Time](row, "TS")
		if err != nil {
			log.Fatalf("failed to get TS. err: %v", err)
		}
		missing, err := sf.GetOptional[int64](row, "MISSING")
		if err != nil {
			log.Fatalf("failed to get MISSING. err: %v", err)
		}
		fmt.Printf("order: %+v, date: %v, timestamp: %v, missing is valid: %v\n", o, d, ts, missing.Valid)
	}
}
