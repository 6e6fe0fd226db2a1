// Example: Fetch many rows and allow cancel the query by Ctrl+C.
// The result is large enough to arrive in several chunks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	sf "github.com/snowflakedb/snowflake-connector-go"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	metricsAddr = flag.String("metrics", "", "serve prometheus metrics on this address, e.g. :9090")
	workers     = flag.Int("workers", 0, "concurrent chunk downloads")
)

// run is an actual main
func run(client *sf.SnowflakeClient) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to log in. err: %v", err)
	}
	defer session.Close(context.Background())

	query := `select * from
	  (select 0 a union select 1 union select 2 union select 3 union select 4 union select 5 union select 6 union select 7 union select 8 union select 9) A,
	  (select 0 b union select 1 union select 2 union select 3 union select 4 union select 5 union select 6 union select 7 union select 8 union select 9) B,
	  (select 0 c union select 1 union select 2 union select 3 union select 4 union select 5 union select 6 union select 7 union select 8 union select 9) C,
	  (select 0 d union select 1 union select 2 union select 3 union select 4 union select 5 union select 6 union select 7 union select 8 union select 9) D,
	  (select 0 e union select 1 union select 2 union select 3 union select 4 union select 5 union select 6 union select 7 union select 8 union select 9) E`
	fmt.Printf("Executing a query. It may take long. You may stop by Ctrl+C.\n")
	res, err := session.Execute(ctx, query)
	if err != nil {
		log.Fatalf("failed to run a query. %v, err: %v", query, err)
	}
	fmt.Printf("query %v returned %v rows with columns %v\n", res.QueryID, len(res.Rows), res.Columns)
	for counter, row := range res.Rows {
		if counter%10000 != 0 {
			continue
		}
		vals := make([]int8, 0, row.Len())
		for _, col := range row.ColumnNames() {
			v, err := sf.Get[int8](row, col)
			if err != nil {
				log.Fatalf("failed to get result. err: %v", err)
			}
			vals = append(vals, v)
		}
		fmt.Printf("data: %v\n", vals)
	}
	fmt.Printf("Congrats! You have successfully run %v with Snowflake DB!\n", query)
}

func main() {
	if !flag.Parsed() {
		flag.Parse()
	}

	env := func(k string, failOnMissing bool) string {
		if value := os.Getenv(k); value != "" {
			return value
		}
		if failOnMissing {
			log.Fatalf("%v environment variable is not set.", k)
		}
		return ""
	}
	cfg := sf.ClientConfig{
		Account:              env("SNOWFLAKE_TEST_ACCOUNT", true),
		Host:                 env("SNOWFLAKE_TEST_HOST", false),
		Protocol:             env("SNOWFLAKE_TEST_PROTOCOL", false),
		Warehouse:            env("SNOWFLAKE_TEST_WAREHOUSE", false),
		ChunkDownloadWorkers: *workers,
	}
	client, err := sf.NewClient(
		env("SNOWFLAKE_TEST_USER", true),
		sf.PasswordAuth{Password: env("SNOWFLAKE_TEST_PASSWORD", true)},
		cfg)
	if err != nil {
		log.Fatalf("failed to create client, err: %v", err)
	}

	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
				log.Printf("metrics server stopped: %v", err)
			}
		}()
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		if err = pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	run(client)
}
