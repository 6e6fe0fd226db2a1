// Example: Fetch one row with key pair authentication.
//
// Generate a private key and add its public key to your Snowflake user first:
// https://docs.snowflake.com/en/user-guide/key-pair-auth.html#configuring-key-pair-authentication
// The key may be encrypted; set SNOWFLAKE_TEST_PRIVATE_KEY_PASSPHRASE in that case.
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

	env := func(k string, failOnMissing bool) string {
		if value := os.Getenv(k); value != "" {
			return value
		}
		if failOnMissing {
			log.Fatalf("%v environment variable is not set.", k)
		}
		return ""
	}

	account := env("SNOWFLAKE_TEST_ACCOUNT", true) // e.g. "xy12345.eu-central-1", without the .snowflakecomputing.com suffix
	user := env("SNOWFLAKE_TEST_USER", true)
	privKeyPath := env("SNOWFLAKE_TEST_PRIVATE_KEY_PATH", true) // /path/to/your/rsa_key.p8
	passphrase := env("SNOWFLAKE_TEST_PRIVATE_KEY_PASSPHRASE", false)

	data, err := os.ReadFile(privKeyPath)
	if err != nil {
		log.Fatalf("failed to read %v. err: %v", privKeyPath, err)
	}
	auth := sf.KeyPairAuth{EncryptedPEM: string(data), Passphrase: []byte(passphrase)}

	client, err := sf.NewClient(user, auth, sf.ClientConfig{Account: account})
	if err != nil {
		log.Fatalf("failed to create client. err: %v", err)
	}
	ctx := context.Background()
	session, err := client.CreateSession(ctx)
	if err != nil {
		log.Fatalf("failed to log in. err: %v", err)
	}
	defer session.Close(ctx)

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
	fmt.Printf("Congrats! You have successfully run %v with Snowflake DB, using keypair authentication!\n", query)
}
