// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"os"
	path "path/filepath"
	"testing"
	"time"
)

func writeConnectionsFile(t *testing.T, dir string, content string, perm os.FileMode) {
	t.Helper()
	file := path.Join(dir, connectionsFile)
	assertNilF(t, os.WriteFile(file, []byte(content), perm))
	// WriteFile is subject to umask.
	assertNilF(t, os.Chmod(file, perm))
}

func TestLoadConnectionConfigDefault(t *testing.T) {
	dir := t.TempDir()
	writeConnectionsFile(t, dir, `
[default]
account = "xy12345"
user = "jsmith"
password = "secret"
warehouse = "wh"
database = "db"
schema = "public"
role = "analyst"
port = 8443
protocol = "https"
polling_interval = 250
max_polling_attempts = "30"
login_timeout = 45
request_timeout = "90s"
chunk_download_workers = 8
application = "nightly-report"
unknown_key = "ignored"
`, 0o600)
	t.Setenv(snowflakeHome, dir)
	t.Setenv(snowflakeDefaultConnectionName, "")

	cc, err := LoadConnectionConfig()
	assertNilF(t, err)
	assertEqualE(t, cc.User, "jsmith")
	assertEqualE(t, cc.Auth, AuthMethod(PasswordAuth{Password: "secret"}))
	want := ClientConfig{
		Account:              "xy12345",
		Warehouse:            "wh",
		Database:             "db",
		Schema:               "public",
		Role:                 "analyst",
		Port:                 8443,
		Protocol:             "https",
		PollingInterval:      250 * time.Millisecond,
		MaxPollingAttempts:   30,
		LoginTimeout:         45 * time.Second,
		RequestTimeout:       90 * time.Second,
		ChunkDownloadWorkers: 8,
		Application:          "nightly-report",
	}
	assertDeepEqualE(t, cc.Config, want)

	client, err := cc.NewClient()
	assertNilF(t, err)
	assertEqualE(t, client.cfg.Host, "xy12345.snowflakecomputing.com")
}

func TestLoadConnectionConfigNamedConnection(t *testing.T) {
	dir := t.TempDir()
	writeConnectionsFile(t, dir, `
[default]
account = "a"
user = "u"
password = "p"

[reporting]
account = "b"
user = "reporter"
password = "q"
`, 0o600)
	t.Setenv(snowflakeHome, dir)
	t.Setenv(snowflakeDefaultConnectionName, "reporting")

	cc, err := LoadConnectionConfig()
	assertNilF(t, err)
	assertEqualE(t, cc.User, "reporter")
	assertEqualE(t, cc.Config.Account, "b")
}

func TestLoadConnectionConfigKeyFile(t *testing.T) {
	dir := t.TempDir()
	pemText := encryptedPKCS8PEM(t, getTestPrivateKey(t), "pass")
	assertNilF(t, os.WriteFile(path.Join(dir, "rsa_key.p8"), []byte(pemText), 0o600))
	writeConnectionsFile(t, dir, `
[default]
account = "a"
user = "u"
private_key_file = "rsa_key.p8"
private_key_file_pwd = "pass"
`, 0o600)
	t.Setenv(snowflakeHome, dir)
	t.Setenv(snowflakeDefaultConnectionName, "")

	cc, err := LoadConnectionConfig()
	assertNilF(t, err)
	auth, ok := cc.Auth.(KeyPairAuth)
	assertTrueF(t, ok, "expected key pair auth")
	assertEqualE(t, auth.EncryptedPEM, pemText)
	assertEqualE(t, string(auth.Passphrase), "pass")

	_, err = resolveCredential(cc.Auth, cc.Config.Account, cc.User, time.Now())
	assertNilE(t, err)
}

func TestLoadConnectionConfigFailures(t *testing.T) {
	testcases := []struct {
		name    string
		content string
		conn    string
		want    error
	}{
		{"missing connection", "[default]\naccount = \"a\"\n", "other", &SnowflakeError{Number: ErrCodeFailedToFindConnectionInToml}},
		{"not toml", "[default\naccount", "", &SnowflakeError{Number: ErrCodeTomlFileParsingFailed}},
		{"wrong type", "[default]\naccount = 5\npassword = \"p\"\n", "", &SnowflakeError{Number: ErrCodeTomlFileParsingFailed}},
		{"bad duration", "[default]\naccount = \"a\"\npassword = \"p\"\npolling_interval = \"soon\"\n", "", &SnowflakeError{Number: ErrCodeTomlFileParsingFailed}},
		{"no credential", "[default]\naccount = \"a\"\nuser = \"u\"\n", "", ErrNoAuthMethod},
		{"missing key file", "[default]\naccount = \"a\"\nprivate_key_file = \"nope.p8\"\n", "", &SnowflakeError{Number: ErrCodeFailedToReadPrivateKeyFile}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConnectionsFile(t, dir, tc.content, 0o600)
			t.Setenv(snowflakeHome, dir)
			t.Setenv(snowflakeDefaultConnectionName, tc.conn)

			_, err := LoadConnectionConfig()
			assertErrIsE(t, err, tc.want)
			assertTrueE(t, IsConfigurationError(err))
		})
	}
}

func TestLoadConnectionConfigMissingFile(t *testing.T) {
	t.Setenv(snowflakeHome, t.TempDir())
	_, err := LoadConnectionConfig()
	assertTrueE(t, IsConfigurationError(err))
}

func TestConnectionsFilePermission(t *testing.T) {
	if isWindows {
		t.Skip("file permissions are not checked on Windows")
	}
	dir := t.TempDir()
	writeConnectionsFile(t, dir, "[default]\naccount = \"a\"\npassword = \"p\"\n", 0o644)
	t.Setenv(snowflakeHome, dir)
	t.Setenv(snowflakeDefaultConnectionName, "")

	_, err := LoadConnectionConfig()
	assertErrIsE(t, err, &SnowflakeError{Number: ErrCodeInvalidFilePermission})

	assertNilF(t, os.Chmod(path.Join(dir, connectionsFile), 0o600))
	_, err = LoadConnectionConfig()
	assertNilE(t, err)
}

func TestGetTomlFilePath(t *testing.T) {
	dir, err := getTomlFilePath("")
	assertNilF(t, err)
	homeDir, err := os.UserHomeDir()
	assertNilF(t, err)
	assertEqualE(t, dir, path.Join(homeDir, ".snowflake"))

	dir, err = getTomlFilePath("/etc/snowflake")
	assertNilF(t, err)
	assertEqualE(t, dir, "/etc/snowflake")

	dir, err = getTomlFilePath("relative")
	assertNilF(t, err)
	assertTrueE(t, path.IsAbs(dir))
}

func TestParseDuration(t *testing.T) {
	testcases := []struct {
		value any
		unit  time.Duration
		want  time.Duration
	}{
		{int64(250), time.Millisecond, 250 * time.Millisecond},
		{"250", time.Millisecond, 250 * time.Millisecond},
		{"1m", time.Second, time.Minute},
		{int64(3), time.Second, 3 * time.Second},
	}
	for _, tc := range testcases {
		got, err := parseDuration(tc.value, tc.unit)
		assertNilF(t, err)
		assertEqualE(t, got, tc.want)
	}
	_, err := parseDuration(1.5, time.Second)
	assertNotNilF(t, err)
}
