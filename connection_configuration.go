// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"errors"
	"fmt"
	"os"
	path "path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	toml "github.com/BurntSushi/toml"
)

const (
	snowflakeHome                  = "SNOWFLAKE_HOME"
	snowflakeDefaultConnectionName = "SNOWFLAKE_DEFAULT_CONNECTION_NAME"
	connectionsFile                = "connections.toml"
	defaultConnectionName          = "default"
)

var isWindows = runtime.GOOS == "windows"

// ConnectionConfig is one connection read from connections.toml.
type ConnectionConfig struct {
	User   string
	Auth   AuthMethod
	Config ClientConfig
}

// NewClient returns a client for the connection.
func (cc *ConnectionConfig) NewClient() (*SnowflakeClient, error) {
	return NewClient(cc.User, cc.Auth, cc.Config)
}

// LoadConnectionConfig returns the connection config loaded from the toml file.
// By default, SNOWFLAKE_HOME (the toml file directory) is ~/.snowflake
// and SNOWFLAKE_DEFAULT_CONNECTION_NAME is 'default'.
func LoadConnectionConfig() (*ConnectionConfig, error) {
	connectionName := getConnectionName(os.Getenv(snowflakeDefaultConnectionName))
	snowflakeConfigDir, err := getTomlFilePath(os.Getenv(snowflakeHome))
	if err != nil {
		return nil, err
	}
	tomlFilePath := path.Join(snowflakeConfigDir, connectionsFile)
	if err = validateFilePermission(tomlFilePath); err != nil {
		return nil, err
	}
	tomlInfo := make(map[string]interface{})
	if _, err = toml.DecodeFile(tomlFilePath, &tomlInfo); err != nil {
		return nil, newConfigurationError(ErrCodeTomlFileParsingFailed, errMsgTomlParsing, tomlFilePath).withCause(err)
	}
	connection, ok := tomlInfo[connectionName].(map[string]interface{})
	if !ok {
		return nil, newConfigurationError(ErrCodeFailedToFindConnectionInToml, errMsgConnectionNotInToml, connectionName)
	}
	logger.Debugf("loading connection %v from %v", connectionName, tomlFilePath)
	return parseToml(connection, snowflakeConfigDir)
}

func parseToml(connection map[string]interface{}, baseDir string) (*ConnectionConfig, error) {
	cc := &ConnectionConfig{}
	cfg := &cc.Config
	var password, keyFile, keyPassphrase string
	for key, value := range connection {
		var err error
		switch strings.ToLower(key) {
		case "user", "username":
			cc.User, err = parseString(value)
		case "password":
			password, err = parseString(value)
		case "private_key_file":
			keyFile, err = parseString(value)
		case "private_key_file_pwd":
			keyPassphrase, err = parseString(value)
		case "account":
			cfg.Account, err = parseString(value)
		case "warehouse":
			cfg.Warehouse, err = parseString(value)
		case "database":
			cfg.Database, err = parseString(value)
		case "schema":
			cfg.Schema, err = parseString(value)
		case "role":
			cfg.Role, err = parseString(value)
		case "host":
			cfg.Host, err = parseString(value)
		case "port":
			cfg.Port, err = parseInt(value)
		case "protocol":
			cfg.Protocol, err = parseString(value)
		case "polling_interval":
			cfg.PollingInterval, err = parseDuration(value, time.Millisecond)
		case "max_polling_attempts":
			cfg.MaxPollingAttempts, err = parseInt(value)
		case "login_timeout":
			cfg.LoginTimeout, err = parseDuration(value, time.Second)
		case "request_timeout":
			cfg.RequestTimeout, err = parseDuration(value, time.Second)
		case "chunk_download_workers":
			cfg.ChunkDownloadWorkers, err = parseInt(value)
		case "application":
			cfg.Application, err = parseString(value)
		default:
			logger.Debugf("ignoring connections.toml key %v", key)
		}
		if err != nil {
			return nil, newConfigurationError(ErrCodeTomlFileParsingFailed, errMsgTomlValue, key, err)
		}
	}

	switch {
	case keyFile != "":
		if !path.IsAbs(keyFile) {
			keyFile = path.Join(baseDir, keyFile)
		}
		pemData, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, newConfigurationError(ErrCodeFailedToReadPrivateKeyFile, errMsgReadPrivateKeyFile, keyFile).withCause(err)
		}
		auth := KeyPairAuth{EncryptedPEM: string(pemData)}
		if keyPassphrase != "" {
			auth.Passphrase = []byte(keyPassphrase)
		}
		cc.Auth = auth
	case password != "":
		cc.Auth = PasswordAuth{Password: password}
	default:
		return nil, ErrNoAuthMethod
	}
	return cc, nil
}

func parseString(i interface{}) (string, error) {
	v, ok := i.(string)
	if !ok {
		return "", errors.New("failed to convert the value to string")
	}
	return v, nil
}

// parseInt accepts toml integers, which decode as int64, and numeric strings.
func parseInt(i interface{}) (int, error) {
	switch v := i.(type) {
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		return strconv.Atoi(v)
	}
	return 0, errors.New("failed to parse the value to integer")
}

// parseDuration accepts a Go duration string such as "250ms" or a plain
// number counted in unit.
func parseDuration(i interface{}, unit time.Duration) (time.Duration, error) {
	if s, ok := i.(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
	}
	num, err := parseInt(i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse the value to duration: %w", err)
	}
	return time.Duration(num) * unit, nil
}

func getTomlFilePath(filePath string) (string, error) {
	if len(filePath) != 0 {
		if path.IsAbs(filePath) {
			return filePath, nil
		}
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		filePath = path.Join(homeDir, ".snowflake")
	}
	return path.Abs(filePath)
}

func getConnectionName(name string) string {
	if len(name) != 0 {
		return name
	}
	return defaultConnectionName
}

// validateFilePermission rejects a file readable or writable by group or others.
func validateFilePermission(filePath string) error {
	if isWindows {
		return nil
	}
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return newConfigurationError(ErrCodeTomlFileParsingFailed, errMsgTomlParsing, filePath).withCause(err)
	}
	if permission := fileInfo.Mode().Perm(); permission&0o077 != 0 {
		return newConfigurationError(ErrCodeInvalidFilePermission, errMsgInvalidFilePermission, filePath, permission)
	}
	return nil
}
