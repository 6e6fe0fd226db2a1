// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"context"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	internalos "github.com/snowflakedb/snowflake-connector-go/internal/os"
)

const authenticatorJWT = "SNOWFLAKE_JWT"

// AuthMethod is how a user proves its identity at login. It is implemented
// by PasswordAuth and KeyPairAuth only.
type AuthMethod interface {
	isAuthMethod()
}

// PasswordAuth logs in with a plaintext password.
type PasswordAuth struct {
	Password string
}

// KeyPairAuth logs in with a JWT signed by an RSA private key. EncryptedPEM
// is the PEM text of the key; Passphrase decrypts it and may be empty for an
// unencrypted key.
type KeyPairAuth struct {
	EncryptedPEM string
	Passphrase   []byte
}

func (PasswordAuth) isAuthMethod() {}
func (KeyPairAuth) isAuthMethod()  {}

// credential is the proof sent in one login request.
type credential interface {
	isCredential()
}

type plaintextCredential struct {
	secret string
}

// signedAssertion is a short lived JWT. It is used for a single login.
type signedAssertion struct {
	token     string
	expiresAt time.Time
}

func (plaintextCredential) isCredential() {}
func (signedAssertion) isCredential()     {}

// resolveCredential turns an auth method into the credential for a login at
// now. Key material is decoded here and never reaches the network.
func resolveCredential(auth AuthMethod, account, user string, now time.Time) (credential, error) {
	switch a := auth.(type) {
	case PasswordAuth:
		return plaintextCredential{secret: a.Password}, nil
	case *PasswordAuth:
		if a == nil {
			return nil, ErrNoAuthMethod
		}
		return plaintextCredential{secret: a.Password}, nil
	case KeyPairAuth:
		return resolveKeyPair(a, account, user, now)
	case *KeyPairAuth:
		if a == nil {
			return nil, ErrNoAuthMethod
		}
		return resolveKeyPair(*a, account, user, now)
	}
	return nil, ErrNoAuthMethod
}

func resolveKeyPair(auth KeyPairAuth, account, user string, now time.Time) (credential, error) {
	key, err := parsePrivateKey([]byte(auth.EncryptedPEM), auth.Passphrase)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := prepareJWTToken(account, user, key, now)
	if err != nil {
		return nil, err
	}
	return signedAssertion{token: token, expiresAt: expiresAt}, nil
}

// validateAuthMethod reports configuration problems before any request is sent.
func validateAuthMethod(auth AuthMethod) error {
	switch a := auth.(type) {
	case PasswordAuth:
		if a.Password == "" {
			return ErrEmptyPassword
		}
	case *PasswordAuth:
		if a == nil {
			return ErrNoAuthMethod
		}
		return validateAuthMethod(*a)
	case KeyPairAuth:
		if strings.TrimSpace(a.EncryptedPEM) == "" {
			return ErrPrivateKeyParse.withCause(nil, "the key is empty")
		}
	case *KeyPairAuth:
		if a == nil {
			return ErrNoAuthMethod
		}
		return validateAuthMethod(*a)
	default:
		return ErrNoAuthMethod
	}
	return nil
}

type authRequestClientEnvironment struct {
	Application string `json:"APPLICATION"`
	Os          string `json:"OS"`
	OsVersion   string `json:"OS_VERSION"`
}

type authRequestData struct {
	ClientAppID       string                       `json:"CLIENT_APP_ID"`
	ClientAppVersion  string                       `json:"CLIENT_APP_VERSION"`
	AccountName       string                       `json:"ACCOUNT_NAME"`
	LoginName         string                       `json:"LOGIN_NAME,omitempty"`
	Password          string                       `json:"PASSWORD,omitempty"`
	Authenticator     string                       `json:"AUTHENTICATOR,omitempty"`
	SessionParameters map[string]string            `json:"SESSION_PARAMETERS,omitempty"`
	ClientEnvironment authRequestClientEnvironment `json:"CLIENT_ENVIRONMENT"`
	Token             string                       `json:"TOKEN,omitempty"`
}

type authRequest struct {
	Data authRequestData `json:"data"`
}

type authResponseSessionInfo struct {
	DatabaseName  string `json:"databaseName"`
	SchemaName    string `json:"schemaName"`
	WarehouseName string `json:"warehouseName"`
	RoleName      string `json:"roleName"`
}

type authResponseMain struct {
	Token                   string                  `json:"token,omitempty"`
	ValidityInSeconds       int64                   `json:"validityInSeconds,omitempty"`
	MasterToken             string                  `json:"masterToken,omitempty"`
	MasterValidityInSeconds int64                   `json:"masterValidityInSeconds"`
	DisplayUserName         string                  `json:"displayUserName"`
	ServerVersion           string                  `json:"serverVersion"`
	SessionID               int64                   `json:"sessionId"`
	SessionInfo             authResponseSessionInfo `json:"sessionInfo"`
}

type authResponse struct {
	Data    authResponseMain `json:"data"`
	Message string           `json:"message"`
	Code    string           `json:"code"`
	Success bool             `json:"success"`
}

func newAuthRequestData(cfg *ClientConfig, user string, cred credential) authRequestData {
	var sessionParameters map[string]string
	if len(cfg.SessionParameters) > 0 {
		sessionParameters = make(map[string]string, len(cfg.SessionParameters))
		for k, v := range cfg.SessionParameters {
			sessionParameters[strings.ToUpper(k)] = v
		}
	}
	data := authRequestData{
		ClientAppID:       clientType,
		ClientAppVersion:  SnowflakeConnectorVersion,
		AccountName:       cfg.accountName(),
		LoginName:         user,
		SessionParameters: sessionParameters,
		ClientEnvironment: authRequestClientEnvironment{
			Application: cfg.Application,
			Os:          runtime.GOOS,
			OsVersion:   internalos.Release(),
		},
	}
	switch c := cred.(type) {
	case plaintextCredential:
		data.Password = c.secret
	case signedAssertion:
		data.Authenticator = authenticatorJWT
		data.Token = c.token
	}
	return data
}

// authenticate exchanges a credential for a session token.
func authenticate(ctx context.Context, sr *snowflakeRestful, cfg *ClientConfig, user string, cred credential) (*authResponseMain, error) {
	if a, ok := cred.(signedAssertion); ok && !time.Now().Before(a.expiresAt) {
		return nil, ErrAssertionExpired
	}
	body, err := json.Marshal(authRequest{Data: newAuthRequestData(cfg, user, cred)})
	if err != nil {
		return nil, err
	}

	params := &url.Values{}
	if cfg.Database != "" {
		params.Add("databaseName", cfg.Database)
	}
	if cfg.Schema != "" {
		params.Add("schemaName", cfg.Schema)
	}
	if cfg.Warehouse != "" {
		params.Add("warehouse", cfg.Warehouse)
	}
	if cfg.Role != "" {
		params.Add("roleName", cfg.Role)
	}
	fullURL := sr.getFullURL(loginRequestPath, params)
	logger.WithContext(ctx).Infof("logging in, account: %v, user: %v", cfg.Account, user)

	respd, err := restCall[authResponse](ctx, sr, http.MethodPost, fullURL, getHeaders(), body, sr.LoginTimeout)
	if err != nil {
		return nil, err
	}
	if !respd.Success {
		logger.WithContext(ctx).Errorf("failed to log in. code: %v, message: %v", respd.Code, respd.Message)
		return nil, newLoginError(respd.Code, respd.Message)
	}
	if respd.Data.Token == "" {
		return nil, &SnowflakeError{
			Number:   ErrCodeMissingSessionToken,
			SQLState: SQLStateConnectionRejected,
			Message:  errMsgMissingSessionToken,
			kind:     kindTransport,
		}
	}
	logger.WithContext(ctx).Infof("logged in, session: %v", respd.Data.SessionID)
	return &respd.Data, nil
}

// newLoginError converts a rejected login envelope. The service code is kept
// when it is numeric.
func newLoginError(code, message string) *SnowflakeError {
	number, err := strconv.Atoi(code)
	if err != nil {
		number = ErrCodeFailedToAuth
	}
	return &SnowflakeError{
		Number:   number,
		SQLState: SQLStateConnectionRejected,
		Message:  message,
		kind:     kindAuthentication,
	}
}
