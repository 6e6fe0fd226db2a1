// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"
	"golang.org/x/crypto/ssh"
)

// jwtExpireTimeout is the lifetime of a login assertion. It is used by a
// single login request.
const jwtExpireTimeout = 5 * time.Minute

const pemTypeEncryptedPKCS8 = "ENCRYPTED PRIVATE KEY"

// parsePrivateKey decodes a PEM private key. Encrypted PKCS#8, legacy
// encrypted PEM, unencrypted PKCS#1/PKCS#8 and OpenSSH keys are accepted.
// The key must be RSA.
func parsePrivateKey(pemData, passphrase []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, ErrPrivateKeyParse.withCause(nil, "no PEM block found")
	}

	var (
		key interface{}
		err error
	)
	var missing *ssh.PassphraseMissingError
	if block.Type == pemTypeEncryptedPKCS8 {
		if len(passphrase) == 0 {
			return nil, ErrPrivateKeyParse.withCause(nil, "the key is encrypted but no passphrase was given")
		}
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, passphrase)
	} else {
		key, err = ssh.ParseRawPrivateKey(pemData)
		if errors.As(err, &missing) && len(passphrase) > 0 {
			key, err = ssh.ParseRawPrivateKeyWithPassphrase(pemData, passphrase)
		}
	}
	if err != nil {
		if errors.As(err, &missing) {
			return nil, ErrPrivateKeyParse.withCause(err, "the key is encrypted but no passphrase was given")
		}
		return nil, ErrPrivateKeyParse.withCause(err, "bad passphrase or malformed key")
	}

	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, newConfigurationError(ErrCodeUnsupportedPrivateKey, errMsgUnsupportedPrivateKey, key)
	}
	return rsaKey, nil
}

// publicKeyFingerprint returns the "SHA256:" tagged base64 digest of the DER
// encoded public key, the form Snowflake stores as RSA_PUBLIC_KEY_FP.
func publicKeyFingerprint(key *rsa.PrivateKey) (string, error) {
	pubBytes, err := x509.MarshalPKIXPublicKey(key.Public())
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(pubBytes)
	return "SHA256:" + base64.StdEncoding.EncodeToString(hash[:]), nil
}

// jwtAccountName upper cases the account and drops any region suffix.
func jwtAccountName(account string) string {
	if i := strings.Index(account, "."); i >= 0 {
		account = account[:i]
	}
	return strings.ToUpper(account)
}

// prepareJWTToken signs the key pair login assertion for account and user.
func prepareJWTToken(account, user string, key *rsa.PrivateKey, now time.Time) (string, time.Time, error) {
	fingerprint, err := publicKeyFingerprint(key)
	if err != nil {
		return "", time.Time{}, newConfigurationError(ErrCodeFailedToSignAssertion, errMsgFailedToSign).withCause(err)
	}
	subject := fmt.Sprintf("%s.%s", jwtAccountName(account), strings.ToUpper(user))
	expiresAt := now.Add(jwtExpireTimeout)
	claims := jwt.RegisteredClaims{
		Issuer:    fmt.Sprintf("%s.%s", subject, fingerprint),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", time.Time{}, newConfigurationError(ErrCodeFailedToSignAssertion, errMsgFailedToSign).withCause(err)
	}
	return signed, expiresAt, nil
}
