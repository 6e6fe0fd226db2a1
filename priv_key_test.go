// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package snowflake

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"
)

var (
	testKeyOnce sync.Once
	testPrivKey *rsa.PrivateKey
)

// getTestPrivateKey returns one RSA key shared by the tests of the package.
func getTestPrivateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	testKeyOnce.Do(func() {
		var err error
		testPrivKey, err = rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatalf("failed to generate key: %v", err)
		}
	})
	return testPrivKey
}

func pkcs8PEM(t *testing.T, key any) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	assertNilF(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func pkcs1PEM(key *rsa.PrivateKey) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))
}

func encryptedPKCS8PEM(t *testing.T, key *rsa.PrivateKey, passphrase string) string {
	t.Helper()
	der, err := pkcs8.MarshalPrivateKey(key, []byte(passphrase), nil)
	assertNilF(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: pemTypeEncryptedPKCS8, Bytes: der}))
}

func legacyEncryptedPEM(t *testing.T, key *rsa.PrivateKey, passphrase string) string {
	t.Helper()
	//nolint:staticcheck // legacy encrypted PEM keys are still in use
	block, err := x509.EncryptPEMBlock(rand.Reader, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key), []byte(passphrase), x509.PEMCipherAES256)
	assertNilF(t, err)
	return string(pem.EncodeToMemory(block))
}

func TestParsePrivateKey(t *testing.T) {
	key := getTestPrivateKey(t)
	testcases := []struct {
		name       string
		pem        string
		passphrase string
	}{
		{"unencrypted PKCS8", pkcs8PEM(t, key), ""},
		{"unencrypted PKCS8 ignores passphrase", pkcs8PEM(t, key), "unused"},
		{"unencrypted PKCS1", pkcs1PEM(key), ""},
		{"encrypted PKCS8", encryptedPKCS8PEM(t, key, "s3cret"), "s3cret"},
		{"legacy encrypted PEM", legacyEncryptedPEM(t, key, "s3cret"), "s3cret"},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := parsePrivateKey([]byte(tc.pem), []byte(tc.passphrase))
			assertNilF(t, err)
			assertTrueE(t, parsed.Equal(key), "parsed key differs from the original")
		})
	}
}

func TestParsePrivateKeyFailures(t *testing.T) {
	key := getTestPrivateKey(t)
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assertNilF(t, err)

	testcases := []struct {
		name       string
		pem        string
		passphrase string
		code       int
	}{
		{"not PEM", "hello", "", ErrCodePrivateKeyParseError},
		{"garbage in PEM", string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("junk")})), "", ErrCodePrivateKeyParseError},
		{"encrypted PKCS8 wrong passphrase", encryptedPKCS8PEM(t, key, "s3cret"), "wrong", ErrCodePrivateKeyParseError},
		{"encrypted PKCS8 no passphrase", encryptedPKCS8PEM(t, key, "s3cret"), "", ErrCodePrivateKeyParseError},
		{"legacy encrypted no passphrase", legacyEncryptedPEM(t, key, "s3cret"), "", ErrCodePrivateKeyParseError},
		{"EC key", pkcs8PEM(t, ecKey), "", ErrCodeUnsupportedPrivateKey},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePrivateKey([]byte(tc.pem), []byte(tc.passphrase))
			assertNotNilF(t, err)
			se, ok := err.(*SnowflakeError)
			assertTrueF(t, ok, "expected a SnowflakeError")
			assertEqualE(t, se.Number, tc.code)
			assertTrueE(t, IsConfigurationError(err))
		})
	}
}

func TestPrepareJWTToken(t *testing.T) {
	key := getTestPrivateKey(t)
	now := time.Now()
	token, expiresAt, err := prepareJWTToken("xy12345.eu-central-1", "jsmith", key, now)
	assertNilF(t, err)
	assertEqualE(t, expiresAt, now.Add(jwtExpireTimeout))

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	assertNilF(t, err)
	assertTrueF(t, parsed.Valid)

	fingerprint, err := publicKeyFingerprint(key)
	assertNilF(t, err)
	assertHasPrefixE(t, fingerprint, "SHA256:")
	assertEqualE(t, claims.Subject, "XY12345.JSMITH")
	assertEqualE(t, claims.Issuer, "XY12345.JSMITH."+fingerprint)
	assertEqualE(t, claims.IssuedAt.Unix(), now.Unix())
	assertEqualE(t, claims.ExpiresAt.Unix(), now.Add(5*time.Minute).Unix())
}

func TestJWTAccountName(t *testing.T) {
	assertEqualE(t, jwtAccountName("xy12345"), "XY12345")
	assertEqualE(t, jwtAccountName("xy12345.eu-central-1.aws"), "XY12345")
	assertEqualE(t, jwtAccountName("My_Org-acct"), "MY_ORG-ACCT")
}

func TestPublicKeyFingerprintIsStable(t *testing.T) {
	key := getTestPrivateKey(t)
	fp1, err := publicKeyFingerprint(key)
	assertNilF(t, err)
	fp2, err := publicKeyFingerprint(key)
	assertNilF(t, err)
	assertEqualE(t, fp1, fp2)
	assertTrueE(t, !strings.ContainsAny(strings.TrimPrefix(fp1, "SHA256:"), "-_"), "standard base64 alphabet")
}
