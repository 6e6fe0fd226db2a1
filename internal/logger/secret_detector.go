package logger

import (
	"regexp"
)

const (
	connectionTokenPattern = `(?i)(token|assertion content)([\'\"\s:=]+)([a-z0-9=/_\-\+\.]{8,})`
	passwordPattern        = `(?i)(password|pwd)([\'\"\s:=]+)([a-z0-9!\"#\$%&\\\'\(\)\*\+\,-\./:;<=>\?\@\[\]\^_\{\|\}~]{8,})`
	passphrasePattern      = `(?i)(passphrase|private_key_file_pwd)([\'\"\s:=]+)([^\s\'\"]+)`
	privateKeyPattern      = `(?s)-----BEGIN ((?:ENCRYPTED |RSA )?PRIVATE KEY)-----.*?-----END (?:ENCRYPTED |RSA )?PRIVATE KEY-----` // pragma: allowlist secret
	sseCustomerKeyPattern  = `(?i)(x-amz-server-side-encryption-customer-key|qrmk)([\'\"\s:=\[]+)([a-z0-9/+]{16,}={0,2})`
	jwtTokenPattern        = `(?i)(jwt|bearer)[\s:=]*([a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+)` // pragma: allowlist secret
)

var (
	connectionTokenRegexp = regexp.MustCompile(connectionTokenPattern)
	passwordRegexp        = regexp.MustCompile(passwordPattern)
	passphraseRegexp      = regexp.MustCompile(passphrasePattern)
	privateKeyRegexp      = regexp.MustCompile(privateKeyPattern)
	sseCustomerKeyRegexp  = regexp.MustCompile(sseCustomerKeyPattern)
	jwtTokenRegexp        = regexp.MustCompile(jwtTokenPattern)
)

type secretmasker string

func (s secretmasker) maskConnectionToken() secretmasker {
	return secretmasker(connectionTokenRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskPassword() secretmasker {
	return secretmasker(passwordRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskPassphrase() secretmasker {
	return secretmasker(passphraseRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskPrivateKey() secretmasker {
	return secretmasker(privateKeyRegexp.ReplaceAllString(s.String(), "-----BEGIN $1-----XXXX-----END $1-----"))
}

func (s secretmasker) maskSSECustomerKey() secretmasker {
	return secretmasker(sseCustomerKeyRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskJwtToken() secretmasker {
	return secretmasker(jwtTokenRegexp.ReplaceAllString(s.String(), "$1 ****"))
}

func (s secretmasker) String() string {
	return string(s)
}

// MaskSecrets masks session tokens, passwords, key material and result
// encryption keys in text.
func MaskSecrets(text string) string {
	return secretmasker(text).
		maskPrivateKey().
		maskJwtToken().
		maskConnectionToken().
		maskPassword().
		maskPassphrase().
		maskSSECustomerKey().
		String()
}
