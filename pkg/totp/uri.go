package totp

import (
	"strconv"
	"strings"
)

// URIParams contains the parameters for provisioning URI generation
type URIParams struct {
	Secret    string    // Base32-encoded TOTP secret key (required)
	Label     string    // Account label, usually an email (required)
	Issuer    string    // Service name displayed in authenticator apps (required)
	Algorithm Algorithm // HMAC algorithm (optional, defaults to SHA1)
	Digits    int       // Number of digits in generated codes (optional, defaults to 6)
}

// Validate ensures all required URI parameters are present and valid
func (p URIParams) Validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.Label == "" {
		return ErrMissingLabel
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

// BuildURI creates the otpauth:// provisioning URI consumed by authenticator apps:
//
//	otpauth://totp/<issuer>%3A<label>?issuer=..&label=..&secret=..&algorithm=..&digits=..
//
// The issuer in the path and every query value are percent-encoded per RFC 3986.
func BuildURI(params URIParams) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}

	alg := DefaultAlgorithm
	if params.Algorithm != "" {
		parsed, err := ParseAlgorithm(string(params.Algorithm))
		if err != nil {
			return "", err
		}
		alg = parsed
	}
	digits := params.Digits
	if digits == 0 {
		digits = DefaultDigits
	}

	var b strings.Builder
	b.WriteString("otpauth://totp/")
	b.WriteString(rawURLEncode(params.Issuer))
	b.WriteString("%3A")
	b.WriteString(params.Label)
	b.WriteString("?issuer=")
	b.WriteString(rawURLEncode(params.Issuer))
	b.WriteString("&label=")
	b.WriteString(rawURLEncode(params.Label))
	b.WriteString("&secret=")
	b.WriteString(rawURLEncode(params.Secret))
	b.WriteString("&algorithm=")
	b.WriteString(rawURLEncode(alg.String()))
	b.WriteString("&digits=")
	b.WriteString(strconv.Itoa(digits))

	return b.String(), nil
}

const upperhex = "0123456789ABCDEF"

// rawURLEncode escapes everything but RFC 3986 unreserved characters.
// url.QueryEscape is not usable here: it encodes spaces as "+".
func rawURLEncode(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return 'A' <= c && c <= 'Z' ||
		'a' <= c && c <= 'z' ||
		'0' <= c && c <= '9' ||
		c == '-' || c == '_' || c == '.' || c == '~'
}
