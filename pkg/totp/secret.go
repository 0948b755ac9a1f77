package totp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"regexp"
	"strings"
)

const (
	DefaultSecretLength = 20 // 160-bit secret (RFC 4226 recommendation)
	MinSecretLength     = 16 // 128-bit floor allowed by RFC 4226
	MaxSecretLength     = 32
)

var (
	// ValidateSecretKeyRegex ensures Base32 format: uppercase A-Z, digits 2-7, optional padding
	ValidateSecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// GenerateSecret returns byteLength random bytes encoded as unpadded uppercase Base32.
func GenerateSecret(byteLength int) (string, error) {
	if byteLength < MinSecretLength || byteLength > MaxSecretLength {
		return "", ErrInvalidSecretLength
	}
	secret := make([]byte, byteLength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecretKey, err)
	}
	return b32.EncodeToString(secret), nil
}

// GenerateSecretKey generates a new Base32-encoded secret key of the default length.
func GenerateSecretKey() (string, error) {
	return GenerateSecret(DefaultSecretLength)
}

// NormalizeSecret uppercases the secret and strips whitespace, group separators and padding.
func NormalizeSecret(secret string) string {
	secret = strings.ToUpper(secret)
	secret = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '=':
			return -1
		}
		return r
	}, secret)
	return secret
}

// DecodeSecret converts a Base32 secret into the raw HMAC key.
// Input is case-insensitive and may contain the grouping produced by GroupSecret.
func DecodeSecret(secret string) ([]byte, error) {
	secret = NormalizeSecret(secret)
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if !ValidateSecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// CounterToBytes frames a moving factor as the 8-byte big-endian message of RFC 4226 §5.3.
func CounterToBytes(counter uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, counter)
	return buf
}

// GroupSecret formats the secret in space-separated 4-character groups for manual entry.
func GroupSecret(secret string) string {
	var b strings.Builder
	b.Grow(len(secret) + len(secret)/4)
	for i, r := range secret {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
