package totp

import (
	"crypto/rand"
	"errors"
)

const (
	// AlphabetUpperAlnum is used for recovery codes: easy to read back and type.
	AlphabetUpperAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// AlphabetAlnum is used for opaque tokens.
	AlphabetAlnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	DefaultRecoveryCodeCount  = 10
	DefaultRecoveryCodeLength = 8
)

// GenerateRecoveryCodes creates count single-use backup codes of length uppercase alphanumeric characters.
func GenerateRecoveryCodes(count, length int) ([]string, error) {
	if count < 1 {
		return nil, ErrInvalidRecoveryCodeCount
	}
	if length < 1 {
		return nil, ErrInvalidRecoveryCodeLength
	}

	codes := make([]string, count)
	for i := range count {
		code, err := RandomString(length, AlphabetUpperAlnum)
		if err != nil {
			return nil, errors.Join(ErrFailedToGenerateRecoveryCode, err)
		}
		codes[i] = code
	}
	return codes, nil
}

// RandomString draws length characters uniformly from alphabet using crypto/rand.
// Bytes that would bias the distribution are rejected and redrawn.
func RandomString(length int, alphabet string) (string, error) {
	if length < 1 || len(alphabet) == 0 || len(alphabet) > 256 {
		return "", ErrFailedToGenerateRandomString
	}

	limit := 256 - (256 % len(alphabet))
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", errors.Join(ErrFailedToGenerateRandomString, err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
