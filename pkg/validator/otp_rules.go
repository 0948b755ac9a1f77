package validator

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	base32Regex        = regexp.MustCompile(`^[A-Z2-7]+=*$`)
	recoveryCodeRegex  = regexp.MustCompile(`^[A-Z0-9]+$`)
	numericStringRegex = regexp.MustCompile(`^[0-9]+$`)
)

// ValidOTPCode checks that value is exactly digits decimal digits.
func ValidOTPCode(field, value string, digits int) Rule {
	return NewRule(field, func() bool {
		return len(value) == digits && numericStringRegex.MatchString(value)
	}, fmt.Sprintf("must be a %d-digit code", digits), "validation.otp_code", map[string]any{"digits": digits})
}

// ValidRecoveryCode checks an uppercase alphanumeric code of the given length.
func ValidRecoveryCode(field, value string, length int) Rule {
	return NewRule(field, func() bool {
		return len(value) == length && recoveryCodeRegex.MatchString(value)
	}, fmt.Sprintf("must be a %d-character recovery code", length), "validation.recovery_code", map[string]any{"length": length})
}

// ValidBase32Secret checks a Base32 shared secret; case and spaces are ignored.
func ValidBase32Secret(field, value string) Rule {
	return NewRule(field, func() bool {
		s := strings.ToUpper(strings.ReplaceAll(value, " ", ""))
		return s != "" && base32Regex.MatchString(s)
	}, "must be a valid base32 secret", "validation.base32", nil)
}
