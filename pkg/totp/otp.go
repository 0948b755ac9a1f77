package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Algorithm is the HMAC hash function used to derive codes.
type Algorithm string

const (
	SHA1   Algorithm = "SHA1"
	SHA256 Algorithm = "SHA256"
	SHA512 Algorithm = "SHA512"
)

const (
	DefaultDigits    = 6    // Standard 6-digit TOTP codes
	DefaultPeriod    = 30   // 30-second validity window (RFC 6238 standard)
	DefaultWindow    = 1    // One past period tolerated for client clock lag
	DefaultAlgorithm = SHA1 // HMAC-SHA1 algorithm (RFC 6238 standard)

	MinDigits = 6
	MaxDigits = 10
)

// ParseAlgorithm maps a case-insensitive name to a supported Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToUpper(strings.TrimSpace(name))) {
	case SHA1:
		return SHA1, nil
	case SHA256:
		return SHA256, nil
	case SHA512:
		return SHA512, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

func (a Algorithm) String() string { return string(a) }

func (a Algorithm) hasher() func() hash.Hash {
	switch a {
	case SHA256:
		return sha256.New
	case SHA512:
		return sha512.New
	default:
		return sha1.New
	}
}

// Params are the per-record TOTP tunables.
type Params struct {
	Digits    int       `json:"digits" bson:"digits"`
	Period    int       `json:"period" bson:"period"`
	Window    int       `json:"window" bson:"window"`
	Algorithm Algorithm `json:"algorithm" bson:"algorithm"`
}

// DefaultParams returns the RFC 6238 defaults.
func DefaultParams() Params {
	return Params{
		Digits:    DefaultDigits,
		Period:    DefaultPeriod,
		Window:    DefaultWindow,
		Algorithm: DefaultAlgorithm,
	}
}

// WithDefaults returns a copy with zero-valued digits, period and algorithm replaced by defaults.
// Window is left untouched because zero is a meaningful (strict) value.
func (p Params) WithDefaults() Params {
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	return p
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	if p.Digits < MinDigits || p.Digits > MaxDigits {
		return ErrInvalidDigits
	}
	if p.Period <= 0 {
		return ErrInvalidPeriod
	}
	if p.Window < 0 {
		return ErrInvalidWindow
	}
	if _, err := ParseAlgorithm(string(p.Algorithm)); err != nil {
		return err
	}
	return nil
}

// PeriodIndex returns floor(ts / period).
func PeriodIndex(ts int64, period int) uint64 {
	return uint64(floorDiv(ts, int64(period)))
}

// PeriodStart returns the first second of the period containing ts.
func PeriodStart(ts int64, period int) int64 {
	return floorDiv(ts, int64(period)) * int64(period)
}

// GenerateHOTP implements RFC 4226: HMAC over the big-endian counter, dynamic truncation
// to a 31-bit integer, reduced modulo 10^digits and left-padded with zeros.
func GenerateHOTP(key []byte, counter uint64, digits int, alg Algorithm) string {
	mac := hmac.New(alg.hasher(), key)
	mac.Write(CounterToBytes(counter))
	sum := mac.Sum(nil)

	// Dynamic truncation (RFC 4226): use last 4 bits as offset into hash
	offset := sum[len(sum)-1] & 0x0f
	// Extract 31-bit value (clear MSB to ensure positive number)
	code := uint64(binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff)

	code %= pow10(digits)

	return fmt.Sprintf("%0*d", digits, code)
}

// GenerateCode computes the code for the period containing at, shifted by offset whole periods.
func GenerateCode(key []byte, p Params, at int64, offset int) string {
	p = p.WithDefaults()
	period := int64(p.Period)
	adjusted := (floorDiv(at, period) + int64(offset)) * period
	return GenerateHOTP(key, PeriodIndex(adjusted, p.Period), p.Digits, p.Algorithm)
}

// ValidateCode checks code against the current period and up to window past periods.
// Future periods are never accepted. Comparison is constant-time.
func ValidateCode(key []byte, p Params, code string, at int64, window int) bool {
	if code == "" {
		return false
	}
	if window < 0 {
		window = 0
	}
	candidate := []byte(code)
	for i := 0; i <= window; i++ {
		if subtle.ConstantTimeCompare([]byte(GenerateCode(key, p, at, -i)), candidate) == 1 {
			return true
		}
	}
	return false
}

// defaultCodeRegex matches a code of DefaultDigits digits.
var defaultCodeRegex = regexp.MustCompile(`^\d{` + strconv.Itoa(DefaultDigits) + `}$`)

// ValidateTOTP validates the TOTP code provided by the user against the current time
// using the default parameters.
func ValidateTOTP(secret, otp string) (bool, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return false, err
	}

	otp = strings.TrimSpace(otp)
	if !defaultCodeRegex.MatchString(otp) {
		return false, ErrInvalidOTP
	}

	return ValidateCode(key, DefaultParams(), otp, time.Now().Unix(), DefaultWindow), nil
}

// GenerateTOTP generates a time-based one-time password for the current 30-second window.
func GenerateTOTP(secret string) (string, error) {
	return GenerateTOTPWithTime(secret, time.Now())
}

// GenerateTOTPWithTime generates a TOTP code for the 30-second window containing the specified time.
func GenerateTOTPWithTime(secret string, t time.Time) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	return GenerateCode(key, DefaultParams(), t.Unix(), 0), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalizes epoch seconds, time values and date strings into epoch seconds.
// Strings without a zone are read as UTC.
func ParseTimestamp(at any) (int64, error) {
	switch v := at.(type) {
	case time.Time:
		return v.Unix(), nil
	case *time.Time:
		if v == nil {
			return 0, ErrInvalidTimestamp
		}
		return v.Unix(), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.Unix(), nil
			}
		}
		return 0, errors.Join(ErrInvalidTimestamp, fmt.Errorf("unrecognized date %q", v))
	}
	return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, at)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func pow10(n int) uint64 {
	result := uint64(1)
	for range n {
		result *= 10
	}
	return result
}
