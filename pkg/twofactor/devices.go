package twofactor

import (
	"crypto/subtle"
	"errors"
	"slices"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// DeviceTokenLength is the number of characters in a safe device token.
const DeviceTokenLength = 100

// GenerateDeviceToken returns a fresh random device token.
func GenerateDeviceToken() (string, error) {
	token, err := totp.RandomString(DeviceTokenLength, totp.AlphabetAlnum)
	if err != nil {
		return "", errors.Join(ErrFailedToGenerate, err)
	}
	return token, nil
}

// SafeDevice is a browser or device allowed to skip the code prompt until it expires.
type SafeDevice struct {
	Token   string    `json:"2fa_remember" bson:"token"`
	IP      string    `json:"ip" bson:"ip"`
	AddedAt time.Time `json:"added_at" bson:"added_at"`
}

// ExpiresAt is the first instant the device is no longer trusted.
func (d SafeDevice) ExpiresAt(expiration time.Duration) time.Time {
	return d.AddedAt.Add(expiration)
}

// SafeDevices is kept newest first.
type SafeDevices []SafeDevice

// Add registers device and keeps only the max most recent entries.
// A non-positive max keeps everything.
func (sd SafeDevices) Add(device SafeDevice, max int) SafeDevices {
	out := append(sd.Clone(), device)
	slices.SortStableFunc(out, func(a, b SafeDevice) int {
		return b.AddedAt.Compare(a.AddedAt)
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Find looks token up comparing against every entry in constant time.
func (sd SafeDevices) Find(token string) (SafeDevice, bool) {
	var (
		found SafeDevice
		ok    bool
	)
	if token == "" {
		return found, false
	}
	candidate := []byte(token)
	for _, d := range sd {
		if subtle.ConstantTimeCompare([]byte(d.Token), candidate) == 1 && !ok {
			found, ok = d, true
		}
	}
	return found, ok
}

// IsTrusted reports whether token belongs to a device added less than expiration ago.
// Expired entries are left in place; they age out through Add.
func (sd SafeDevices) IsTrusted(token string, now time.Time, expiration time.Duration) bool {
	d, ok := sd.Find(token)
	if !ok {
		return false
	}
	return d.ExpiresAt(expiration).After(now)
}

func (sd SafeDevices) Clone() SafeDevices {
	if sd == nil {
		return nil
	}
	return slices.Clone(sd)
}
