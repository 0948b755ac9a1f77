package twofactor

import (
	"crypto/subtle"
	"time"
)

// RecoveryCode is a single-use backup code. UsedAt is nil until the code is consumed.
type RecoveryCode struct {
	Code   string     `json:"code" bson:"code"`
	UsedAt *time.Time `json:"used_at" bson:"used_at"`
}

func (c RecoveryCode) IsUsed() bool { return c.UsedAt != nil }

// RecoveryCodes is the current batch of a record.
type RecoveryCodes []RecoveryCode

// NewRecoveryCodes wraps freshly generated code strings as unused entries.
func NewRecoveryCodes(codes []string) RecoveryCodes {
	out := make(RecoveryCodes, len(codes))
	for i, code := range codes {
		out[i] = RecoveryCode{Code: code}
	}
	return out
}

// FindUnused returns the index of the unused entry matching code, or -1.
// Every entry is compared so the time taken does not depend on the match position.
func (rc RecoveryCodes) FindUnused(code string) int {
	if code == "" {
		return -1
	}
	found := -1
	candidate := []byte(code)
	for i, c := range rc {
		match := subtle.ConstantTimeCompare([]byte(c.Code), candidate) == 1
		if match && !c.IsUsed() && found < 0 {
			found = i
		}
	}
	return found
}

// MarkUsed consumes code in place. It reports false when no unused entry matches.
func (rc RecoveryCodes) MarkUsed(code string, now time.Time) bool {
	i := rc.FindUnused(code)
	if i < 0 {
		return false
	}
	usedAt := now
	rc[i].UsedAt = &usedAt
	return true
}

func (rc RecoveryCodes) HasUnused() bool {
	return rc.Unused() > 0
}

// Unused counts entries that can still be redeemed.
func (rc RecoveryCodes) Unused() int {
	n := 0
	for _, c := range rc {
		if !c.IsUsed() {
			n++
		}
	}
	return n
}

// Codes lists the code strings in order, used or not.
func (rc RecoveryCodes) Codes() []string {
	out := make([]string, len(rc))
	for i, c := range rc {
		out[i] = c.Code
	}
	return out
}

// Clone returns a deep copy.
func (rc RecoveryCodes) Clone() RecoveryCodes {
	if rc == nil {
		return nil
	}
	out := make(RecoveryCodes, len(rc))
	for i, c := range rc {
		out[i] = RecoveryCode{Code: c.Code, UsedAt: cloneTime(c.UsedAt)}
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
