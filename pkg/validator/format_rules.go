package validator

import (
	"net/mail"
	"strings"
)

// ValidEmail validates an address with net/mail and requires a dotted domain.
func ValidEmail(field, value string) Rule {
	return NewRule(field, func() bool {
		if strings.TrimSpace(value) == "" {
			return false
		}
		addr, err := mail.ParseAddress(value)
		if err != nil {
			return false
		}
		local, domain, ok := strings.Cut(addr.Address, "@")
		if !ok || local == "" || strings.Contains(domain, "@") {
			return false
		}
		if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
			return false
		}
		for part := range strings.SplitSeq(domain, ".") {
			if part == "" {
				return false
			}
		}
		return true
	}, "must be a valid email address", "validation.email", nil)
}
