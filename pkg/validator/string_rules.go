package validator

import "strings"

// Required validates that a string is not empty after trimming whitespace.
func Required(field, value string) Rule {
	return NewRule(field, func() bool {
		return strings.TrimSpace(value) != ""
	}, "field is required", "validation.required", nil)
}
