// Package validator builds declarative validation rules with
// translation-friendly error metadata.
//
// A Rule pairs a Check function with a ValidationError describing the
// failure. Apply evaluates rules and returns the failures as
// ValidationErrors, which implements error and can be unwrapped with
// ExtractValidationErrors further up the stack:
//
//	err := validator.Apply(
//	    validator.Required("2fa_code", code),
//	    validator.ValidOTPCode("2fa_code", code, 6),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs.Has("2fa_code") {
//	    // render errs.First("2fa_code")
//	}
//
// Rules for one-time codes, recovery codes and Base32 secrets live in
// otp_rules.go. Every error carries a TranslationKey such as
// "validation.otp_code" and the field name in TranslationValues.
package validator
