package httpguard

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// Response is the JSON envelope of every endpoint.
type Response struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail describes a failed request. Details maps input names to messages.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// Error codes.
const (
	CodeUnauthenticated      = "unauthenticated"
	CodeNotEnabled           = "two_factor_not_enabled"
	CodeAlreadyEnabled       = "two_factor_enabled"
	CodeConfirmationRequired = "two_factor_confirmation_required"
	CodeRecoveryDisabled     = "recovery_codes_disabled"
	CodeValidation           = "validation_failed"
	CodeInternal             = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Response{Error: &ErrorDetail{Code: code, Message: message}})
}

func writeValidation(w http.ResponseWriter, err error) {
	ve := validator.ExtractValidationErrors(err)
	details := make(map[string][]string, len(ve))
	for _, field := range ve.Fields() {
		details[field] = ve.Get(field)
	}
	message := ""
	if len(ve) > 0 {
		message = ve[0].Message
	}
	writeJSON(w, http.StatusUnprocessableEntity, Response{Error: &ErrorDetail{
		Code:    CodeValidation,
		Message: message,
		Details: details,
	}})
}

func validatorError(field, message, key string) error {
	return validator.Single(field, message, key, nil)
}
