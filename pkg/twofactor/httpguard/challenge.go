package httpguard

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
	"github.com/dmitrymomot/twofactor/pkg/validator"
)

// Challenge is returned to the client when the second factor is still missing.
// Credentials echo the submitted form so the login can be replayed together with the code.
type Challenge struct {
	Action      string            `json:"action"`
	Credentials map[string]string `json:"credentials"`
	Remember    bool              `json:"remember"`
	Input       string            `json:"input"`
	Error       string            `json:"error,omitempty"`
	Status      int               `json:"-"`
}

// LoginHook runs the second factor for a principal whose credentials were already
// accepted. A nil challenge means the login may proceed; when the client asked to
// remember the device the signed device cookie is written to w.
func (h *Handler) LoginHook(w http.ResponseWriter, r *http.Request, principal any) (*Challenge, error) {
	form, err := readForm(r)
	if err != nil {
		return nil, errors.Join(ErrInvalidFormat, err)
	}

	cfg := h.svc.Config()
	attempt := twofactor.Attempt{
		Principal:      principal,
		Code:           form.Get(cfg.Input),
		RememberDevice: truthy(form.Get(cfg.SafeDeviceInput)),
		IP:             ClientIP(r),
		Lang:           h.svc.Messages().Match(r.Header.Get("Accept-Language")),
	}
	if token, err := h.jar.get(r, cfg.CookieName); err == nil {
		attempt.DeviceToken = token
	}

	// Only submitted codes count against the limiter; the prompt itself is free.
	acct, isAccount := h.svc.Account(principal)
	if isAccount && attempt.Code != "" {
		if allowed, wait := h.allowAttempt(r.Context(), acct.Owner()); !allowed {
			setRetryAfter(w, wait)
			challenge := h.challenge(r, form, attempt.RememberDevice)
			challenge.Status = http.StatusTooManyRequests
			challenge.Error = h.svc.Message(attempt.Lang, twofactor.MsgThrottled)
			return challenge, nil
		}
	}

	d, err := h.guard.ValidateOrFail(r.Context(), attempt)
	if err != nil && !validator.IsValidationError(err) {
		return nil, err
	}
	if d.Granted() {
		if isAccount && d.Path == twofactor.PathCode {
			h.resetAttempts(r.Context(), acct.Owner())
		}
		if d.RememberDevice() {
			h.jar.set(w, cfg.CookieName, d.DeviceToken, d.DeviceMaxAge)
		}
		return nil, nil
	}

	challenge := h.challenge(r, form, attempt.RememberDevice)
	if d.Path == twofactor.PathInvalidCode {
		challenge.Status = http.StatusUnprocessableEntity
		challenge.Error = validator.ExtractValidationErrors(err).First(cfg.Input)
	}
	return challenge, nil
}

// challenge echoes form without the second-factor inputs.
func (h *Handler) challenge(r *http.Request, form url.Values, remember bool) *Challenge {
	cfg := h.svc.Config()
	challenge := &Challenge{
		Action:      r.URL.Path,
		Credentials: make(map[string]string, len(form)),
		Remember:    remember,
		Input:       cfg.Input,
		Status:      http.StatusForbidden,
	}
	for key := range form {
		if key == cfg.Input || key == cfg.SafeDeviceInput {
			continue
		}
		challenge.Credentials[key] = form.Get(key)
	}
	return challenge
}

// Check is LoginHook for JSON APIs: it writes the challenge, or an error, and
// reports whether the caller may continue the login.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request, principal any) bool {
	challenge, err := h.LoginHook(w, r, principal)
	switch {
	case errors.Is(err, ErrInvalidFormat):
		writeError(w, http.StatusBadRequest, CodeValidation, err.Error())
		return false
	case err != nil:
		h.logger.ErrorContext(r.Context(), "two-factor login check failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, CodeInternal, http.StatusText(http.StatusInternalServerError))
		return false
	case challenge != nil:
		writeData(w, challenge.Status, challenge)
		return false
	}
	return true
}
