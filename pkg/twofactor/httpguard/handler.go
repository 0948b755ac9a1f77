package httpguard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/twofactor/pkg/i18n"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// PrincipalFunc resolves the authenticated account of a request. ok is false
// for anonymous requests.
type PrincipalFunc func(r *http.Request) (principal twofactor.Authenticatable, ok bool)

// Handler exposes two-factor enrollment and management over HTTP and guards logins.
type Handler struct {
	svc       *twofactor.Service
	guard     *twofactor.Guard
	jar       *cookieJar
	cfg       Config
	principal PrincipalFunc
	limiter   *ratelimiter.Bucket
	logger    *slog.Logger
}

type Option func(*Handler)

// WithLogger sets the logger for request failures. Register RequestIDExtractor
// on it to correlate entries with the X-Request-ID header.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.logger = log
		}
	}
}

// New builds a Handler. The cookie secrets are validated here.
func New(svc *twofactor.Service, cfg Config, principal PrincipalFunc, opts ...Option) (*Handler, error) {
	if svc == nil {
		return nil, ErrMissingService
	}
	if principal == nil {
		return nil, ErrMissingPrincipal
	}
	jar, err := newCookieJar(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ConfirmedCookie == "" {
		cfg.ConfirmedCookie = "2fa_confirmed"
	}

	h := &Handler{
		svc:       svc,
		guard:     twofactor.NewGuard(svc),
		jar:       jar,
		cfg:       cfg,
		principal: principal,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("twofactor.http"))
	return h, nil
}

// Handle returns the management routes:
//
//	POST   /setup            start enrollment, returns the provisioning data
//	POST   /confirm          confirm the first code, returns recovery codes
//	POST   /verify           confirm a code for an enabled account
//	POST   /disable          turn two-factor off (recent confirmation required)
//	POST   /recovery-codes   issue a new batch (recent confirmation required)
//	DELETE /devices          forget all safe devices (recent confirmation required)
func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(i18n.Middleware(h.svc.Messages()))
	r.Use(h.requirePrincipal)

	r.Post("/setup", h.setup)
	r.Post("/confirm", h.confirm)
	r.Post("/verify", h.verify)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireEnabled, h.RequireConfirmed)
		r.Post("/disable", h.disable)
		r.Post("/recovery-codes", h.regenerate)
		r.Delete("/devices", h.forgetDevices)
	})
	return r
}

type principalKey struct{}

func (h *Handler) requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.principal(r)
		if !ok || p == nil || p.TwoFactorOwner().Validate() != nil {
			writeError(w, http.StatusUnauthorized, CodeUnauthenticated, http.StatusText(http.StatusUnauthorized))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

func (h *Handler) principalOf(r *http.Request) (twofactor.Authenticatable, bool) {
	if p, ok := r.Context().Value(principalKey{}).(twofactor.Authenticatable); ok {
		return p, true
	}
	p, ok := h.principal(r)
	return p, ok && p != nil
}

// RequireEnabled rejects principals without two-factor authentication.
func (h *Handler) RequireEnabled(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.principalOf(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, CodeUnauthenticated, http.StatusText(http.StatusUnauthorized))
			return
		}
		enabled, err := h.svc.HasTwoFactorEnabled(r.Context(), p.TwoFactorOwner())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if !enabled {
			writeError(w, http.StatusForbidden, CodeNotEnabled, h.message(r, twofactor.MsgEnable))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireConfirmed rejects requests without a recent code confirmation for the
// same principal. See twofactor.Config.ConfirmTimeout.
func (h *Handler) RequireConfirmed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := h.principalOf(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, CodeUnauthenticated, http.StatusText(http.StatusUnauthorized))
			return
		}
		if !h.recentlyConfirmed(r, p.TwoFactorOwner()) {
			writeError(w, http.StatusForbidden, CodeConfirmationRequired, h.message(r, twofactor.MsgContinue))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) recentlyConfirmed(r *http.Request, owner twofactor.Owner) bool {
	value, err := h.jar.get(r, h.cfg.ConfirmedCookie)
	if err != nil {
		return false
	}
	i := strings.LastIndexByte(value, '|')
	if i < 0 || value[:i] != owner.String() {
		return false
	}
	ts, err := strconv.ParseInt(value[i+1:], 10, 64)
	if err != nil {
		return false
	}
	return h.svc.Config().RecentlyConfirmed(time.Unix(ts, 0), h.svc.Now())
}

func (h *Handler) markConfirmed(w http.ResponseWriter, owner twofactor.Owner) {
	value := owner.String() + "|" + strconv.FormatInt(h.svc.Now().Unix(), 10)
	h.jar.set(w, h.cfg.ConfirmedCookie, value, h.svc.Config().ConfirmTimeout)
}

type setupResponse struct {
	URI    string `json:"uri"`
	Secret string `json:"secret"`
	QR     string `json:"qr"`
}

func (h *Handler) setup(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	enabled, err := h.svc.HasTwoFactorEnabled(r.Context(), p.TwoFactorOwner())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if enabled {
		writeError(w, http.StatusConflict, CodeAlreadyEnabled, h.message(r, twofactor.MsgEnabled))
		return
	}

	prov, err := h.svc.Enroll(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	uri, err := prov.URI()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	qr, err := prov.QR()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, setupResponse{URI: uri, Secret: prov.GroupedSecret(), QR: qr})
}

type recoveryResponse struct {
	Message       string   `json:"message"`
	RecoveryCodes []string `json:"recovery_codes,omitempty"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	owner := p.TwoFactorOwner()
	code, ok := h.code(w, r)
	if !ok {
		return
	}
	if allowed, wait := h.allowAttempt(r.Context(), owner); !allowed {
		h.throttled(w, r, wait)
		return
	}

	confirmed, err := h.svc.Confirm(r.Context(), owner, code)
	if errors.Is(err, twofactor.ErrRecordNotFound) {
		confirmed, err = false, nil
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !confirmed {
		h.invalid(w, r, twofactor.MsgFailConfirm)
		return
	}

	codes, err := h.svc.RecoveryCodes(r.Context(), owner)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.resetAttempts(r.Context(), owner)
	h.markConfirmed(w, owner)
	writeData(w, http.StatusOK, recoveryResponse{
		Message:       h.message(r, twofactor.MsgEnabled),
		RecoveryCodes: codes.Codes(),
	})
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	owner := p.TwoFactorOwner()
	code, ok := h.code(w, r)
	if !ok {
		return
	}

	if allowed, wait := h.allowAttempt(r.Context(), owner); !allowed {
		h.throttled(w, r, wait)
		return
	}

	valid := false
	if h.svc.WellFormedCode(code) {
		var err error
		valid, err = h.svc.ValidateCode(r.Context(), owner, code)
		if err != nil && !errors.Is(err, twofactor.ErrRecordNotFound) {
			h.fail(w, r, err)
			return
		}
	}
	if !valid {
		h.invalid(w, r, twofactor.MsgInvalidCode)
		return
	}
	h.resetAttempts(r.Context(), owner)
	h.markConfirmed(w, owner)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) disable(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	if err := h.svc.Disable(r.Context(), p.TwoFactorOwner()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.jar.delete(w, h.cfg.ConfirmedCookie)
	h.jar.delete(w, h.svc.Config().CookieName)
	writeData(w, http.StatusOK, recoveryResponse{Message: h.message(r, twofactor.MsgDisabled)})
}

func (h *Handler) regenerate(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	codes, err := h.svc.GenerateRecoveryCodes(r.Context(), p.TwoFactorOwner())
	if errors.Is(err, twofactor.ErrRecoveryDisabled) {
		writeError(w, http.StatusConflict, CodeRecoveryDisabled, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeData(w, http.StatusOK, recoveryResponse{
		Message:       h.message(r, twofactor.MsgRecoveryGenerated),
		RecoveryCodes: codes.Codes(),
	})
}

func (h *Handler) forgetDevices(w http.ResponseWriter, r *http.Request) {
	p, _ := h.principalOf(r)
	if err := h.svc.FlushSafeDevices(r.Context(), p.TwoFactorOwner()); err != nil {
		h.fail(w, r, err)
		return
	}
	h.jar.delete(w, h.svc.Config().CookieName)
	w.WriteHeader(http.StatusNoContent)
}

// code reads the configured input. A malformed body is answered with 400.
func (h *Handler) code(w http.ResponseWriter, r *http.Request) (string, bool) {
	form, err := readForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, ErrInvalidFormat.Error())
		return "", false
	}
	return strings.TrimSpace(form.Get(h.svc.Config().Input)), true
}

func (h *Handler) invalid(w http.ResponseWriter, r *http.Request, key string) {
	writeValidation(w, validatorError(h.svc.Config().Input, h.message(r, key), key))
}

func (h *Handler) message(r *http.Request, key string) string {
	return h.svc.Message(i18n.GetLocale(r.Context()), key)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "two-factor request failed",
		logger.Error(err),
		logger.IP(ClientIP(r)),
	)
	writeError(w, http.StatusInternalServerError, CodeInternal, http.StatusText(http.StatusInternalServerError))
}
