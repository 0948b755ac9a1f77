package httpguard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// CodeTooManyAttempts is returned once the attempt limiter refuses a code.
const CodeTooManyAttempts = "too_many_attempts"

// WithAttemptLimiter throttles code submissions per owner. Every submitted
// code takes a token; a successful verification refills the owner's bucket.
func WithAttemptLimiter(b *ratelimiter.Bucket) Option {
	return func(h *Handler) {
		h.limiter = b
	}
}

// allowAttempt reports whether owner may submit another code and, when not,
// how long to wait. Limiter failures let the attempt through.
func (h *Handler) allowAttempt(ctx context.Context, owner twofactor.Owner) (bool, time.Duration) {
	if h.limiter == nil {
		return true, 0
	}
	res, err := h.limiter.Allow(ctx, owner.String())
	if err != nil {
		h.logger.WarnContext(ctx, "attempt limiter failed", logger.Owner(owner.String()), logger.Error(err))
		return true, 0
	}
	if res.Allowed() {
		return true, 0
	}
	h.logger.InfoContext(ctx, "two-factor attempts throttled",
		logger.Owner(owner.String()),
		logger.Reason(CodeTooManyAttempts),
	)
	return false, res.RetryAfter(h.svc.Now())
}

func (h *Handler) resetAttempts(ctx context.Context, owner twofactor.Owner) {
	if h.limiter == nil {
		return
	}
	if err := h.limiter.Reset(ctx, owner.String()); err != nil {
		h.logger.WarnContext(ctx, "attempt limiter reset failed", logger.Owner(owner.String()), logger.Error(err))
	}
}

func setRetryAfter(w http.ResponseWriter, wait time.Duration) {
	seconds := int((wait + time.Second - 1) / time.Second)
	if seconds > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}
}

func (h *Handler) throttled(w http.ResponseWriter, r *http.Request, wait time.Duration) {
	setRetryAfter(w, wait)
	writeError(w, http.StatusTooManyRequests, CodeTooManyAttempts, h.message(r, twofactor.MsgThrottled))
}
