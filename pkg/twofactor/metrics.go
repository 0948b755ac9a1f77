package twofactor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "twofactor"

// Metrics holds the Prometheus collectors updated by the service and the guard.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Decisions        *prometheus.CounterVec
	CodeValidations  *prometheus.CounterVec
	ReplaysRejected  prometheus.Counter
	RecoveryRedeemed prometheus.Counter
	Events           *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. A nil reg registers with the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "decisions_total",
				Help:      "Authentication decisions by state and path",
			},
			[]string{"state", "path"}, // path: not_two_factor, safe_device, code, code_required, invalid_code, error
		),
		CodeValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "code_validations_total",
				Help:      "Code validations by method and result",
			},
			[]string{"method", "result"}, // method: totp, recovery
		),
		ReplaysRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "replays_rejected_total",
				Help:      "TOTP codes rejected because they were already used",
			},
		),
		RecoveryRedeemed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "recovery_codes_redeemed_total",
				Help:      "Recovery codes consumed",
			},
		),
		Events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "events_total",
				Help:      "Lifecycle events emitted by kind",
			},
			[]string{"kind"},
		),
	}
}

func (m *Metrics) decision(state DecisionState, path DecisionPath) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(state), string(path)).Inc()
}

func (m *Metrics) validation(method string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.CodeValidations.WithLabelValues(method, result).Inc()
}

func (m *Metrics) replay() {
	if m == nil {
		return
	}
	m.ReplaysRejected.Inc()
}

func (m *Metrics) redeemed() {
	if m == nil {
		return
	}
	m.RecoveryRedeemed.Inc()
}

func (m *Metrics) event(kind EventKind) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(string(kind)).Inc()
}
