// Package metrics holds the Prometheus counters for authentication
// outcomes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Logins             *prometheus.CounterVec
	SessionValidations *prometheus.CounterVec
	PasswordResets     *prometheus.CounterVec
	APIKeyAuths        *prometheus.CounterVec
	AuditWriteFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		SessionValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_session_validations_total",
				Help: "Session token validations by result",
			},
			[]string{"result"},
		),
		PasswordResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_password_resets_total",
				Help: "Password reset operations by stage and result",
			},
			[]string{"stage", "result"},
		),
		APIKeyAuths: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "attendance_api_key_auths_total",
				Help: "API key authentications by result",
			},
			[]string{"result"},
		),
		AuditWriteFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "attendance_api_key_audit_write_failures_total",
				Help: "Failed best-effort last_used_at writes",
			},
		),
	}

	reg.MustRegister(m.Logins, m.SessionValidations, m.PasswordResets, m.APIKeyAuths, m.AuditWriteFailures)
	return m
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Session(result string) {
	if m == nil {
		return
	}
	m.SessionValidations.WithLabelValues(result).Inc()
}

func (m *Metrics) Reset(stage, result string) {
	if m == nil {
		return
	}
	m.PasswordResets.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) APIKey(result string) {
	if m == nil {
		return
	}
	m.APIKeyAuths.WithLabelValues(result).Inc()
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.AuditWriteFailures.Inc()
}
