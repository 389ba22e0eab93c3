package vauth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts authentication outcomes.  All counters are labelled by
// result ("ok", "rejected", "error"); oauth logins also carry the
// provider.
type Metrics struct {
	signups       *prometheus.CounterVec
	logins        *prometheus.CounterVec
	oauthLogins   *prometheus.CounterVec
	verifications *prometheus.CounterVec
}

// NewMetrics creates the auth counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vauth_signups_total",
			Help: "Signup attempts by result",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vauth_logins_total",
			Help: "Email/password login attempts by result",
		}, []string{"result"}),
		oauthLogins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vauth_oauth_logins_total",
			Help: "OAuth login attempts by provider and result",
		}, []string{"provider", "result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vauth_token_verifications_total",
			Help: "Bearer token verifications by result",
		}, []string{"result"}),
	}

	reg.MustRegister(m.signups, m.logins, m.oauthLogins, m.verifications)
	return m
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if ae := AsAuthError(err); ae.Code != ErrCodeInternal {
		return "rejected"
	}
	return "error"
}

func (m *Metrics) RecordSignup(err error) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) RecordLogin(err error) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) RecordOAuthLogin(provider string, err error) {
	if m == nil {
		return
	}
	m.oauthLogins.WithLabelValues(provider, resultLabel(err)).Inc()
}

func (m *Metrics) RecordVerification(err error) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(resultLabel(err)).Inc()
}
