package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics counts login and logout activity per role.
type AuthMetrics struct {
	loginTotal  *prometheus.CounterVec
	logoutTotal prometheus.Counter
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		loginTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "auth",
			Name:      "login_total",
			Help:      "Total login attempts",
		}, []string{"role", "status"}),
		logoutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "auth",
			Name:      "logout_total",
			Help:      "Total logouts",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.loginTotal, m.logoutTotal)
	return m
}

func (m *AuthMetrics) ObserveLogin(role, status string) {
	if m == nil {
		return
	}
	m.loginTotal.WithLabelValues(role, status).Inc()
}

func (m *AuthMetrics) ObserveLogout() {
	if m == nil {
		return
	}
	m.logoutTotal.Inc()
}

// GateMetrics counts access gate decisions.
type GateMetrics struct {
	decisionTotal *prometheus.CounterVec
}

func NewGateMetrics(reg prometheus.Registerer) *GateMetrics {
	m := &GateMetrics{
		decisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicport",
			Subsystem: "access",
			Name:      "gate_decision_total",
			Help:      "Access gate decisions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.decisionTotal)
	return m
}

func (m *GateMetrics) ObserveDecision(outcome string) {
	if m == nil {
		return
	}
	m.decisionTotal.WithLabelValues(outcome).Inc()
}

// UpstreamMetrics tracks latency and status of clinic API calls.
type UpstreamMetrics struct {
	requestLatency *prometheus.HistogramVec
}

func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	m := &UpstreamMetrics{
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicport",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream clinic API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestLatency)
	return m
}

func (m *UpstreamMetrics) ObserveRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(endpoint, status).Observe(seconds)
}
