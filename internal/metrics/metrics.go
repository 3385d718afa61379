// Package metrics собирает счётчики Prometheus для льготного периода,
// решений защиты маршрутов и опроса задач.
//
// Все методы безопасны для nil-получателя: компоненты, созданные без метрик,
// просто ничего не считают.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — набор счётчиков BFF.
type Metrics struct {
	graceEvents    *prometheus.CounterVec
	guardDecisions *prometheus.CounterVec
	jobFetches     *prometheus.CounterVec
	backendCalls   *prometheus.CounterVec
}

// New регистрирует счётчики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		graceEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nameparse_bff",
			Name:      "grace_events_total",
			Help:      "Grace period lifecycle events.",
		}, []string{"event"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nameparse_bff",
			Name:      "guard_decisions_total",
			Help:      "Route guard decisions by outcome.",
		}, []string{"decision"}),
		jobFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nameparse_bff",
			Name:      "job_fetches_total",
			Help:      "Job status fetches by result.",
		}, []string{"result"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nameparse_bff",
			Name:      "backend_calls_total",
			Help:      "Outbound backend calls by operation and result.",
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(m.graceEvents, m.guardDecisions, m.jobFetches, m.backendCalls)
	return m
}

// GraceEvent учитывает событие льготного периода: started, cleared, expired, corrupted.
func (m *Metrics) GraceEvent(event string) {
	if m == nil {
		return
	}
	m.graceEvents.WithLabelValues(event).Inc()
}

// GuardDecision учитывает решение защиты маршрута.
func (m *Metrics) GuardDecision(decision string) {
	if m == nil {
		return
	}
	m.guardDecisions.WithLabelValues(decision).Inc()
}

// JobFetch учитывает результат запроса статуса задач.
func (m *Metrics) JobFetch(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.jobFetches.WithLabelValues(result).Inc()
}

// BackendCall учитывает исходящий вызов backend.
func (m *Metrics) BackendCall(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.backendCalls.WithLabelValues(operation, result).Inc()
}
