// Package metrics содержит счётчики Prometheus сервиса доступа.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "door_access"

// Metrics содержит счётчики выдачи и проверки токенов.
type Metrics struct {
	validations   *prometheus.CounterVec
	issued        prometheus.Counter
	issueFailures *prometheus.CounterVec
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Door token validations by outcome.",
		}, []string{"allowed", "reason"}),
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Door tokens issued.",
		}),
		issueFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issue_failures_total",
			Help:      "Rejected or failed door token issuances by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.validations, m.issued, m.issueFailures)
	return m
}

// Nop возвращает счётчики, не зарегистрированные ни в одном реестре.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveValidation учитывает исход проверки. Пустая причина означает проход.
func (m *Metrics) ObserveValidation(allowed bool, reason string) {
	a := "false"
	if allowed {
		a = "true"
	}
	m.validations.WithLabelValues(a, reason).Inc()
}

// ObserveIssued учитывает выпущенный токен.
func (m *Metrics) ObserveIssued() {
	m.issued.Inc()
}

// ObserveIssueFailure учитывает отказ в выпуске.
func (m *Metrics) ObserveIssueFailure(reason string) {
	m.issueFailures.WithLabelValues(reason).Inc()
}
