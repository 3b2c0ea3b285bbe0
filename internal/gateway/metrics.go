package gateway

import "github.com/prometheus/client_golang/prometheus"

// Validation outcomes recorded in docgate_validations_total.
const (
	resultSkipped = "skipped"
	resultPassed  = "passed"
	resultFailed  = "failed"
	resultError   = "error"
)

// Metrics counts validation outcomes.
type Metrics struct {
	validations *prometheus.CounterVec
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docgate_validations_total",
				Help: "Documents checked by the validation gateway, by outcome.",
			},
			[]string{"result"},
		),
	}
	if err := reg.Register(m.validations); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(result string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(result).Inc()
}
