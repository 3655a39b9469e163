package quadbench

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "quadbench"

// Metrics holds Prometheus collectors for quadrature work. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	evaluations *prometheus.CounterVec
	runs        *prometheus.CounterVec
	partitions  *prometheus.HistogramVec
	samples     prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "evaluations_total",
			Help:      "Integrand evaluations performed by quadrature rules.",
		}, []string{"rule"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Quadrature runs by rule and outcome.",
		}, []string{"rule", "outcome"}),
		partitions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "converged_partitions",
			Help:      "Partition count at convergence.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 15),
		}, []string{"rule"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "monte_carlo_samples_total",
			Help:      "Uniform samples drawn by the Monte Carlo estimator.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.evaluations, m.runs, m.partitions, m.samples)
	}
	return m
}

func (m *Metrics) observeEvaluations(r Rule, count int) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(string(r.Kind())).Add(float64(count))
}

func (m *Metrics) observeConverged(r Rule, est Estimate) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(r.Kind()), "converged").Inc()
	m.partitions.WithLabelValues(string(r.Kind())).Observe(float64(est.N))
}

func (m *Metrics) observeFailure(r Rule) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(string(r.Kind()), "failed").Inc()
}

func (m *Metrics) observeSamples(count int) {
	if m == nil {
		return
	}
	m.samples.Add(float64(count))
}
