package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the review pages
type Metrics struct {
	registry *prometheus.Registry

	Saves                 *prometheus.CounterVec
	NameConflicts         *prometheus.CounterVec
	CustomerFetchFailures *prometheus.CounterVec
	DraftsCreated         prometheus.Counter
}

// New creates the collectors on their own registry so tests can build
// several instances.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_saves_total",
			Help: "Save attempts against the KYC backend by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		NameConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_name_conflicts_total",
			Help: "Name conflict warnings by the decision taken",
		}, []string{"decision"}),
		CustomerFetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kycreview_customer_fetch_failures_total",
			Help: "Failed customer fetches by pipeline stage",
		}, []string{"stage"}),
		DraftsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kycreview_drafts_created_total",
			Help: "Review drafts created from upload hand-offs",
		}),
	}

	reg.MustRegister(
		m.Saves,
		m.NameConflicts,
		m.CustomerFetchFailures,
		m.DraftsCreated,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) SaveAttempted(endpoint string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Saves.WithLabelValues(endpoint, outcome).Inc()
}

// NameConflict records "shown" when the warning opens and "continued" when
// the user saves anyway.
func (m *Metrics) NameConflict(decision string) {
	m.NameConflicts.WithLabelValues(decision).Inc()
}

func (m *Metrics) CustomerFetchFailed(stage string) {
	m.CustomerFetchFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncrementDraftsCreated() {
	m.DraftsCreated.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
