package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the service's prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	DonationsSubmitted prometheus.Counter
	DonationsApproved  prometheus.Counter
	DonationsRejected  prometheus.Counter
	MilestonesFunded   prometheus.Counter
}

// New creates a registry with process/go collectors plus the domain counters.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)
	return &Metrics{
		Registry: registry,
		DonationsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "pawws_donations_submitted_total",
			Help: "Donations created in pending state",
		}),
		DonationsApproved: factory.NewCounter(prometheus.CounterOpts{
			Name: "pawws_donations_approved_total",
			Help: "Donations approved by moderation",
		}),
		DonationsRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "pawws_donations_rejected_total",
			Help: "Donations rejected by moderation",
		}),
		MilestonesFunded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pawws_milestones_funded_total",
			Help: "Milestones that reached their funding goal",
		}),
	}
}
