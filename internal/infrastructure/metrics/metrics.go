package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registry lookups and bond lifecycle events.
type Metrics struct {
	RegistryLookups        *prometheus.CounterVec
	RegistryLookupDuration prometheus.Histogram
	BondsCreated           prometheus.Counter
	BondsUpdated           prometheus.Counter
	BondsDeleted           prometheus.Counter
}

// New registers all metrics on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests independent of the global registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RegistryLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "bondtracker_registry_lookups_total",
			Help: "Total number of CDCP registry lookups by outcome",
		}, []string{"outcome"}),
		RegistryLookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bondtracker_registry_lookup_duration_seconds",
			Help:    "Duration of CDCP registry lookups",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		BondsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bondtracker_bonds_created_total",
			Help: "Total number of bonds created",
		}),
		BondsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bondtracker_bonds_updated_total",
			Help: "Total number of bonds updated",
		}),
		BondsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "bondtracker_bonds_deleted_total",
			Help: "Total number of bonds deleted",
		}),
	}
}

// RegistryLookup records one lookup outcome and its duration.
// Call with time.Now() taken before the lookup.
func (m *Metrics) RegistryLookup(outcome string, start time.Time) {
	m.RegistryLookups.WithLabelValues(outcome).Inc()
	m.RegistryLookupDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) BondCreated() {
	m.BondsCreated.Inc()
}

func (m *Metrics) BondUpdated() {
	m.BondsUpdated.Inc()
}

func (m *Metrics) BondDeleted() {
	m.BondsDeleted.Inc()
}
