package catalog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	rejectValidation = "validation"
	rejectStore      = "store"
)

type Metrics struct {
	Created  prometheus.Counter
	Rejected *prometheus.CounterVec
}

// NewMetrics registers the catalog collectors; the products gauge reads the
// store size at scrape time.
func NewMetrics(reg prometheus.Registerer, store Store) *Metrics {
	m := &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_products_created_total",
			Help: "Products created since process start",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_create_rejected_total",
			Help: "Create requests that did not add a product",
		}, []string{"reason"}),
	}

	size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "catalog_products",
		Help: "Products currently held in the catalog",
	}, func() float64 {
		n, err := store.Len(context.Background())
		if err != nil {
			return -1
		}
		return float64(n)
	})

	reg.MustRegister(m.Created, m.Rejected, size)
	return m
}

func (m *Metrics) created() {
	if m != nil {
		m.Created.Inc()
	}
}

func (m *Metrics) rejected(reason string) {
	if m != nil {
		m.Rejected.WithLabelValues(reason).Inc()
	}
}
