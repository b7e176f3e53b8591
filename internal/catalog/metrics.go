package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	labelOp     = "op"
	labelResult = "result"
	labelLock   = "lock"

	resultOK       = "ok"
	resultInvalid  = "invalid"
	resultNotFound = "not_found"
)

type serviceMetrics struct {
	products   prometheus.Gauge
	ops        *prometheus.CounterVec
	recoveries *prometheus.CounterVec
}

// newServiceMetrics returns nil when reg is nil; every method tolerates a nil receiver.
func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	if reg == nil {
		return nil
	}

	m := &serviceMetrics{
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently held by the catalog",
		}),
		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Catalog operations by outcome",
			},
			[]string{labelOp, labelResult},
		),
		recoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_lock_recoveries_total",
				Help: "Poisoned locks recovered after a panic in a critical section",
			},
			[]string{labelLock},
		),
	}

	reg.MustRegister(m.products, m.ops, m.recoveries)
	return m
}

func (m *serviceMetrics) op(op, result string) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op, result).Inc()
}

func (m *serviceMetrics) setProducts(n int) {
	if m == nil {
		return
	}
	m.products.Set(float64(n))
}

func (m *serviceMetrics) recovered(lock string) {
	if m == nil {
		return
	}
	m.recoveries.WithLabelValues(lock).Inc()
}
