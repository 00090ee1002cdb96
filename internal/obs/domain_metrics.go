package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// BasketOperationsTotal counts basket service operations by outcome.
	BasketOperationsTotal *prometheus.CounterVec
	// BasketsExpiredTotal counts baskets evicted after their idle TTL.
	BasketsExpiredTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		BasketOperationsTotal = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "basket_operations_total",
			Help:      "Count of basket operations by outcome.",
		}, []string{"operation", "result"}))
		BasketsExpiredTotal = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "baskets_expired_total",
			Help:      "Number of idle baskets evicted from the store.",
		}))
	})
}

// RecordBasketOperation increments the operation counter. It is a no-op until
// MustRegisterDomainMetrics has run.
func RecordBasketOperation(operation string, err error) {
	if BasketOperationsTotal == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	BasketOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordBasketExpired increments the expiry counter.
func RecordBasketExpired() {
	if BasketsExpiredTotal == nil {
		return
	}
	BasketsExpiredTotal.Inc()
}
