package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phenrril/storefront/internal/cart"
)

// Cart holds the storefront's cart and checkout collectors.
type Cart struct {
	mutations       *prometheus.CounterVec
	persistFailures *prometheus.CounterVec
	handoffs        *prometheus.CounterVec
	handoffDuration prometheus.Histogram
}

func NewCart() *Cart {
	return NewCartWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartWithRegisterer registers on r, reusing collectors that are already
// registered under the same name.
func NewCartWithRegisterer(r prometheus.Registerer) *Cart {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	return &Cart{
		mutations: registerCounterVec(r, prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations that changed state, by operation",
		}, []string{"op"}),
		persistFailures: registerCounterVec(r, prometheus.CounterOpts{
			Name: "storefront_cart_persist_failures_total",
			Help: "Cart snapshot loads or saves that failed and were discarded",
		}, []string{"op"}),
		handoffs: registerCounterVec(r, prometheus.CounterOpts{
			Name: "storefront_checkout_handoffs_total",
			Help: "Checkout hand-off attempts, by result",
		}, []string{"result"}),
		handoffDuration: registerHistogram(r, prometheus.HistogramOpts{
			Name:    "storefront_checkout_duration_seconds",
			Help:    "Time spent creating a checkout session",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Hooks returns store hooks feeding the mutation and persistence counters.
func (m *Cart) Hooks() cart.Hooks {
	return cart.Hooks{
		OnMutation:     func(op string) { m.mutations.WithLabelValues(op).Inc() },
		OnPersistError: func(op string, _ error) { m.persistFailures.WithLabelValues(op).Inc() },
	}
}

// ObserveHandoff matches checkout.Observer.
func (m *Cart) ObserveHandoff(result string, took time.Duration) {
	m.handoffs.WithLabelValues(result).Inc()
	m.handoffDuration.Observe(took.Seconds())
}

func registerCounterVec(r prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := r.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return c
}

func registerHistogram(r prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := r.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := are.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return h
}
