package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "courtside_mm_bot"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics *Metrics

	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      name,
			Help:      help,
		})
	}
	ordersPlaced := newCounter("orders_placed_total", "Total number of orders accepted by the venue.")
	ordersRejected := newCounter("orders_rejected_total", "Total number of orders rejected or throttled.")
	cancelsIssued := newCounter("cancels_issued_total", "Total number of cancel requests issued.")
	crossings := newCounter("aggressive_crossings_total", "Total number of immediate-or-cancel crossings.")
	passiveQuotes := newCounter("passive_quotes_total", "Total number of resting quotes posted.")
	nudges := newCounter("inventory_nudges_total", "Total number of late-game inventory nudges.")
	flattens := newCounter("flattens_total", "Total number of forced position flattens.")
	resets := newCounter("resets_total", "Total number of full state resets.")

	registry.MustRegister(ordersPlaced, ordersRejected, cancelsIssued, crossings, passiveQuotes, nudges, flattens, resets)

	m := &Metrics{
		OrdersPlaced:   promCounter{ordersPlaced},
		OrdersRejected: promCounter{ordersRejected},
		CancelsIssued:  promCounter{cancelsIssued},
		Crossings:      promCounter{crossings},
		PassiveQuotes:  promCounter{passiveQuotes},
		Nudges:         promCounter{nudges},
		Flattens:       promCounter{flattens},
		Resets:         promCounter{resets},
	}

	return &Prometheus{Metrics: m, registry: registry}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
