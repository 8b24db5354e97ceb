package evo

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the selector's prometheus instruments.
type Metrics struct {
	ChildrenEvaluated prometheus.Counter
	ChildrenInvalid   prometheus.Counter
	BestFitness       prometheus.Gauge
	FrontSize         prometheus.Gauge
}

// NewMetrics registers the selector instruments with reg. A nil reg gets
// a private registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		ChildrenEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oozebots",
			Name:      "children_evaluated_total",
			Help:      "Children produced and scored by the selector.",
		}),
		ChildrenInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "oozebots",
			Name:      "children_invalid_total",
			Help:      "Children whose evaluation failed or scored (0, 0).",
		}),
		BestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oozebots",
			Name:      "generation_best_fitness",
			Help:      "Best raw fitness in the latest generation.",
		}),
		FrontSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "oozebots",
			Name:      "front_size",
			Help:      "Members of the first non-dominated tier at the latest sort.",
		}),
	}
	for _, c := range []prometheus.Collector{m.ChildrenEvaluated, m.ChildrenInvalid, m.BestFitness, m.FrontSize} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register selector metrics: %w", err)
		}
	}
	return m, nil
}
