package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dex_quotes_total", Help: "Quote requests by outcome"},
		[]string{"provider", "outcome"},
	)
	SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dex_swaps_total", Help: "Submitted swaps by final status"},
		[]string{"provider", "status"},
	)
	StageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dex_stage_failures_total", Help: "Pipeline failures by stage and category"},
		[]string{"provider", "stage", "category"},
	)
	SwapDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dex_swap_duration_seconds",
			Help:    "Wall time from request to final swap status",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider", "status"},
	)
)

func init() {
	prometheus.MustRegister(QuotesTotal, SwapsTotal, StageFailuresTotal, SwapDuration)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
