package services

import "github.com/prometheus/client_golang/prometheus"

// tierResolutions counts which tier answered each review lookup. Low
// cardinality: the tier label only ever takes cache/database/api.
var tierResolutions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_tier_resolutions_total",
		Help: "Review lookups resolved, by tier.",
	},
	[]string{"tier"},
)

func init() {
	prometheus.MustRegister(tierResolutions)
}
