package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	SearchesStarted prometheus.Counter
	TripsScraped    prometheus.Counter
	DealsUpserted   prometheus.Counter
	ScrapeDuration  prometheus.Histogram
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SearchesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_started_total",
			Help:      "The total number of searches sent to the fare site",
		}),
		TripsScraped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_scraped_total",
			Help:      "The total number of trips extracted and upserted",
		}),
		DealsUpserted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_upserted_total",
			Help:      "The total number of provider deals upserted",
		}),
		ScrapeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Time taken to scrape one date combination",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
