package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	IngestionRuns     prometheus.Counter
	IngestionFailures prometheus.Counter
	ListingsCreated   prometheus.Counter
	ListingsMatched   prometheus.Counter
	DuplicateListings prometheus.Counter
	MailboxPolls      prometheus.Counter
	ProcessingTime    prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		IngestionRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_ingestion_runs_total",
			Help: "Total number of completed email ingestion runs",
		}),
		IngestionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_ingestion_failures_total",
			Help: "Total number of ingestion runs that failed with a persistence error",
		}),
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_listings_created_total",
			Help: "Total number of listings created from ingested emails",
		}),
		ListingsMatched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_listings_matched_total",
			Help: "Total number of created listings matched to a part",
		}),
		DuplicateListings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_duplicate_listings_total",
			Help: "Total number of listings skipped because their URL already existed",
		}),
		MailboxPolls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "part_scout_mailbox_polls_total",
			Help: "Total number of IMAP mailbox poll cycles",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "part_scout_ingestion_duration_seconds",
			Help:    "Time spent ingesting one email",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
