// Package metrics exposes the process counters that supplement the core
// spec with ambient observability: collection outcomes, queue publishes,
// and worker dispatch counts, all exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CollectionOutcomes counts fetcher outcomes by classification.
var CollectionOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "metadata_collection_outcomes_total",
		Help: "Count of fetch outcomes by classification (success, permanent, transient).",
	},
	[]string{"outcome"},
)

// QueuePublishes counts queue publishes by topic and result.
var QueuePublishes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "metadata_queue_publishes_total",
		Help: "Count of queue publishes by topic and result (success, error).",
	},
	[]string{"topic", "result"},
)

// WorkerDispatches counts worker-loop terminal dispositions.
var WorkerDispatches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "metadata_worker_dispatches_total",
		Help: "Count of worker dispatch terminal outcomes (success, retry, dlq).",
	},
	[]string{"disposition"},
)
