// Package metrics exposes Prometheus instrumentation for the sync pipeline.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook event outcomes.
const (
	OutcomeEmitted      = "emitted"
	OutcomeUnsupported  = "unsupported"
	OutcomeNoConnection = "no_connection"
)

var (
	// WebhookEvents counts inbound webhook events by outcome.
	WebhookEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "filesync_webhook_events_total",
		Help: "Inbound webhook events by intake outcome.",
	}, []string{"outcome"})

	// TransfersSucceeded counts completed file transfers.
	TransfersSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filesync_transfers_succeeded_total",
		Help: "File transfers that produced a file record.",
	})

	// TransfersFailed counts failed file transfers.
	TransfersFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filesync_transfers_failed_total",
		Help: "File transfers surfaced to the queue as errors.",
	})

	// FailureRecordsWritten counts new failure ledger rows.
	FailureRecordsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filesync_failure_records_written_total",
		Help: "Failed sync records appended to the ledger.",
	})

	// FailureRecordsDeduplicated counts ledger writes skipped by dedup.
	FailureRecordsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "filesync_failure_records_deduplicated_total",
		Help: "Ledger writes skipped because the latest record carries the same reason.",
	})
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// RegisterQueueDepth publishes a gauge reading the sync queue depth.
func RegisterQueueDepth(depth func() float64) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "filesync_queue_depth",
		Help: "Messages currently in the sync queue, including invisible ones.",
	}, depth)
}
