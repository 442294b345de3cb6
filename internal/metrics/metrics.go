package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import pipeline metrics
var (
	ImportedBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importer_batches_total",
		Help: "The total number of successfully imported batches",
	})

	ImportedBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importer_blocks_total",
		Help: "The total number of imported blocks",
	})

	ImportedTransactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importer_transactions_total",
		Help: "The total number of imported transactions",
	})

	ImportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "importer_errors_total",
		Help: "The total number of import batches aborted by an error",
	})

	LastImportedBlock = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "importer_last_imported_block",
		Help: "The highest block number seen in a successfully imported batch",
	})
)

// Gap scanner metrics
var (
	MissingBlocks = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gap_scanner_missing_blocks",
		Help: "The number of missing block numbers found by the last gap scan",
	})
)
