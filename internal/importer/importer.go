// Package importer drives the ingestion pipeline for callers that hold raw
// chain data: it runs the batched import, keeps the pipeline metrics current
// and announces imported blocks downstream.
package importer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freechain/poa-explorer/internal/common"
	"github.com/freechain/poa-explorer/internal/metrics"
	"github.com/freechain/poa-explorer/internal/publisher"
	"github.com/freechain/poa-explorer/internal/rpc"
	"github.com/freechain/poa-explorer/internal/storage"
)

type Importer struct {
	store *storage.PostgresConnector
	pub   *publisher.Publisher
}

func New(store *storage.PostgresConnector, pub *publisher.Publisher) *Importer {
	return &Importer{store: store, pub: pub}
}

// Import runs one batch through the pipeline. The batch either commits as a
// whole or not at all; announcements and metrics follow only after commit.
func (i *Importer) Import(ctx context.Context, batch storage.ImportBatch) (*storage.ImportSummary, error) {
	summary, err := i.store.ImportBatch(ctx, batch)
	if err != nil {
		metrics.ImportErrors.Inc()
		return nil, err
	}

	metrics.ImportedBatches.Inc()
	metrics.ImportedBlocks.Add(float64(summary.Blocks))
	metrics.ImportedTransactions.Add(float64(summary.Transactions))
	if highest, ok := highestNumber(batch.Blocks); ok {
		metrics.LastImportedBlock.Set(float64(highest))
	}

	if i.pub != nil {
		if err := i.pub.PublishImportedBlocks(ctx, announcedBlocks(batch.Blocks)); err != nil {
			// The batch is already committed; a publish failure must not
			// unwind it.
			log.Warn().Err(err).Msg("Failed to announce imported blocks")
		}
	}
	return summary, nil
}

func highestNumber(blocks []rpc.RawBlock) (int64, bool) {
	if len(blocks) == 0 {
		return 0, false
	}
	highest := int64(blocks[0].Number)
	for _, block := range blocks[1:] {
		if n := int64(block.Number); n > highest {
			highest = n
		}
	}
	return highest, true
}

func announcedBlocks(rawBlocks []rpc.RawBlock) []common.Block {
	blocks := make([]common.Block, 0, len(rawBlocks))
	for _, raw := range rawBlocks {
		hash, err := common.ParseFullHash(raw.Hash)
		if err != nil {
			continue
		}
		blocks = append(blocks, common.Block{
			Number:    int64(raw.Number),
			Hash:      hash,
			Timestamp: time.Unix(int64(raw.Timestamp), 0).UTC(),
		})
	}
	return blocks
}
