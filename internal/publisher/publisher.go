// Package publisher announces freshly imported blocks on Kafka so downstream
// consumers (balance syncers, notification services) can react without
// polling the store.
package publisher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/common"
)

const defaultTopic = "explorer.imported_blocks"

type Publisher struct {
	client *kgo.Client
	topic  string
	mu     sync.RWMutex
}

// BlockAnnouncement is the message emitted per imported block.
type BlockAnnouncement struct {
	Number    int64     `json:"number"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// New builds a Publisher from configuration. A disabled or broker-less
// configuration yields a no-op publisher.
func New(cfg *config.PublisherConfig) (*Publisher, error) {
	p := &Publisher{topic: cfg.Topic}
	if p.topic == "" {
		p.topic = defaultTopic
	}
	if !cfg.Enabled || cfg.Brokers == "" {
		log.Debug().Msg("Publisher is disabled, announcements will be dropped")
		return p, nil
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(strings.Split(cfg.Brokers, ",")...),
		kgo.AllowAutoTopicCreation(),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ClientID("poa-explorer"),
		kgo.DialTimeout(10 * time.Second),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Username,
			Pass: cfg.Password,
		}.AsMechanism()))
		tlsDialer := &tls.Dialer{NetDialer: &net.Dialer{Timeout: 10 * time.Second}}
		opts = append(opts, kgo.Dialer(tlsDialer.DialContext))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}

	p.client = client
	return p, nil
}

// PublishImportedBlocks emits one announcement per block and waits for the
// produce round-trip. Announcements are best-effort from the importer's
// perspective; a publish failure never unwinds an already committed batch.
func (p *Publisher) PublishImportedBlocks(ctx context.Context, blocks []common.Block) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.client == nil || len(blocks) == 0 {
		return nil
	}

	records := make([]*kgo.Record, 0, len(blocks))
	for _, block := range blocks {
		payload, err := json.Marshal(BlockAnnouncement{
			Number:    block.Number,
			Hash:      block.Hash.Hex(),
			Timestamp: block.Timestamp,
		})
		if err != nil {
			return fmt.Errorf("failed to encode block announcement: %w", err)
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(fmt.Sprintf("%d", block.Number)),
			Value: payload,
		})
	}

	results := p.client.ProduceSync(ctx, records...)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("failed to publish block announcements: %w", err)
	}
	return nil
}

// Close flushes and closes the Kafka client.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		p.client.Close()
		p.client = nil
	}
}
