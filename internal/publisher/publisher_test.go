package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/common"
)

func TestNewDisabledPublisher(t *testing.T) {
	p, err := New(&config.PublisherConfig{Enabled: false})
	require.NoError(t, err)
	assert.Equal(t, defaultTopic, p.topic)

	// no-op publisher drops announcements without error
	err = p.PublishImportedBlocks(context.Background(), []common.Block{{Number: 1}})
	assert.NoError(t, err)
	p.Close()
}

func TestNewEnabledWithoutBrokers(t *testing.T) {
	p, err := New(&config.PublisherConfig{Enabled: true, Topic: "custom.topic"})
	require.NoError(t, err)
	assert.Equal(t, "custom.topic", p.topic)
	assert.NoError(t, p.PublishImportedBlocks(context.Background(), nil))
}
