package importer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freechain/poa-explorer/internal/rpc"
)

func TestHighestNumber(t *testing.T) {
	_, ok := highestNumber(nil)
	assert.False(t, ok)

	highest, ok := highestNumber([]rpc.RawBlock{
		{Number: hexutil.Uint64(7)},
		{Number: hexutil.Uint64(12)},
		{Number: hexutil.Uint64(3)},
	})
	require.True(t, ok)
	assert.Equal(t, int64(12), highest)
}

func TestAnnouncedBlocks(t *testing.T) {
	blocks := announcedBlocks([]rpc.RawBlock{
		{
			Hash:      "0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b",
			Number:    hexutil.Uint64(5),
			Timestamp: hexutil.Uint64(1500000000),
		},
		// unparseable hashes are dropped rather than failing the announcement
		{Hash: "bogus", Number: hexutil.Uint64(6)},
	})

	require.Len(t, blocks, 1)
	assert.Equal(t, int64(5), blocks[0].Number)
	assert.Equal(t, "0x9fc76417374aa880d4449a1f7f31ec597f00b1f6f3dd2d66f4c9c6c445836d8b", blocks[0].Hash.Hex())
	assert.Equal(t, int64(1500000000), blocks[0].Timestamp.Unix())
}
