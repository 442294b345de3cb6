package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/freechain/poa-explorer/configs"
	"github.com/freechain/poa-explorer/internal/common"
)

func TestPageParamsNormalize(t *testing.T) {
	p := PageParams{}.normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultPageSize, p.PageSize)

	p = PageParams{Page: -3, PageSize: 1000}.normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, maxPageSize, p.PageSize)

	p = PageParams{Page: 4, PageSize: 25}.normalize()
	assert.Equal(t, 4, p.Page)
	assert.Equal(t, 25, p.PageSize)
	assert.Equal(t, 75, p.offset())
}

func TestPageMetadata(t *testing.T) {
	meta := pageMetadata(PageParams{Page: 1, PageSize: 50}, 120)
	assert.Equal(t, int64(120), meta.TotalEntries)
	assert.Equal(t, int64(3), meta.TotalPages)

	meta = pageMetadata(PageParams{Page: 1, PageSize: 50}, 100)
	assert.Equal(t, int64(2), meta.TotalPages)

	meta = pageMetadata(PageParams{Page: 1, PageSize: 50}, 0)
	assert.Equal(t, int64(0), meta.TotalPages)
}

func TestParseNumeric(t *testing.T) {
	v, err := parseNumeric("123456789012345678901234567890")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", v.String())

	_, err = parseNumeric("not a number")
	assert.Error(t, err)
}

func TestTransactionPreloadFilters(t *testing.T) {
	filters, err := transactionPreloadFilters([]Preload{
		{Relation: "block", Necessity: Required},
		{Relation: "receipt", Necessity: Optional},
	})
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, "t.block_id IS NOT NULL", filters[0])

	_, err = transactionPreloadFilters([]Preload{{Relation: "uncles"}})
	assert.Error(t, err)
}

func mustAddressHash(t *testing.T, s string) common.Hash {
	t.Helper()
	h, err := common.ParseAddressHash(s)
	require.NoError(t, err)
	return h
}

func TestEnsureAddress(t *testing.T) {
	// Skip if no Postgres is available
	t.Skip("Skipping Postgres tests - requires running Postgres instance")

	cfg := &config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Username: "test",
		Password: "test",
		Database: "test_explorer",
		SSLMode:  "disable",
	}

	conn, err := NewPostgresConnector(cfg)
	require.NoError(t, err)
	defer conn.Close()

	hash := mustAddressHash(t, "0x8bf38d4764929064f2d4d3a56520a76ab3df415b")
	first, err := conn.EnsureAddress(context.Background(), hash)
	require.NoError(t, err)

	second, err := conn.EnsureAddress(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
