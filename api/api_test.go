package api

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions?page=3&page_size=25", nil)
	params, err := ParseQueryParams(r)
	require.NoError(t, err)
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.PageSize)
}

func TestParseQueryParamsDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions", nil)
	params, err := ParseQueryParams(r)
	require.NoError(t, err)
	assert.Equal(t, 0, params.Page)
	assert.Equal(t, 0, params.PageSize)
}

func TestParseQueryParamsIgnoresUnknownKeys(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions?page=2&utm_source=email", nil)
	params, err := ParseQueryParams(r)
	require.NoError(t, err)
	assert.Equal(t, 2, params.Page)
}

func TestParseQueryParamsRejectsGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/transactions?page=banana", nil)
	_, err := ParseQueryParams(r)
	assert.Error(t, err)
}
