package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bldg-intel/odcv-cli/internal/config"
	"github.com/bldg-intel/odcv-cli/internal/resolve"
)

func testBulkScorer(t *testing.T, cfg config.BulkConfig) *BulkScorer {
	t.Helper()
	// No external client: resolution runs on the built-in fallback table.
	resolver, err := resolve.New(nil, "")
	require.NoError(t, err)

	e := testEngine(t,
		building("1000700001", nil), // 77 Water Street
		building("1010130029", nil), // 1155 Avenue of the Americas
	)
	return NewBulkScorer(e, resolver, cfg)
}

func TestBulkScore_ResultsInInputOrder(t *testing.T) {
	bs := testBulkScorer(t, config.BulkConfig{MaxConcurrent: 2, MaxAddresses: 50})

	addresses := []string{
		"77 Water Street",
		"   ",
		"999 Nonexistent Avenue",
		"140 Broadway", // resolves, but the BBL is not in the dataset
		"1155 Avenue of the Americas",
	}

	results, err := bs.Score(context.Background(), addresses)
	require.NoError(t, err)
	require.Len(t, results, len(addresses))

	for i, r := range results {
		assert.Equal(t, addresses[i], r.Address, "result %d out of order", i)
	}

	assert.Equal(t, StatusOK, results[0].Status)
	require.NotNil(t, results[0].Breakdown)
	assert.Equal(t, "1000700001", string(results[0].Breakdown.BBL))

	assert.Equal(t, StatusInvalidAddress, results[1].Status)
	assert.Nil(t, results[1].Breakdown)

	assert.Equal(t, StatusNotFound, results[2].Status)

	assert.Equal(t, StatusNotFound, results[3].Status)
	assert.Contains(t, results[3].Detail, "1000380001")

	assert.Equal(t, StatusOK, results[4].Status)
}

func TestBulkScore_OneFailureDoesNotAbort(t *testing.T) {
	bs := testBulkScorer(t, config.BulkConfig{MaxConcurrent: 1, MaxAddresses: 50})

	results, err := bs.Score(context.Background(), []string{
		"no such place",
		"77 Water Street",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, StatusNotFound, results[0].Status)
	assert.Equal(t, StatusOK, results[1].Status)
}

func TestBulkScore_AddressLimit(t *testing.T) {
	bs := testBulkScorer(t, config.BulkConfig{MaxConcurrent: 2, MaxAddresses: 2})

	_, err := bs.Score(context.Background(), []string{"a 1", "b 2", "c 3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many addresses")
}

func TestBulkScore_Empty(t *testing.T) {
	bs := testBulkScorer(t, config.BulkConfig{MaxConcurrent: 2, MaxAddresses: 50})

	results, err := bs.Score(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}
