package main

import (
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDemoLedger(t *testing.T) {
	today := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	items, txs := generateDemoLedger(42, 10, 90, today)
	require.Len(t, items, 10)
	require.NotEmpty(t, txs)

	first := today.AddDate(0, 0, -90).Truncate(24 * time.Hour)
	stock := make(map[int64]int)
	lastOut := make(map[int64]time.Time)

	for _, tx := range txs {
		require.True(t, tx.Direction.Valid())
		require.Positive(t, tx.Quantity)
		require.False(t, tx.Date.Before(first), tx.Date)
		require.True(t, tx.Date.Before(today), tx.Date)

		if tx.Direction == domain.DirectionIn {
			stock[tx.ItemID] += tx.Quantity
		} else {
			stock[tx.ItemID] -= tx.Quantity
			lastOut[tx.ItemID] = tx.Date
		}
		require.GreaterOrEqual(t, stock[tx.ItemID], 0)
	}

	for _, item := range items {
		assert.Equal(t, stock[item.ID], item.CurrentStock, item.Name)
	}

	// every fifth item stops moving after its first month
	quiet := items[4].ID
	assert.True(t, lastOut[quiet].Before(first.AddDate(0, 0, 31)))
}

func TestGenerateDemoLedgerDeterministic(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	itemsA, txsA := generateDemoLedger(7, 4, 30, today)
	itemsB, txsB := generateDemoLedger(7, 4, 30, today)
	assert.Equal(t, itemsA, itemsB)
	assert.Equal(t, txsA, txsB)

	items, txs := generateDemoLedger(7, 0, 30, today)
	assert.Nil(t, items)
	assert.Nil(t, txs)
}
