package main

import (
	"testing"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemsCSV(t *testing.T) {
	input := "ID,Name,Category,Unit,Current_Stock,Unit_Price\n" +
		"1,Copy paper,Office,ream,100,4.50\n" +
		"2,Archive box,,,0,\n"

	items, err := parseItemsInput(t, input)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Office", items[0].Category)
	require.NotNil(t, items[0].UnitPrice)
	assert.Equal(t, 4.5, *items[0].UnitPrice)

	assert.Equal(t, "", items[1].Category)
	assert.Nil(t, items[1].UnitPrice)
	assert.Equal(t, 0, items[1].CurrentStock)
}

func TestParseItemsCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing column": "id,name\n1,Paper\n",
		"bad id":         "id,name,current_stock\nx,Paper,1\n",
		"empty name":     "id,name,current_stock\n1,,1\n",
		"negative stock": "id,name,current_stock\n1,Paper,-3\n",
		"bad price":      "id,name,current_stock,unit_price\n1,Paper,3,cheap\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseItemsInput(t, input)
			assert.Error(t, err)
		})
	}
}

func TestParseTransactionsCSV(t *testing.T) {
	input := "item_id,direction,quantity,date,note,user_id\n" +
		"1,OUT,5,2024-05-01,monthly issue,7\n" +
		"1,in,50,2024-05-02,,\n"

	txs, err := parseTransactionsInput(t, input)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, domain.DirectionOut, txs[0].Direction)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), txs[0].Date)
	require.NotNil(t, txs[0].Note)
	assert.Equal(t, "monthly issue", *txs[0].Note)
	require.NotNil(t, txs[0].UserID)
	assert.Equal(t, int64(7), *txs[0].UserID)

	assert.Equal(t, domain.DirectionIn, txs[1].Direction)
	assert.Nil(t, txs[1].Note)
	assert.Nil(t, txs[1].UserID)
}

func TestParseTransactionsCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing date":  "item_id,direction,quantity\n1,out,5\n",
		"bad direction": "item_id,direction,quantity,date\n1,sideways,5,2024-05-01\n",
		"zero quantity": "item_id,direction,quantity,date\n1,out,0,2024-05-01\n",
		"bad date":      "item_id,direction,quantity,date\n1,out,5,01/05/2024\n",
		"bad user":      "item_id,direction,quantity,date,user_id\n1,out,5,2024-05-01,bob\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseTransactionsInput(t, input)
			assert.Error(t, err)
		})
	}
}

func parseItemsInput(t *testing.T, input string) ([]domain.Item, error) {
	t.Helper()
	header, records, err := readTable("items.csv", []byte(input))
	require.NoError(t, err)
	return parseItems(header, records)
}

func parseTransactionsInput(t *testing.T, input string) ([]domain.Transaction, error) {
	t.Helper()
	header, records, err := readTable("transactions.csv", []byte(input))
	require.NoError(t, err)
	return parseTransactions(header, records)
}
