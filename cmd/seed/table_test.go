package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresuchdata/inventory-analytics/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadTableXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"item_id", "direction", "quantity", "date"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"3", "out", "12", "2024-05-03"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"3", "in", "40", "2024-05-04"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	header, records, err := readTable("May.XLSX", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"item_id", "direction", "quantity", "date"}, header)
	// the empty third row is skipped
	require.Len(t, records, 2)

	txs, err := parseTransactions(header, records)
	require.NoError(t, err)
	assert.Equal(t, 12, txs[0].Quantity)
	assert.Equal(t, 40, txs[1].Quantity)
}

func TestReadTableErrors(t *testing.T) {
	_, _, err := readTable("empty.csv", nil)
	assert.Error(t, err)

	_, _, err = readTable("broken.xlsx", []byte("not a workbook"))
	assert.Error(t, err)

	_, _, err = readTable("quoted.csv", []byte("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestTableSourceLocalFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(name, []byte("id,name,current_stock\n1,Paper,5\n"), 0o644))

	src := tableSource{}
	names, err := src.names(context.Background(), name, true)
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)

	data, err := src.read(context.Background(), name)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Paper")

	_, err = src.read(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestTableSourceStorePrefix(t *testing.T) {
	ctx := context.Background()
	store := storage.NewLocalStore(t.TempDir())
	require.NoError(t, store.PutObject(ctx, "ledger/2024-06.csv", []byte("x")))
	require.NoError(t, store.PutObject(ctx, "ledger/2024-05.csv", []byte("x")))
	require.NoError(t, store.PutObject(ctx, "ledger/README.md", []byte("x")))

	src := tableSource{store: store}
	names, err := src.names(ctx, "ledger", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger/2024-05.csv", "ledger/2024-06.csv"}, names)

	names, err = src.names(ctx, "ledger/2024-05.csv", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"ledger/2024-05.csv"}, names)
}
