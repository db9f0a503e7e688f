package analytics

import (
	"context"
	"time"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

var testToday = time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)

// historyFromOut builds a history whose buckets end the day before testToday.
func historyFromOut(id int64, stock int, out ...int) domain.ItemHistory {
	from, _ := Window(testToday, len(out))
	buckets := emptyBuckets(from, len(out))
	for i, q := range out {
		buckets[i].QuantityOut = q
	}
	return domain.ItemHistory{
		ItemID:       id,
		ItemName:     "item",
		Category:     domain.DefaultCategory,
		CurrentStock: stock,
		DailyBuckets: buckets,
	}
}

func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func daysAgo(n int) time.Time {
	return DateOnly(testToday).AddDate(0, 0, -n)
}

type fakeLedgerRepo struct {
	items        []domain.Item
	txs          []domain.Transaction
	listItemsErr error
	lookupErr    error
	listTxErr    error

	lastFilter domain.TransactionFilter
	lookupIDs  []int64
}

func (f *fakeLedgerRepo) ListItems(ctx context.Context) ([]domain.Item, error) {
	if f.listItemsErr != nil {
		return nil, f.listItemsErr
	}
	return f.items, nil
}

func (f *fakeLedgerRepo) GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error) {
	f.lookupIDs = ids
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Item
	for _, it := range f.items {
		if wanted[it.ID] {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeLedgerRepo) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	f.lastFilter = filter
	if f.listTxErr != nil {
		return nil, f.listTxErr
	}
	var out []domain.Transaction
	for _, tx := range f.txs {
		if tx.Date.Before(filter.From) || !tx.Date.Before(filter.To) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}
