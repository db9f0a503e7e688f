package repository

import (
	"context"

	"github.com/andresuchdata/inventory-analytics/internal/domain"
)

// LedgerRepository is the read-only view of the item store and the
// transaction ledger that analytics are computed from.
type LedgerRepository interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetItemsByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)
	// ListTransactions returns transactions with From <= date < To matching
	// the filter, ordered by date then id.
	ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
}
